package gpu

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

// decodeSPIRV turns a SPIR-V binary into words. SPIR-V is little endian
// unless the magic number says otherwise.
func decodeSPIRV(b []byte) ([]uint32, error) {
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, errors.Errorf("SPIR-V size %d is not a positive multiple of 4", len(b))
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case binary.LittleEndian.Uint32(b) == spirvMagic:
	case binary.BigEndian.Uint32(b) == spirvMagic:
		order = binary.BigEndian
	default:
		return nil, errors.Errorf("bad SPIR-V magic %#08x", binary.LittleEndian.Uint32(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = order.Uint32(b[i*4:])
	}
	return words, nil
}

func LoadShader(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	code, err := decodeSPIRV(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return code, nil
}

func newShaderModule(d *Device, code []uint32) (vulkan.ShaderModule, error) {
	info := vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vulkan.ShaderModule
	if ret := vulkan.CreateShaderModule(d.handle, &info, nil, &module); ret != vulkan.Success {
		return vulkan.NullShaderModule, errors.Wrap(vulkan.Error(ret), "create shader module")
	}
	return module, nil
}
