package gpu

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"cubulous/src/render"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Buffer is a device local buffer of count elements.
type Buffer struct {
	handle vulkan.Buffer
	memory vulkan.DeviceMemory
	size   vulkan.DeviceSize
	count  uint32
}

var _ render.Buffer = (*Buffer)(nil)

func findMemoryType(types []vulkan.MemoryType, typeBits uint32, props vulkan.MemoryPropertyFlags) (uint32, error) {
	for i, t := range types {
		if typeBits&(1<<uint(i)) != 0 && hasBits(t.PropertyFlags, props) {
			return uint32(i), nil
		}
	}
	return 0, errors.Errorf("no memory type in %#b with properties %#b", typeBits, props)
}

// encode lays out v the way the host hands it to the device.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, v); err != nil {
		return nil, errors.Wrap(err, "encode buffer data")
	}
	return buf.Bytes(), nil
}

func (d *Device) newBuffer(size vulkan.DeviceSize, usage vulkan.BufferUsageFlags, props vulkan.MemoryPropertyFlags) (*Buffer, error) {
	b := &Buffer{size: size}
	info := vulkan.BufferCreateInfo{
		SType:       vulkan.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vulkan.SharingModeExclusive,
	}
	if ret := vulkan.CreateBuffer(d.handle, &info, nil, &b.handle); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "create buffer")
	}

	var req vulkan.MemoryRequirements
	vulkan.GetBufferMemoryRequirements(d.handle, b.handle, &req)
	req.Deref()

	typeIndex, err := findMemoryType(d.memory, req.MemoryTypeBits, props)
	if err != nil {
		b.Destroy(d)
		return nil, err
	}
	alloc := vulkan.MemoryAllocateInfo{
		SType:           vulkan.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}
	if ret := vulkan.AllocateMemory(d.handle, &alloc, nil, &b.memory); ret != vulkan.Success {
		b.Destroy(d)
		return nil, errors.Wrap(vulkan.Error(ret), "allocate buffer memory")
	}
	if ret := vulkan.BindBufferMemory(d.handle, b.handle, b.memory, 0); ret != vulkan.Success {
		b.Destroy(d)
		return nil, errors.Wrap(vulkan.Error(ret), "bind buffer memory")
	}
	return b, nil
}

// copyBuffer runs a one time copy on the queue and waits for it.
func (d *Device) copyBuffer(src, dst vulkan.Buffer, size vulkan.DeviceSize) error {
	var pool vulkan.CommandPool
	poolInfo := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateTransientBit),
		QueueFamilyIndex: d.family,
	}
	if ret := vulkan.CreateCommandPool(d.handle, &poolInfo, nil, &pool); ret != vulkan.Success {
		return errors.Wrap(vulkan.Error(ret), "create transfer pool")
	}
	defer vulkan.DestroyCommandPool(d.handle, pool, nil)

	buffers, err := d.AllocateCommandBuffers(pool, 1)
	if err != nil {
		return errors.Wrap(err, "allocate transfer command buffer")
	}
	cmd := buffers[0]

	begin := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	}
	if ret := vulkan.BeginCommandBuffer(cmd, &begin); ret != vulkan.Success {
		return errors.Wrap(vulkan.Error(ret), "begin transfer")
	}
	vulkan.CmdCopyBuffer(cmd, src, dst, 1, []vulkan.BufferCopy{{Size: size}})
	if ret := vulkan.EndCommandBuffer(cmd); ret != vulkan.Success {
		return errors.Wrap(vulkan.Error(ret), "end transfer")
	}

	submit := []vulkan.SubmitInfo{{
		SType:              vulkan.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}}
	if ret := vulkan.QueueSubmit(d.queue, 1, submit, vulkan.NullFence); ret != vulkan.Success {
		return errors.Wrap(vulkan.Error(ret), "submit transfer")
	}
	if ret := vulkan.QueueWaitIdle(d.queue); ret != vulkan.Success {
		return errors.Wrap(vulkan.Error(ret), "wait for transfer")
	}
	return nil
}

// upload creates a device local buffer holding data, staged through a host
// visible buffer that is released before returning.
func (d *Device) upload(data []byte, count uint32, usage vulkan.BufferUsageFlags) (*Buffer, error) {
	size := vulkan.DeviceSize(len(data))
	staging, err := d.newBuffer(size,
		vulkan.BufferUsageFlags(vulkan.BufferUsageTransferSrcBit),
		vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyHostVisibleBit|vulkan.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy(d)

	var mapped unsafe.Pointer
	if ret := vulkan.MapMemory(d.handle, staging.memory, 0, size, 0, &mapped); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "map staging buffer")
	}
	vulkan.Memcopy(mapped, data)
	vulkan.UnmapMemory(d.handle, staging.memory)

	b, err := d.newBuffer(size,
		vulkan.BufferUsageFlags(vulkan.BufferUsageTransferDstBit)|usage,
		vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := d.copyBuffer(staging.handle, b.handle, size); err != nil {
		b.Destroy(d)
		return nil, err
	}
	b.count = count
	return b, nil
}

func NewVertexBuffer(d *Device, vertices []Vertex) (*Buffer, error) {
	data, err := encode(vertices)
	if err != nil {
		return nil, err
	}
	b, err := d.upload(data, uint32(len(vertices)), vulkan.BufferUsageFlags(vulkan.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, errors.Wrap(err, "vertex buffer")
	}
	logger.VPrintf("Uploaded %d vertices", len(vertices))
	return b, nil
}

func NewIndexBuffer(d *Device, indices []uint16) (*Buffer, error) {
	data, err := encode(indices)
	if err != nil {
		return nil, err
	}
	b, err := d.upload(data, uint32(len(indices)), vulkan.BufferUsageFlags(vulkan.BufferUsageIndexBufferBit))
	if err != nil {
		return nil, errors.Wrap(err, "index buffer")
	}
	logger.VPrintf("Uploaded %d indices", len(indices))
	return b, nil
}

func (b *Buffer) Handle() vulkan.Buffer {
	return b.handle
}

func (b *Buffer) Count() uint32 {
	return b.count
}

func (b *Buffer) Destroy(d *Device) {
	if b.handle != vulkan.NullBuffer {
		vulkan.DestroyBuffer(d.handle, b.handle, nil)
		b.handle = vulkan.NullBuffer
	}
	if b.memory != vulkan.NullDeviceMemory {
		vulkan.FreeMemory(d.handle, b.memory, nil)
		b.memory = vulkan.NullDeviceMemory
	}
}
