package gpu

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

// InstanceConfig selects what the instance enables. Extensions usually come
// from the window system.
type InstanceConfig struct {
	AppName    string
	Extensions []string
	// Validation enables the Khronos validation layer and routes its reports
	// to the logger. It is skipped with a warning when the layer is missing.
	Validation bool
}

type Instance struct {
	handle      vulkan.Instance
	debugReport vulkan.DebugReportCallback
}

type severity int

const (
	severityVerbose severity = iota
	severityWarning
	severityError
)

func reportSeverity(flags vulkan.DebugReportFlags) severity {
	switch {
	case hasBits(flags, vulkan.DebugReportFlags(vulkan.DebugReportErrorBit)):
		return severityError
	case hasBits(flags, vulkan.DebugReportFlags(vulkan.DebugReportWarningBit)),
		hasBits(flags, vulkan.DebugReportFlags(vulkan.DebugReportPerformanceWarningBit)):
		return severityWarning
	}
	return severityVerbose
}

func debugReport(flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType, object uint64, location uint,
	messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vulkan.Bool32 {
	switch reportSeverity(flags) {
	case severityError:
		logger.EPrintf("[%s] %s", layerPrefix, message)
	case severityWarning:
		logger.WPrintf("[%s] %s", layerPrefix, message)
	default:
		logger.VPrintf("[%s] %s", layerPrefix, message)
	}
	return vulkan.False
}

func instanceLayers() ([]string, error) {
	var count uint32
	if ret := vulkan.EnumerateInstanceLayerProperties(&count, nil); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "enumerate instance layers")
	}
	props := make([]vulkan.LayerProperties, count)
	if ret := vulkan.EnumerateInstanceLayerProperties(&count, props); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "enumerate instance layers")
	}
	names := make([]string, 0, count)
	for _, p := range props {
		p.Deref()
		names = append(names, vulkan.ToString(p.LayerName[:]))
		p.Free()
	}
	return names, nil
}

// NewInstance creates the instance and loads its function pointers. The
// loader must already be initialized, see window.InitVulkan.
func NewInstance(config InstanceConfig) (*Instance, error) {
	extensions := safeStrings(config.Extensions)
	var layers []string
	if config.Validation {
		available, err := instanceLayers()
		if err != nil {
			return nil, err
		}
		if containsName(available, validationLayer) {
			layers = append(layers, safeString(validationLayer))
			extensions = append(extensions, safeString("VK_EXT_debug_report"))
		} else {
			logger.WPrintf("Validation requested but %s is not installed", validationLayer)
		}
	}

	info := vulkan.InstanceCreateInfo{
		SType: vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vulkan.ApplicationInfo{
			SType:              vulkan.StructureTypeApplicationInfo,
			PApplicationName:   safeString(config.AppName),
			ApplicationVersion: vulkan.MakeVersion(1, 0, 0),
			PEngineName:        safeString("cubulous"),
			EngineVersion:      vulkan.MakeVersion(1, 0, 0),
			ApiVersion:         vulkan.ApiVersion10,
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	i := &Instance{}
	if ret := vulkan.CreateInstance(&info, nil, &i.handle); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "create instance")
	}
	if err := vulkan.InitInstance(i.handle); err != nil {
		vulkan.DestroyInstance(i.handle, nil)
		return nil, errors.Wrap(err, "init instance")
	}

	if len(layers) > 0 {
		report := vulkan.DebugReportCallbackCreateInfo{
			SType: vulkan.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vulkan.DebugReportFlags(vulkan.DebugReportErrorBit |
				vulkan.DebugReportWarningBit | vulkan.DebugReportPerformanceWarningBit),
			PfnCallback: debugReport,
		}
		if ret := vulkan.CreateDebugReportCallback(i.handle, &report, nil, &i.debugReport); ret != vulkan.Success {
			vulkan.DestroyInstance(i.handle, nil)
			return nil, errors.Wrap(vulkan.Error(ret), "create debug report callback")
		}
	}

	logger.IPrintf("Created instance with %d extensions and %d layers", len(extensions), len(layers))
	return i, nil
}

func (i *Instance) Handle() vulkan.Instance {
	return i.handle
}

// DestroySurface destroys a surface created against this instance.
func (i *Instance) DestroySurface(surface vulkan.Surface) {
	if surface != vulkan.NullSurface {
		vulkan.DestroySurface(i.handle, surface, nil)
	}
}

func (i *Instance) Destroy() {
	if i.debugReport != vulkan.NullDebugReportCallback {
		vulkan.DestroyDebugReportCallback(i.handle, i.debugReport, nil)
		i.debugReport = vulkan.NullDebugReportCallback
	}
	vulkan.DestroyInstance(i.handle, nil)
	logger.IPrintf("Instance destroyed")
}
