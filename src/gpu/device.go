package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

const swapchainExtension = "VK_KHR_swapchain"

type queueFamily struct {
	graphics bool
	present  bool
}

type deviceCandidate struct {
	name       string
	deviceType vulkan.PhysicalDeviceType
	families   []queueFamily
	extensions []string
}

// pickQueueFamily returns the first family that can both render and present
// to the surface. Devices that split the two are not supported.
func pickQueueFamily(families []queueFamily) (uint32, bool) {
	for i, f := range families {
		if f.graphics && f.present {
			return uint32(i), true
		}
	}
	return 0, false
}

func deviceScore(t vulkan.PhysicalDeviceType) int {
	switch t {
	case vulkan.PhysicalDeviceTypeDiscreteGpu:
		return 3
	case vulkan.PhysicalDeviceTypeIntegratedGpu:
		return 2
	case vulkan.PhysicalDeviceTypeVirtualGpu:
		return 1
	}
	return 0
}

// pickDevice returns the index of the best usable candidate and its queue
// family. Discrete GPUs win, ties go to enumeration order.
func pickDevice(candidates []deviceCandidate) (int, uint32, error) {
	best, bestFamily, bestScore := -1, uint32(0), -1
	for i, c := range candidates {
		if !containsName(c.extensions, swapchainExtension) {
			logger.VPrintf("Skipping %q: no %s", c.name, swapchainExtension)
			continue
		}
		family, ok := pickQueueFamily(c.families)
		if !ok {
			logger.VPrintf("Skipping %q: no queue family with graphics and present support", c.name)
			continue
		}
		if score := deviceScore(c.deviceType); score > bestScore {
			best, bestFamily, bestScore = i, family, score
		}
	}
	if best < 0 {
		return 0, 0, errors.Errorf("none of %d devices can render and present", len(candidates))
	}
	return best, bestFamily, nil
}

func describeDevice(physical vulkan.PhysicalDevice, surface vulkan.Surface) (deviceCandidate, error) {
	var c deviceCandidate

	var props vulkan.PhysicalDeviceProperties
	vulkan.GetPhysicalDeviceProperties(physical, &props)
	props.Deref()
	c.name = vulkan.ToString(props.DeviceName[:])
	c.deviceType = props.DeviceType
	props.Free()

	var count uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(physical, &count, nil)
	families := make([]vulkan.QueueFamilyProperties, count)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(physical, &count, families)
	for i, f := range families {
		f.Deref()
		flags := f.QueueFlags
		f.Free()

		var present vulkan.Bool32
		if ret := vulkan.GetPhysicalDeviceSurfaceSupport(physical, uint32(i), surface, &present); ret != vulkan.Success {
			return c, errors.Wrapf(vulkan.Error(ret), "query present support of %q", c.name)
		}
		c.families = append(c.families, queueFamily{
			graphics: hasBits(flags, vulkan.QueueFlags(vulkan.QueueGraphicsBit)),
			present:  present == vulkan.True,
		})
	}

	if ret := vulkan.EnumerateDeviceExtensionProperties(physical, "", &count, nil); ret != vulkan.Success {
		return c, errors.Wrapf(vulkan.Error(ret), "enumerate extensions of %q", c.name)
	}
	extensions := make([]vulkan.ExtensionProperties, count)
	if ret := vulkan.EnumerateDeviceExtensionProperties(physical, "", &count, extensions); ret != vulkan.Success {
		return c, errors.Wrapf(vulkan.Error(ret), "enumerate extensions of %q", c.name)
	}
	for _, e := range extensions {
		e.Deref()
		c.extensions = append(c.extensions, vulkan.ToString(e.ExtensionName[:]))
		e.Free()
	}
	return c, nil
}

// Device is the logical device with its single queue. It implements
// render.Context for the surface it was created against.
type Device struct {
	physical vulkan.PhysicalDevice
	handle   vulkan.Device
	queue    vulkan.Queue
	family   uint32
	surface  vulkan.Surface
	memory   []vulkan.MemoryType
	name     string
}

func NewDevice(instance *Instance, surface vulkan.Surface) (*Device, error) {
	var count uint32
	if ret := vulkan.EnumeratePhysicalDevices(instance.Handle(), &count, nil); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "enumerate physical devices")
	}
	if count == 0 {
		return nil, errors.New("no device with Vulkan support")
	}
	physicals := make([]vulkan.PhysicalDevice, count)
	if ret := vulkan.EnumeratePhysicalDevices(instance.Handle(), &count, physicals); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "enumerate physical devices")
	}

	candidates := make([]deviceCandidate, 0, len(physicals))
	for _, p := range physicals {
		c, err := describeDevice(p, surface)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	index, family, err := pickDevice(candidates)
	if err != nil {
		return nil, err
	}

	d := &Device{
		physical: physicals[index],
		family:   family,
		surface:  surface,
		name:     candidates[index].name,
	}

	info := vulkan.DeviceCreateInfo{
		SType:                vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vulkan.DeviceQueueCreateInfo{{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   1,
		PpEnabledExtensionNames: []string{safeString(swapchainExtension)},
	}
	if ret := vulkan.CreateDevice(d.physical, &info, nil, &d.handle); ret != vulkan.Success {
		return nil, errors.Wrapf(vulkan.Error(ret), "create device on %q", d.name)
	}
	vulkan.GetDeviceQueue(d.handle, family, 0, &d.queue)

	var mem vulkan.PhysicalDeviceMemoryProperties
	vulkan.GetPhysicalDeviceMemoryProperties(d.physical, &mem)
	mem.Deref()
	for i := uint32(0); i < mem.MemoryTypeCount; i++ {
		t := mem.MemoryTypes[i]
		t.Deref()
		d.memory = append(d.memory, t)
	}
	mem.Free()

	logger.IPrintf("Using %q, queue family %d", d.name, family)
	return d, nil
}

func (d *Device) Handle() vulkan.Device {
	return d.handle
}

func (d *Device) Name() string {
	return d.name
}

// waitIdle reports whether wait succeeded and logs when it did not.
// Teardown goes on either way.
func waitIdle(what string, wait func() vulkan.Result) bool {
	if ret := wait(); ret != vulkan.Success {
		logger.EPrintf("Failed to wait for %s idle: %v", what, vulkan.Error(ret))
		return false
	}
	return true
}

func (d *Device) Destroy() {
	waitIdle("device", func() vulkan.Result { return vulkan.DeviceWaitIdle(d.handle) })
	vulkan.DestroyDevice(d.handle, nil)
	logger.IPrintf("Device destroyed")
}
