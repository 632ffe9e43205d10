package gpu

import (
	"cubulous/src/render"

	"github.com/vulkan-go/vulkan"
)

var _ render.Context = (*Device)(nil)

func (d *Device) SurfaceSupport() (render.SurfaceSupport, error) {
	var s render.SurfaceSupport

	caps := &s.Capabilities
	if ret := vulkan.GetPhysicalDeviceSurfaceCapabilities(d.physical, d.surface, caps); render.IsError(ret) {
		return s, render.NewError(ret)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var count uint32
	if ret := vulkan.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &count, nil); render.IsError(ret) {
		return s, render.NewError(ret)
	}
	s.Formats = make([]vulkan.SurfaceFormat, count)
	if ret := vulkan.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &count, s.Formats); render.IsError(ret) {
		return s, render.NewError(ret)
	}
	for i := range s.Formats {
		s.Formats[i].Deref()
	}

	if ret := vulkan.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &count, nil); render.IsError(ret) {
		return s, render.NewError(ret)
	}
	s.PresentModes = make([]vulkan.PresentMode, count)
	if ret := vulkan.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &count, s.PresentModes); render.IsError(ret) {
		return s, render.NewError(ret)
	}
	return s, nil
}

func (d *Device) Surface() vulkan.Surface {
	return d.surface
}

func (d *Device) CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	var swapchain vulkan.Swapchain
	if ret := vulkan.CreateSwapchain(d.handle, info, nil, &swapchain); render.IsError(ret) {
		return vulkan.NullSwapchain, render.NewError(ret)
	}
	return swapchain, nil
}

func (d *Device) GetSwapchainImages(swapchain vulkan.Swapchain) ([]vulkan.Image, error) {
	var count uint32
	if ret := vulkan.GetSwapchainImages(d.handle, swapchain, &count, nil); render.IsError(ret) {
		return nil, render.NewError(ret)
	}
	images := make([]vulkan.Image, count)
	if ret := vulkan.GetSwapchainImages(d.handle, swapchain, &count, images); render.IsError(ret) {
		return nil, render.NewError(ret)
	}
	return images, nil
}

func (d *Device) DestroySwapchain(swapchain vulkan.Swapchain) {
	vulkan.DestroySwapchain(d.handle, swapchain, nil)
}

func (d *Device) CreateImageView(info *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error) {
	var view vulkan.ImageView
	if ret := vulkan.CreateImageView(d.handle, info, nil, &view); render.IsError(ret) {
		return vulkan.NullImageView, render.NewError(ret)
	}
	return view, nil
}

func (d *Device) DestroyImageView(view vulkan.ImageView) {
	vulkan.DestroyImageView(d.handle, view, nil)
}

func (d *Device) CreateFramebuffer(info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error) {
	var fb vulkan.Framebuffer
	if ret := vulkan.CreateFramebuffer(d.handle, info, nil, &fb); render.IsError(ret) {
		return vulkan.NullFramebuffer, render.NewError(ret)
	}
	return fb, nil
}

func (d *Device) DestroyFramebuffer(framebuffer vulkan.Framebuffer) {
	vulkan.DestroyFramebuffer(d.handle, framebuffer, nil)
}

func (d *Device) CreateSemaphore() (vulkan.Semaphore, error) {
	var semaphore vulkan.Semaphore
	info := vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}
	if ret := vulkan.CreateSemaphore(d.handle, &info, nil, &semaphore); render.IsError(ret) {
		return vulkan.NullSemaphore, render.NewError(ret)
	}
	return semaphore, nil
}

func (d *Device) DestroySemaphore(semaphore vulkan.Semaphore) {
	vulkan.DestroySemaphore(d.handle, semaphore, nil)
}

func (d *Device) CreateFence(signaled bool) (vulkan.Fence, error) {
	var fence vulkan.Fence
	info := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	if ret := vulkan.CreateFence(d.handle, &info, nil, &fence); render.IsError(ret) {
		return vulkan.NullFence, render.NewError(ret)
	}
	return fence, nil
}

func (d *Device) DestroyFence(fence vulkan.Fence) {
	vulkan.DestroyFence(d.handle, fence, nil)
}

func (d *Device) WaitForFence(fence vulkan.Fence) error {
	return render.NewError(vulkan.WaitForFences(d.handle, 1, []vulkan.Fence{fence}, vulkan.True, vulkan.MaxUint64))
}

func (d *Device) ResetFence(fence vulkan.Fence) error {
	return render.NewError(vulkan.ResetFences(d.handle, 1, []vulkan.Fence{fence}))
}

func (d *Device) CreateCommandPool() (vulkan.CommandPool, error) {
	var pool vulkan.CommandPool
	info := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.family,
	}
	if ret := vulkan.CreateCommandPool(d.handle, &info, nil, &pool); render.IsError(ret) {
		return vulkan.NullCommandPool, render.NewError(ret)
	}
	return pool, nil
}

func (d *Device) AllocateCommandBuffers(pool vulkan.CommandPool, count int) ([]vulkan.CommandBuffer, error) {
	buffers := make([]vulkan.CommandBuffer, count)
	info := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	if ret := vulkan.AllocateCommandBuffers(d.handle, &info, buffers); render.IsError(ret) {
		return nil, render.NewError(ret)
	}
	return buffers, nil
}

func (d *Device) DestroyCommandPool(pool vulkan.CommandPool) {
	vulkan.DestroyCommandPool(d.handle, pool, nil)
}

func (d *Device) ResetCommandBuffer(buffer vulkan.CommandBuffer) error {
	return render.NewError(vulkan.ResetCommandBuffer(buffer, 0))
}

func (d *Device) Commands() render.Commands {
	return commands{}
}

func (d *Device) AcquireNextImage(swapchain vulkan.Swapchain, signal vulkan.Semaphore) (uint32, vulkan.Result) {
	var index uint32
	ret := vulkan.AcquireNextImage(d.handle, swapchain, vulkan.MaxUint64, signal, vulkan.NullFence, &index)
	return index, ret
}

func (d *Device) Submit(info *vulkan.SubmitInfo, fence vulkan.Fence) error {
	return render.NewError(vulkan.QueueSubmit(d.queue, 1, []vulkan.SubmitInfo{*info}, fence))
}

func (d *Device) Present(info *vulkan.PresentInfo) vulkan.Result {
	return vulkan.QueuePresent(d.queue, info)
}

func (d *Device) WaitIdle() error {
	return render.NewError(vulkan.DeviceWaitIdle(d.handle))
}
