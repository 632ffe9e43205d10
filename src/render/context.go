package render

import (
	"github.com/vulkan-go/vulkan"
)

// Context is the device context the renderer drives: one logical device,
// one queue able to both render and present, and the window surface.
// All calls are made from the single control thread.
type Context interface {
	// SurfaceSupport queries capabilities, formats and present modes of
	// the window surface. Formats and present modes are never empty.
	SurfaceSupport() (SurfaceSupport, error)
	Surface() vulkan.Surface

	CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error)
	GetSwapchainImages(swapchain vulkan.Swapchain) ([]vulkan.Image, error)
	DestroySwapchain(swapchain vulkan.Swapchain)

	CreateImageView(info *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error)
	DestroyImageView(view vulkan.ImageView)

	CreateFramebuffer(info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error)
	DestroyFramebuffer(framebuffer vulkan.Framebuffer)

	CreateSemaphore() (vulkan.Semaphore, error)
	DestroySemaphore(semaphore vulkan.Semaphore)

	CreateFence(signaled bool) (vulkan.Fence, error)
	DestroyFence(fence vulkan.Fence)
	// WaitForFence blocks without timeout until fence is signaled.
	WaitForFence(fence vulkan.Fence) error
	ResetFence(fence vulkan.Fence) error

	// CreateCommandPool creates a pool on the queue family whose buffers can
	// be reset individually.
	CreateCommandPool() (vulkan.CommandPool, error)
	AllocateCommandBuffers(pool vulkan.CommandPool, count int) ([]vulkan.CommandBuffer, error)
	DestroyCommandPool(pool vulkan.CommandPool)
	ResetCommandBuffer(buffer vulkan.CommandBuffer) error
	Commands() Commands

	// AcquireNextImage waits without timeout for the next presentable image
	// and arranges for signal to be signaled when it is ready.
	AcquireNextImage(swapchain vulkan.Swapchain, signal vulkan.Semaphore) (uint32, vulkan.Result)
	Submit(info *vulkan.SubmitInfo, fence vulkan.Fence) error
	Present(info *vulkan.PresentInfo) vulkan.Result

	WaitIdle() error
}

type SurfaceSupport struct {
	Capabilities vulkan.SurfaceCapabilities
	Formats      []vulkan.SurfaceFormat
	PresentModes []vulkan.PresentMode
}

// Window reports the current framebuffer size in pixels.
type Window interface {
	FramebufferSize() (width, height int)
}

// Buffer is a device buffer holding Count elements. Index buffers hold
// 16-bit indices.
type Buffer interface {
	Handle() vulkan.Buffer
	Count() uint32
}
