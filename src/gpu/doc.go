// Package gpu creates the Vulkan objects the renderer draws with: instance,
// device, render pass, pipeline and buffers, and implements render.Context
// on the device.
//
// Bootstrap failures are wrapped with github.com/pkg/errors so they carry
// the stack of the failing call. Calls made through render.Context on the
// draw path return render.NewError instead, matching the render package.
package gpu
