package render

import (
	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// Commands records into a command buffer.
type Commands interface {
	Begin(buffer vulkan.CommandBuffer, info *vulkan.CommandBufferBeginInfo) error
	BeginRenderPass(buffer vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo)
	BindPipeline(buffer vulkan.CommandBuffer, pipeline vulkan.Pipeline)
	BindVertexBuffers(buffer vulkan.CommandBuffer, firstBinding uint32, buffers []vulkan.Buffer, offsets []vulkan.DeviceSize)
	BindIndexBuffer(buffer vulkan.CommandBuffer, index vulkan.Buffer, offset vulkan.DeviceSize, indexType vulkan.IndexType)
	SetViewport(buffer vulkan.CommandBuffer, viewports []vulkan.Viewport)
	SetScissor(buffer vulkan.CommandBuffer, scissors []vulkan.Rect2D)
	DrawIndexed(buffer vulkan.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	EndRenderPass(buffer vulkan.CommandBuffer)
	End(buffer vulkan.CommandBuffer) error
}

type recording struct {
	renderPass  vulkan.RenderPass
	framebuffer vulkan.Framebuffer
	pipeline    vulkan.Pipeline
	vertices    Buffer
	indices     Buffer
	extent      vulkan.Extent2D
	clearColor  [4]float32
}

// record fills a freshly reset command buffer with one indexed draw of the
// whole index buffer. Viewport and scissor are dynamic state because the
// extent changes with every swap chain.
func record(cmds Commands, buffer vulkan.CommandBuffer, r *recording) error {
	if err := cmds.Begin(buffer, &vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
	}); err != nil {
		return debug.ErrorWrapf(err, "Failed to begin command buffer")
	}

	area := vulkan.Rect2D{
		Offset: vulkan.Offset2D{X: 0, Y: 0},
		Extent: r.extent,
	}
	clearValues := []vulkan.ClearValue{
		vulkan.NewClearValue(r.clearColor[:]),
	}
	cmds.BeginRenderPass(buffer, &vulkan.RenderPassBeginInfo{
		SType:           vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:      r.renderPass,
		Framebuffer:     r.framebuffer,
		RenderArea:      area,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	})

	cmds.BindPipeline(buffer, r.pipeline)
	cmds.BindVertexBuffers(buffer, 0, []vulkan.Buffer{r.vertices.Handle()}, []vulkan.DeviceSize{0})
	cmds.BindIndexBuffer(buffer, r.indices.Handle(), 0, vulkan.IndexTypeUint16)

	cmds.SetViewport(buffer, []vulkan.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(r.extent.Width),
		Height:   float32(r.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	cmds.SetScissor(buffer, []vulkan.Rect2D{area})

	cmds.DrawIndexed(buffer, r.indices.Count(), 1, 0, 0, 0)

	cmds.EndRenderPass(buffer)
	if err := cmds.End(buffer); err != nil {
		return debug.ErrorWrapf(err, "Failed to end command buffer")
	}
	return nil
}
