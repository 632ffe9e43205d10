package gpu

import (
	"cubulous/src/render"

	"github.com/vulkan-go/vulkan"
)

// commands records straight into vulkan command buffers.
type commands struct{}

var _ render.Commands = commands{}

func (commands) Begin(buffer vulkan.CommandBuffer, info *vulkan.CommandBufferBeginInfo) error {
	return render.NewError(vulkan.BeginCommandBuffer(buffer, info))
}

func (commands) BeginRenderPass(buffer vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo) {
	vulkan.CmdBeginRenderPass(buffer, info, vulkan.SubpassContentsInline)
}

func (commands) BindPipeline(buffer vulkan.CommandBuffer, pipeline vulkan.Pipeline) {
	vulkan.CmdBindPipeline(buffer, vulkan.PipelineBindPointGraphics, pipeline)
}

func (commands) BindVertexBuffers(buffer vulkan.CommandBuffer, firstBinding uint32, buffers []vulkan.Buffer, offsets []vulkan.DeviceSize) {
	vulkan.CmdBindVertexBuffers(buffer, firstBinding, uint32(len(buffers)), buffers, offsets)
}

func (commands) BindIndexBuffer(buffer vulkan.CommandBuffer, index vulkan.Buffer, offset vulkan.DeviceSize, indexType vulkan.IndexType) {
	vulkan.CmdBindIndexBuffer(buffer, index, offset, indexType)
}

func (commands) SetViewport(buffer vulkan.CommandBuffer, viewports []vulkan.Viewport) {
	vulkan.CmdSetViewport(buffer, 0, uint32(len(viewports)), viewports)
}

func (commands) SetScissor(buffer vulkan.CommandBuffer, scissors []vulkan.Rect2D) {
	vulkan.CmdSetScissor(buffer, 0, uint32(len(scissors)), scissors)
}

func (commands) DrawIndexed(buffer vulkan.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vulkan.CmdDrawIndexed(buffer, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (commands) EndRenderPass(buffer vulkan.CommandBuffer) {
	vulkan.CmdEndRenderPass(buffer)
}

func (commands) End(buffer vulkan.CommandBuffer) error {
	return render.NewError(vulkan.EndCommandBuffer(buffer))
}
