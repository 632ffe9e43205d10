package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// NewRenderPass creates a single subpass pass that clears one color
// attachment of the given format and leaves it ready for presentation.
func NewRenderPass(d *Device, format vulkan.Format) (vulkan.RenderPass, error) {
	attachments := []vulkan.AttachmentDescription{{
		Format:         format,
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutUndefined,
		FinalLayout:    vulkan.ImageLayoutPresentSrc,
	}}
	colorRefs := []vulkan.AttachmentReference{{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}}
	subpasses := []vulkan.SubpassDescription{{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}}
	// The layout transition waits for the acquire semaphore, which is
	// waited on at the color attachment output stage.
	dependencies := []vulkan.SubpassDependency{{
		SrcSubpass:    vulkan.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vulkan.AccessFlags(vulkan.AccessColorAttachmentWriteBit),
	}}

	info := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
	var pass vulkan.RenderPass
	if ret := vulkan.CreateRenderPass(d.handle, &info, nil, &pass); ret != vulkan.Success {
		return vulkan.NullRenderPass, errors.Wrap(vulkan.Error(ret), "create render pass")
	}
	return pass, nil
}

func DestroyRenderPass(d *Device, pass vulkan.RenderPass) {
	if pass != vulkan.NullRenderPass {
		vulkan.DestroyRenderPass(d.handle, pass, nil)
	}
}
