package render

import (
	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// frameTargets holds one framebuffer per swap chain image, indexed by the
// image index returned from acquire.
type frameTargets []vulkan.Framebuffer

func newFrameTargets(ctx Context, renderPass vulkan.RenderPass, s *Surface) (frameTargets, error) {
	targets := make(frameTargets, 0, len(s.Views))
	for i, view := range s.Views {
		fb, err := ctx.CreateFramebuffer(&vulkan.FramebufferCreateInfo{
			SType:           vulkan.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vulkan.ImageView{view},
			Width:           s.Extent.Width,
			Height:          s.Extent.Height,
			Layers:          1,
		})
		if err != nil {
			targets.destroy(ctx)
			return nil, debug.ErrorWrapf(err, "Failed to create framebuffer %d", i)
		}
		targets = append(targets, fb)
	}
	return targets, nil
}

func (t frameTargets) destroy(ctx Context) {
	for _, fb := range t {
		ctx.DestroyFramebuffer(fb)
	}
}
