package render

import (
	"errors"
	"math"

	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// undefinedExtent in SurfaceCapabilities.CurrentExtent means the surface
// size follows the swap chain extent.
const undefinedExtent uint32 = math.MaxUint32

// errZeroExtent is returned by NewSurface for a minimized window.
var errZeroExtent = errors.New("surface extent is zero")

// Surface is the swap chain together with its images and one view per image.
type Surface struct {
	Swapchain   vulkan.Swapchain
	Format      vulkan.SurfaceFormat
	PresentMode vulkan.PresentMode
	Extent      vulkan.Extent2D
	Images      []vulkan.Image
	Views       []vulkan.ImageView
}

func chooseSurfaceFormat(formats []vulkan.SurfaceFormat, preferred vulkan.SurfaceFormat) vulkan.SurfaceFormat {
	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f
		}
	}
	return formats[0]
}

func choosePresentMode(modes []vulkan.PresentMode, preferred vulkan.PresentMode) vulkan.PresentMode {
	for _, m := range modes {
		if m == preferred {
			return m
		}
	}
	return vulkan.PresentModeFifo
}

func chooseExtent(caps *vulkan.SurfaceCapabilities, width, height int) vulkan.Extent2D {
	if caps.CurrentExtent.Width != undefinedExtent {
		return caps.CurrentExtent
	}
	return vulkan.Extent2D{
		Width:  clamp(uint32(max(width, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, a max of 0
// means there is no upper bound.
func chooseImageCount(caps *vulkan.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseSurfaceFormat returns the format NewSurface will pick, so a render
// pass can be created before the first swap chain.
func ChooseSurfaceFormat(ctx Context, config Config) (vulkan.SurfaceFormat, error) {
	support, err := ctx.SurfaceSupport()
	if err != nil {
		return vulkan.SurfaceFormat{}, debug.ErrorWrapf(err, "Failed to query surface support")
	}
	if len(support.Formats) == 0 {
		return vulkan.SurfaceFormat{}, debug.Errorf("Surface reports no formats")
	}
	return chooseSurfaceFormat(support.Formats, config.PreferredFormat), nil
}

// NewSurface creates the swap chain for the window's current size. It
// returns errZeroExtent when the window has no area.
func NewSurface(ctx Context, win Window, config Config) (*Surface, error) {
	support, err := ctx.SurfaceSupport()
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to query surface support")
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return nil, debug.Errorf("Surface reports %d formats and %d present modes",
			len(support.Formats), len(support.PresentModes))
	}

	caps := &support.Capabilities
	width, height := win.FramebufferSize()
	s := &Surface{
		Format:      chooseSurfaceFormat(support.Formats, config.PreferredFormat),
		PresentMode: choosePresentMode(support.PresentModes, config.PreferredPresentMode),
		Extent:      chooseExtent(caps, width, height),
	}
	if s.Extent.Width == 0 || s.Extent.Height == 0 {
		return nil, errZeroExtent
	}

	// Exclusive sharing: the context hands out a single queue family for
	// rendering and presentation.
	s.Swapchain, err = ctx.CreateSwapchain(&vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          ctx.Surface(),
		MinImageCount:    chooseImageCount(caps),
		ImageFormat:      s.Format.Format,
		ImageColorSpace:  s.Format.ColorSpace,
		ImageExtent:      s.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		ImageSharingMode: vulkan.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      s.PresentMode,
		Clipped:          vulkan.True,
		OldSwapchain:     vulkan.NullSwapchain,
	})
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to create swapchain")
	}

	ok := false
	defer func() {
		if !ok {
			s.Destroy(ctx)
		}
	}()

	s.Images, err = ctx.GetSwapchainImages(s.Swapchain)
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to get swapchain images")
	}

	s.Views = make([]vulkan.ImageView, 0, len(s.Images))
	for i, image := range s.Images {
		view, err := ctx.CreateImageView(&vulkan.ImageViewCreateInfo{
			SType:    vulkan.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vulkan.ImageViewType2d,
			Format:   s.Format.Format,
			Components: vulkan.ComponentMapping{
				R: vulkan.ComponentSwizzleIdentity,
				G: vulkan.ComponentSwizzleIdentity,
				B: vulkan.ComponentSwizzleIdentity,
				A: vulkan.ComponentSwizzleIdentity,
			},
			SubresourceRange: vulkan.ImageSubresourceRange{
				AspectMask:     vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return nil, debug.ErrorWrapf(err, "Failed to create view for swapchain image %d", i)
		}
		s.Views = append(s.Views, view)
	}

	ok = true
	logger.IPrintf("Created swapchain: %dx%d, %d images, format %d, present mode %s",
		s.Extent.Width, s.Extent.Height, len(s.Images), s.Format.Format, PresentModeString(s.PresentMode))
	return s, nil
}

// Destroy destroys the image views, then the swap chain.
func (s *Surface) Destroy(ctx Context) {
	for _, v := range s.Views {
		ctx.DestroyImageView(v)
	}
	s.Views = nil
	s.Images = nil
	if s.Swapchain != vulkan.NullSwapchain {
		ctx.DestroySwapchain(s.Swapchain)
		s.Swapchain = vulkan.NullSwapchain
	}
}
