package render

import (
	"errors"

	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// Resources are created and destroyed by the caller. The render pass must
// have a single color attachment in the surface format and the pipeline
// must declare viewport and scissor as dynamic state.
type Resources struct {
	RenderPass vulkan.RenderPass
	Pipeline   vulkan.Pipeline
	Vertices   Buffer
	Indices    Buffer
}

type Stats struct {
	// Frames counts submitted frames.
	Frames uint64
	// Dropped counts frames abandoned because acquire found the swap
	// chain out of date.
	Dropped     uint64
	Recreations uint64
}

// Renderer owns the swap chain, its framebuffers and the ring of frame
// slots, and drives one frame per DrawFrame call. It is not safe for
// concurrent use.
type Renderer struct {
	noCopy noCopy

	ctx    Context
	cmds   Commands
	win    Window
	config Config
	res    Resources

	// surface and targets are nil while the window has no area.
	surface *Surface
	targets frameTargets
	frames  *frameRing

	// current selects the frame slot, not the swap chain image.
	current int
	resized bool
	stats   Stats
}

func New(ctx Context, win Window, res Resources, config Config) (*Renderer, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if res.Vertices == nil || res.Indices == nil {
		return nil, debug.Errorf("Vertex and index buffers are required")
	}

	r := &Renderer{
		ctx:    ctx,
		cmds:   ctx.Commands(),
		win:    win,
		config: config,
		res:    res,
	}

	ok := false
	defer func() {
		if !ok {
			r.Destroy()
		}
	}()

	if err := r.createSwapChain(); err != nil {
		return nil, err
	}

	frames, err := newFrameRing(ctx, config.MaxFramesInFlight)
	if err != nil {
		return nil, err
	}
	r.frames = frames

	ok = true
	logger.IPrintf("Renderer created with %d frames in flight", config.MaxFramesInFlight)
	return r, nil
}

func (r *Renderer) createSwapChain() error {
	s, err := NewSurface(r.ctx, r.win, r.config)
	if errors.Is(err, errZeroExtent) {
		logger.IPrintf("Window has no area, suspending rendering")
		return nil
	}
	if err != nil {
		return err
	}

	targets, err := newFrameTargets(r.ctx, r.res.RenderPass, s)
	if err != nil {
		s.Destroy(r.ctx)
		return err
	}

	r.surface = s
	r.targets = targets
	return nil
}

func (r *Renderer) destroySwapChain() {
	r.targets.destroy(r.ctx)
	r.targets = nil
	if r.surface != nil {
		r.surface.Destroy(r.ctx)
		r.surface = nil
	}
}

// RecreateSwapChain waits for the device to go idle, so no submitted frame
// still references the framebuffers, then rebuilds the swap chain and its
// framebuffers for the current window size. Frame slots are kept.
func (r *Renderer) RecreateSwapChain() error {
	if err := r.ctx.WaitIdle(); err != nil {
		return debug.ErrorWrapf(err, "Failed to wait for device idle")
	}
	r.destroySwapChain()
	r.stats.Recreations++
	return r.createSwapChain()
}

// Resized makes the next presented frame recreate the swap chain.
func (r *Renderer) Resized() {
	r.resized = true
}

// DrawFrame waits for the current slot, acquires an image, records and
// submits the slot's command buffer against that image's framebuffer and
// presents it. An out of date swap chain is recreated and the frame is
// dropped. Any other failure is returned and is fatal.
func (r *Renderer) DrawFrame() error {
	if r.surface == nil {
		if err := r.createSwapChain(); err != nil {
			return err
		}
		if r.surface == nil {
			return nil
		}
		logger.IPrintf("Window has area again, resuming rendering")
	}

	slot := &r.frames.slots[r.current]
	if err := r.ctx.WaitForFence(slot.inFlight); err != nil {
		return debug.ErrorWrapf(err, "Failed to wait for frame %d", r.current)
	}

	imageIndex, ret := r.ctx.AcquireNextImage(r.surface.Swapchain, slot.imageAvailable)
	switch Classify(ret) {
	case OutcomeSuccess, OutcomeSuboptimal:
	case OutcomeOutOfDate:
		logger.VPrintf("Swapchain out of date on acquire, dropping frame")
		r.stats.Dropped++
		return r.RecreateSwapChain()
	case OutcomeFatal:
		return debug.ErrorWrapf(NewError(ret), "Failed to acquire swapchain image")
	}
	if int(imageIndex) >= len(r.targets) {
		return debug.Errorf("Acquired image %d but swapchain has %d images", imageIndex, len(r.targets))
	}

	// Reset only once a submission is certain to follow, a reset fence
	// with nothing submitted would block the next wait forever.
	if err := r.ctx.ResetFence(slot.inFlight); err != nil {
		return debug.ErrorWrapf(err, "Failed to reset fence of frame %d", r.current)
	}
	if err := r.ctx.ResetCommandBuffer(slot.commands); err != nil {
		return debug.ErrorWrapf(err, "Failed to reset command buffer of frame %d", r.current)
	}
	if err := record(r.cmds, slot.commands, &recording{
		renderPass:  r.res.RenderPass,
		framebuffer: r.targets[imageIndex],
		pipeline:    r.res.Pipeline,
		vertices:    r.res.Vertices,
		indices:     r.res.Indices,
		extent:      r.surface.Extent,
		clearColor:  r.config.ClearColor,
	}); err != nil {
		return err
	}

	if err := r.ctx.Submit(&vulkan.SubmitInfo{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{slot.imageAvailable},
		PWaitDstStageMask:    []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{slot.commands},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{slot.renderFinished},
	}, slot.inFlight); err != nil {
		return debug.ErrorWrapf(err, "Failed to submit frame %d", r.current)
	}
	r.stats.Frames++

	ret = r.ctx.Present(&vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{slot.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{r.surface.Swapchain},
		PImageIndices:      []uint32{imageIndex},
	})
	recreate := r.resized
	switch outcome := Classify(ret); outcome {
	case OutcomeSuccess:
	case OutcomeSuboptimal, OutcomeOutOfDate:
		// The submitted frame stays valid and its fence still signals.
		logger.VPrintf("Swapchain %s on present", outcome)
		recreate = true
	case OutcomeFatal:
		return debug.ErrorWrapf(NewError(ret), "Failed to present swapchain image %d", imageIndex)
	}

	r.current = (r.current + 1) % r.frames.len()

	if recreate {
		r.resized = false
		return r.RecreateSwapChain()
	}
	return nil
}

// Destroy waits for the device to go idle and destroys everything the
// renderer created, in reverse creation order.
func (r *Renderer) Destroy() {
	if err := r.ctx.WaitIdle(); err != nil {
		logger.EPrintf("Failed to wait for device idle: %v", err)
	}
	if r.frames != nil {
		r.frames.destroy(r.ctx)
		r.frames = nil
	}
	r.destroySwapChain()
	logger.IPrintf("Renderer destroyed: %d frames, %d dropped, %d swapchain recreations",
		r.stats.Frames, r.stats.Dropped, r.stats.Recreations)
}

func (r *Renderer) CurrentFrame() int {
	return r.current
}

// Extent is zero while rendering is suspended.
func (r *Renderer) Extent() vulkan.Extent2D {
	if r.surface == nil {
		return vulkan.Extent2D{}
	}
	return r.surface.Extent
}

func (r *Renderer) Suspended() bool {
	return r.surface == nil
}

func (r *Renderer) Stats() Stats {
	return r.stats
}
