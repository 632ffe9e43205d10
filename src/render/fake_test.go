package render

import (
	"fmt"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/vulkan-go/vulkan"
)

// Fake handles point into package data. Handle types are pointers the
// garbage collector does not track, so heap memory behind them could be
// reused while a handle is still held.
var (
	handleArena [1 << 16][8]byte
	handleNext  atomic.Int64
)

// newHandle returns a distinct non-nil pointer usable as a fake handle.
func newHandle() unsafe.Pointer {
	n := handleNext.Add(1) - 1
	if n >= int64(len(handleArena)) {
		panic("fake handle arena exhausted")
	}
	return unsafe.Pointer(&handleArena[n])
}

// requireSame compares handles by identity. Reflection based equality
// cannot follow handle pointers.
func requireSame[H comparable](t *testing.T, want, got H, msgAndArgs ...any) {
	t.Helper()
	require.True(t, want == got, msgAndArgs...)
}

func requireDistinct[H comparable](t *testing.T, a, b H, msgAndArgs ...any) {
	t.Helper()
	require.False(t, a == b, msgAndArgs...)
}

type fakeFence struct {
	signaled bool
	pending  bool
}

type fakeSubmit struct {
	commands vulkan.CommandBuffer
	fence    vulkan.Fence
	wait     vulkan.Semaphore
	signal   vulkan.Semaphore
	stage    vulkan.PipelineStageFlags
}

type fakePresent struct {
	swapchain  vulkan.Swapchain
	imageIndex uint32
	wait       vulkan.Semaphore
}

type fakeContext struct {
	support SurfaceSupport
	surface vulkan.Surface

	// live maps every handle not yet destroyed to its kind.
	live    map[unsafe.Pointer]string
	fences  map[vulkan.Fence]*fakeFence
	images  map[vulkan.Swapchain][]vulkan.Image
	created map[string]int

	// failAt makes the n-th (1-based) creation of a kind fail.
	failAt map[string]int

	swapchainInfos []vulkan.SwapchainCreateInfo
	viewInfos      []vulkan.ImageViewCreateInfo
	fbInfos        []vulkan.FramebufferCreateInfo

	// acquireResults and presentResults are consumed in order, Success
	// once empty. acquireIndices overrides the rotating image index.
	acquireResults []vulkan.Result
	presentResults []vulkan.Result
	acquireIndices []uint32
	nextImage      uint32

	acquires      int
	submits       []fakeSubmit
	presents      []fakePresent
	waitIdleCalls int
	resetFences   int

	// maxOtherPending is the largest number of fences still pending,
	// excluding the one being submitted, seen at any submission.
	maxOtherPending int

	cmds *fakeCommands
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		support: SurfaceSupport{
			Capabilities: vulkan.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  0,
				CurrentExtent:  vulkan.Extent2D{Width: vulkan.MaxUint32, Height: vulkan.MaxUint32},
				MinImageExtent: vulkan.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vulkan.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []vulkan.SurfaceFormat{
				{Format: vulkan.FormatB8g8r8a8Unorm, ColorSpace: vulkan.ColorSpaceSrgbNonlinear},
				{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []vulkan.PresentMode{vulkan.PresentModeFifo, vulkan.PresentModeMailbox},
		},
		surface: vulkan.SurfaceFromPointer(uintptr(newHandle())),
		live:    map[unsafe.Pointer]string{},
		fences:  map[vulkan.Fence]*fakeFence{},
		images:  map[vulkan.Swapchain][]vulkan.Image{},
		created: map[string]int{},
		failAt:  map[string]int{},
		cmds:    newFakeCommands(),
	}
}

func (f *fakeContext) create(kind string) (unsafe.Pointer, error) {
	f.created[kind]++
	if n, ok := f.failAt[kind]; ok && n == f.created[kind] {
		return nil, fmt.Errorf("injected %s failure", kind)
	}
	h := newHandle()
	f.live[h] = kind
	return h, nil
}

func (f *fakeContext) destroy(kind string, h unsafe.Pointer) {
	got, ok := f.live[h]
	if !ok {
		panic(fmt.Sprintf("destroying unknown or already destroyed %s", kind))
	}
	if got != kind {
		panic(fmt.Sprintf("destroying %s as %s", got, kind))
	}
	delete(f.live, h)
}

func (f *fakeContext) isLive(kind string, h unsafe.Pointer) bool {
	return f.live[h] == kind
}

// count returns the number of live handles of kind.
func (f *fakeContext) count(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeContext) pending() int {
	n := 0
	for _, s := range f.fences {
		if s.pending {
			n++
		}
	}
	return n
}

func (f *fakeContext) SurfaceSupport() (SurfaceSupport, error) {
	return f.support, nil
}

func (f *fakeContext) Surface() vulkan.Surface {
	return f.surface
}

func (f *fakeContext) CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	h, err := f.create("swapchain")
	if err != nil {
		return vulkan.NullSwapchain, err
	}
	f.swapchainInfos = append(f.swapchainInfos, *info)
	sc := vulkan.Swapchain(h)
	images := make([]vulkan.Image, info.MinImageCount)
	for i := range images {
		images[i] = vulkan.Image(newHandle())
	}
	f.images[sc] = images
	return sc, nil
}

func (f *fakeContext) GetSwapchainImages(swapchain vulkan.Swapchain) ([]vulkan.Image, error) {
	if !f.isLive("swapchain", unsafe.Pointer(swapchain)) {
		return nil, fmt.Errorf("images of dead swapchain")
	}
	return append([]vulkan.Image(nil), f.images[swapchain]...), nil
}

func (f *fakeContext) DestroySwapchain(swapchain vulkan.Swapchain) {
	f.destroy("swapchain", unsafe.Pointer(swapchain))
	delete(f.images, swapchain)
}

func (f *fakeContext) CreateImageView(info *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error) {
	h, err := f.create("view")
	if err != nil {
		return vulkan.NullImageView, err
	}
	f.viewInfos = append(f.viewInfos, *info)
	return vulkan.ImageView(h), nil
}

func (f *fakeContext) DestroyImageView(view vulkan.ImageView) {
	f.destroy("view", unsafe.Pointer(view))
}

func (f *fakeContext) CreateFramebuffer(info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error) {
	for _, v := range info.PAttachments {
		if !f.isLive("view", unsafe.Pointer(v)) {
			return vulkan.NullFramebuffer, fmt.Errorf("framebuffer attachment is not a live view")
		}
	}
	h, err := f.create("framebuffer")
	if err != nil {
		return vulkan.NullFramebuffer, err
	}
	f.fbInfos = append(f.fbInfos, *info)
	return vulkan.Framebuffer(h), nil
}

func (f *fakeContext) DestroyFramebuffer(framebuffer vulkan.Framebuffer) {
	f.destroy("framebuffer", unsafe.Pointer(framebuffer))
}

func (f *fakeContext) CreateSemaphore() (vulkan.Semaphore, error) {
	h, err := f.create("semaphore")
	if err != nil {
		return vulkan.NullSemaphore, err
	}
	return vulkan.Semaphore(h), nil
}

func (f *fakeContext) DestroySemaphore(semaphore vulkan.Semaphore) {
	f.destroy("semaphore", unsafe.Pointer(semaphore))
}

func (f *fakeContext) CreateFence(signaled bool) (vulkan.Fence, error) {
	h, err := f.create("fence")
	if err != nil {
		return vulkan.NullFence, err
	}
	fence := vulkan.Fence(h)
	f.fences[fence] = &fakeFence{signaled: signaled}
	return fence, nil
}

func (f *fakeContext) DestroyFence(fence vulkan.Fence) {
	if f.fences[fence].pending {
		panic("destroying a fence with pending work")
	}
	f.destroy("fence", unsafe.Pointer(fence))
	delete(f.fences, fence)
}

// WaitForFence completes the fence's pending work. Waiting on a fence that
// is neither signaled nor pending would block forever.
func (f *fakeContext) WaitForFence(fence vulkan.Fence) error {
	s, ok := f.fences[fence]
	if !ok {
		return fmt.Errorf("wait on unknown fence")
	}
	if s.pending {
		s.pending = false
		s.signaled = true
	}
	if !s.signaled {
		return fmt.Errorf("wait on a reset fence with no submission would never return")
	}
	return nil
}

func (f *fakeContext) ResetFence(fence vulkan.Fence) error {
	s, ok := f.fences[fence]
	if !ok {
		return fmt.Errorf("reset of unknown fence")
	}
	if s.pending {
		return fmt.Errorf("reset of a fence with pending work")
	}
	s.signaled = false
	f.resetFences++
	return nil
}

func (f *fakeContext) CreateCommandPool() (vulkan.CommandPool, error) {
	h, err := f.create("pool")
	if err != nil {
		return vulkan.NullCommandPool, err
	}
	return vulkan.CommandPool(h), nil
}

func (f *fakeContext) AllocateCommandBuffers(pool vulkan.CommandPool, count int) ([]vulkan.CommandBuffer, error) {
	if !f.isLive("pool", unsafe.Pointer(pool)) {
		return nil, fmt.Errorf("allocate from dead pool")
	}
	buffers := make([]vulkan.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = vulkan.CommandBuffer(newHandle())
	}
	return buffers, nil
}

func (f *fakeContext) DestroyCommandPool(pool vulkan.CommandPool) {
	f.destroy("pool", unsafe.Pointer(pool))
}

func (f *fakeContext) ResetCommandBuffer(buffer vulkan.CommandBuffer) error {
	f.cmds.reset(buffer)
	return nil
}

func (f *fakeContext) Commands() Commands {
	return f.cmds
}

func (f *fakeContext) AcquireNextImage(swapchain vulkan.Swapchain, signal vulkan.Semaphore) (uint32, vulkan.Result) {
	f.acquires++
	if !f.isLive("swapchain", unsafe.Pointer(swapchain)) || !f.isLive("semaphore", unsafe.Pointer(signal)) {
		return 0, vulkan.ErrorInitializationFailed
	}
	ret := vulkan.Success
	if len(f.acquireResults) > 0 {
		ret = f.acquireResults[0]
		f.acquireResults = f.acquireResults[1:]
		if ret != vulkan.Success && ret != vulkan.Suboptimal {
			return 0, ret
		}
	}
	if len(f.acquireIndices) > 0 {
		idx := f.acquireIndices[0]
		f.acquireIndices = f.acquireIndices[1:]
		return idx, ret
	}
	n := uint32(len(f.images[swapchain]))
	idx := f.nextImage % n
	f.nextImage++
	return idx, ret
}

func (f *fakeContext) Submit(info *vulkan.SubmitInfo, fence vulkan.Fence) error {
	s, ok := f.fences[fence]
	if !ok {
		return fmt.Errorf("submit with unknown fence")
	}
	if s.signaled || s.pending {
		return fmt.Errorf("submit with a fence that was not reset")
	}
	if other := f.pending(); other > f.maxOtherPending {
		f.maxOtherPending = other
	}
	s.pending = true
	f.submits = append(f.submits, fakeSubmit{
		commands: info.PCommandBuffers[0],
		fence:    fence,
		wait:     info.PWaitSemaphores[0],
		signal:   info.PSignalSemaphores[0],
		stage:    info.PWaitDstStageMask[0],
	})
	return nil
}

func (f *fakeContext) Present(info *vulkan.PresentInfo) vulkan.Result {
	f.presents = append(f.presents, fakePresent{
		swapchain:  info.PSwapchains[0],
		imageIndex: info.PImageIndices[0],
		wait:       info.PWaitSemaphores[0],
	})
	if len(f.presentResults) > 0 {
		ret := f.presentResults[0]
		f.presentResults = f.presentResults[1:]
		return ret
	}
	return vulkan.Success
}

// WaitIdle completes every pending submission.
func (f *fakeContext) WaitIdle() error {
	f.waitIdleCalls++
	for _, s := range f.fences {
		if s.pending {
			s.pending = false
			s.signaled = true
		}
	}
	return nil
}

type fakeCall struct {
	op          string
	framebuffer vulkan.Framebuffer
	renderPass  vulkan.RenderPass
	renderArea  vulkan.Rect2D
	clear       []vulkan.ClearValue
	pipeline    vulkan.Pipeline
	buffer      vulkan.Buffer
	indexType   vulkan.IndexType
	viewport    vulkan.Viewport
	scissor     vulkan.Rect2D
	indexCount  uint32
	instances   uint32
	flags       vulkan.CommandBufferUsageFlags
}

// fakeCommands keeps the calls recorded into each command buffer since its
// last reset.
type fakeCommands struct {
	calls    map[vulkan.CommandBuffer][]fakeCall
	failOp   string
	begun    map[vulkan.CommandBuffer]bool
	resetLog []vulkan.CommandBuffer
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		calls: map[vulkan.CommandBuffer][]fakeCall{},
		begun: map[vulkan.CommandBuffer]bool{},
	}
}

func (c *fakeCommands) reset(buffer vulkan.CommandBuffer) {
	delete(c.calls, buffer)
	c.begun[buffer] = false
	c.resetLog = append(c.resetLog, buffer)
}

func (c *fakeCommands) add(buffer vulkan.CommandBuffer, call fakeCall) {
	c.calls[buffer] = append(c.calls[buffer], call)
}

func (c *fakeCommands) ops(buffer vulkan.CommandBuffer) []string {
	var ops []string
	for _, call := range c.calls[buffer] {
		ops = append(ops, call.op)
	}
	return ops
}

func (c *fakeCommands) find(buffer vulkan.CommandBuffer, op string) (fakeCall, bool) {
	for _, call := range c.calls[buffer] {
		if call.op == op {
			return call, true
		}
	}
	return fakeCall{}, false
}

func (c *fakeCommands) Begin(buffer vulkan.CommandBuffer, info *vulkan.CommandBufferBeginInfo) error {
	if c.failOp == "begin" {
		return fmt.Errorf("injected begin failure")
	}
	if c.begun[buffer] {
		return fmt.Errorf("begin on a command buffer that was not reset")
	}
	c.begun[buffer] = true
	c.add(buffer, fakeCall{op: "begin", flags: info.Flags})
	return nil
}

func (c *fakeCommands) BeginRenderPass(buffer vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo) {
	c.add(buffer, fakeCall{
		op:          "beginRenderPass",
		framebuffer: info.Framebuffer,
		renderPass:  info.RenderPass,
		renderArea:  info.RenderArea,
		clear:       info.PClearValues,
	})
}

func (c *fakeCommands) BindPipeline(buffer vulkan.CommandBuffer, pipeline vulkan.Pipeline) {
	c.add(buffer, fakeCall{op: "bindPipeline", pipeline: pipeline})
}

func (c *fakeCommands) BindVertexBuffers(buffer vulkan.CommandBuffer, firstBinding uint32, buffers []vulkan.Buffer, offsets []vulkan.DeviceSize) {
	c.add(buffer, fakeCall{op: "bindVertexBuffers", buffer: buffers[0]})
}

func (c *fakeCommands) BindIndexBuffer(buffer vulkan.CommandBuffer, index vulkan.Buffer, offset vulkan.DeviceSize, indexType vulkan.IndexType) {
	c.add(buffer, fakeCall{op: "bindIndexBuffer", buffer: index, indexType: indexType})
}

func (c *fakeCommands) SetViewport(buffer vulkan.CommandBuffer, viewports []vulkan.Viewport) {
	c.add(buffer, fakeCall{op: "setViewport", viewport: viewports[0]})
}

func (c *fakeCommands) SetScissor(buffer vulkan.CommandBuffer, scissors []vulkan.Rect2D) {
	c.add(buffer, fakeCall{op: "setScissor", scissor: scissors[0]})
}

func (c *fakeCommands) DrawIndexed(buffer vulkan.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	c.add(buffer, fakeCall{op: "drawIndexed", indexCount: indexCount, instances: instanceCount})
}

func (c *fakeCommands) EndRenderPass(buffer vulkan.CommandBuffer) {
	c.add(buffer, fakeCall{op: "endRenderPass"})
}

func (c *fakeCommands) End(buffer vulkan.CommandBuffer) error {
	if c.failOp == "end" {
		return fmt.Errorf("injected end failure")
	}
	c.add(buffer, fakeCall{op: "end"})
	return nil
}

type fakeWindow struct {
	width, height int
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

type fakeBuffer struct {
	handle vulkan.Buffer
	count  uint32
}

func newFakeBuffer(count uint32) *fakeBuffer {
	return &fakeBuffer{handle: vulkan.Buffer(newHandle()), count: count}
}

func (b *fakeBuffer) Handle() vulkan.Buffer { return b.handle }
func (b *fakeBuffer) Count() uint32         { return b.count }

func newFakeResources() Resources {
	return Resources{
		RenderPass: vulkan.RenderPass(newHandle()),
		Pipeline:   vulkan.Pipeline(newHandle()),
		Vertices:   newFakeBuffer(4),
		Indices:    newFakeBuffer(6),
	}
}
