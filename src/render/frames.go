package render

import (
	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// frameSlot is the set of resources one in-flight frame uses. A slot is
// only reused after its inFlight fence has been observed signaled.
type frameSlot struct {
	imageAvailable vulkan.Semaphore
	renderFinished vulkan.Semaphore
	inFlight       vulkan.Fence
	commands       vulkan.CommandBuffer
}

type frameRing struct {
	pool  vulkan.CommandPool
	slots []frameSlot
}

// newFrameRing creates n slots. Fences start signaled so the first wait on
// each slot returns immediately.
func newFrameRing(ctx Context, n int) (*frameRing, error) {
	pool, err := ctx.CreateCommandPool()
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to create command pool")
	}
	ring := &frameRing{pool: pool}

	ok := false
	defer func() {
		if !ok {
			ring.destroy(ctx)
		}
	}()

	buffers, err := ctx.AllocateCommandBuffers(pool, n)
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to allocate %d command buffers", n)
	}

	ring.slots = make([]frameSlot, 0, n)
	for i := 0; i < n; i++ {
		slot := frameSlot{commands: buffers[i]}
		if slot.imageAvailable, err = ctx.CreateSemaphore(); err != nil {
			return nil, debug.ErrorWrapf(err, "Failed to create semaphore for frame %d", i)
		}
		if slot.renderFinished, err = ctx.CreateSemaphore(); err != nil {
			ctx.DestroySemaphore(slot.imageAvailable)
			return nil, debug.ErrorWrapf(err, "Failed to create semaphore for frame %d", i)
		}
		if slot.inFlight, err = ctx.CreateFence(true); err != nil {
			ctx.DestroySemaphore(slot.renderFinished)
			ctx.DestroySemaphore(slot.imageAvailable)
			return nil, debug.ErrorWrapf(err, "Failed to create fence for frame %d", i)
		}
		ring.slots = append(ring.slots, slot)
	}

	ok = true
	return ring, nil
}

func (r *frameRing) len() int {
	return len(r.slots)
}

// destroy releases sync objects in reverse creation order, then the pool,
// which frees the command buffers with it.
func (r *frameRing) destroy(ctx Context) {
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		ctx.DestroyFence(s.inFlight)
		ctx.DestroySemaphore(s.renderFinished)
		ctx.DestroySemaphore(s.imageAvailable)
	}
	r.slots = nil
	if r.pool != vulkan.NullCommandPool {
		ctx.DestroyCommandPool(r.pool)
		r.pool = vulkan.NullCommandPool
	}
}
