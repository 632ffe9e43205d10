package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/vulkan"
)

// fakeSource replays events, then reports close. RequestRedraw queues a
// redraw ahead of the remaining events.
type fakeSource struct {
	events   []Event
	redraws  int
	polled   int
	onPoll   func(n int)
	requests int
}

func (s *fakeSource) PollEvent() Event {
	s.polled++
	if s.onPoll != nil {
		s.onPoll(s.polled)
	}
	if s.redraws > 0 {
		s.redraws--
		return EventRedrawRequested
	}
	if len(s.events) == 0 {
		return EventCloseRequested
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev
}

func (s *fakeSource) RequestRedraw() {
	s.requests++
	s.redraws++
}

func TestHandle(t *testing.T) {
	ctx := newFakeContext()
	r := newTestRenderer(t, ctx, &fakeWindow{800, 600}, 2)
	defer r.Destroy()
	src := &fakeSource{}

	ctl, err := r.Handle(EventNone, src)
	require.NoError(t, err)
	require.Equal(t, ControlContinue, ctl)
	require.Equal(t, 1, src.requests)
	require.Empty(t, ctx.submits)

	ctl, err = r.Handle(EventRedrawRequested, src)
	require.NoError(t, err)
	require.Equal(t, ControlContinue, ctl)
	require.Len(t, ctx.submits, 1)

	idle := ctx.waitIdleCalls
	ctl, err = r.Handle(EventCloseRequested, src)
	require.NoError(t, err)
	require.Equal(t, ControlExit, ctl)
	require.Equal(t, idle+1, ctx.waitIdleCalls)
	require.Zero(t, ctx.pending())

	_, err = r.Handle(Event(42), src)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	ctx := newFakeContext()
	r := newTestRenderer(t, ctx, &fakeWindow{800, 600}, 2)
	defer r.Destroy()

	// Every drained queue turns into one redraw until the source closes.
	src := &fakeSource{events: []Event{EventNone, EventNone, EventRedrawRequested, EventNone}}
	require.NoError(t, Run(context.Background(), r, src))
	require.Equal(t, 3, src.requests)
	require.Len(t, ctx.submits, 4)
	require.Zero(t, ctx.pending())
}

func TestRunCancel(t *testing.T) {
	ctx := newFakeContext()
	r := newTestRenderer(t, ctx, &fakeWindow{800, 600}, 2)
	defer r.Destroy()

	c, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{
		events: make([]Event, 100),
		onPoll: func(n int) {
			if n == 5 {
				cancel()
			}
		},
	}
	require.NoError(t, Run(c, r, src))
	require.Equal(t, 5, src.polled)
	require.Len(t, ctx.submits, 2)
}

func TestRunError(t *testing.T) {
	ctx := newFakeContext()
	r := newTestRenderer(t, ctx, &fakeWindow{800, 600}, 2)
	defer r.Destroy()

	ctx.acquireResults = []vulkan.Result{vulkan.Success, vulkan.ErrorDeviceLost}
	src := &fakeSource{events: make([]Event, 10)}
	require.Error(t, Run(context.Background(), r, src))
	require.Len(t, ctx.submits, 1)
}
