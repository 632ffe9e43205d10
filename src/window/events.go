package window

import "cubulous/src/render"

// EventSource turns window system activity into render events. A drained
// queue pumps the window system once, blocking while the window is
// minimized so a hidden window does not spin. Wake ends such a wait.
type EventSource struct {
	poll        func()
	wait        func()
	wake        func()
	shouldClose func() bool

	redraw    bool
	minimized bool
}

var _ render.EventSource = (*EventSource)(nil)

func newEventSource(poll, wait, wake func(), shouldClose func() bool) *EventSource {
	return &EventSource{poll: poll, wait: wait, wake: wake, shouldClose: shouldClose}
}

func (s *EventSource) PollEvent() render.Event {
	if s.shouldClose() {
		return render.EventCloseRequested
	}
	if s.redraw {
		s.redraw = false
		return render.EventRedrawRequested
	}

	if s.minimized {
		s.wait()
	} else {
		s.poll()
	}
	if s.shouldClose() {
		return render.EventCloseRequested
	}
	return render.EventNone
}

// Wake makes a PollEvent blocked on a minimized window return EventNone.
// It is safe to call from any goroutine.
func (s *EventSource) Wake() {
	s.wake()
}

func (s *EventSource) RequestRedraw() {
	s.redraw = true
}

// resized records whether the framebuffer has any area left.
func (s *EventSource) resized(width, height int) {
	minimized := width == 0 || height == 0
	if minimized != s.minimized {
		logger.VPrintf("Window minimized: %t", minimized)
	}
	s.minimized = minimized
}
