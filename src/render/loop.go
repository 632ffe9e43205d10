package render

import (
	"context"

	"goarrg.com/debug"
)

type Event int

const (
	// EventNone means the event queue is drained.
	EventNone Event = iota
	EventRedrawRequested
	EventCloseRequested
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventRedrawRequested:
		return "redraw requested"
	case EventCloseRequested:
		return "close requested"
	}
	return "unknown"
}

// Control tells the loop whether to keep going.
type Control int

const (
	ControlContinue Control = iota
	ControlExit
)

// EventSource delivers window events to the loop.
type EventSource interface {
	// PollEvent returns the next pending event, or EventNone.
	PollEvent() Event
	// RequestRedraw makes a later PollEvent return EventRedrawRequested.
	RequestRedraw()
}

// Handle reacts to one event. A drained queue requests a redraw, a redraw
// draws a frame and a close request waits for the device to go idle.
func (r *Renderer) Handle(ev Event, src EventSource) (Control, error) {
	switch ev {
	case EventNone:
		src.RequestRedraw()
		return ControlContinue, nil
	case EventRedrawRequested:
		return ControlContinue, r.DrawFrame()
	case EventCloseRequested:
		if err := r.ctx.WaitIdle(); err != nil {
			return ControlExit, debug.ErrorWrapf(err, "Failed to wait for device idle")
		}
		return ControlExit, nil
	}
	return ControlContinue, debug.Errorf("Unknown event %d", ev)
}

// Run pumps events from src into r until a close request, an error, or ctx
// is done. Cancellation is handled like a close request.
func Run(ctx context.Context, r *Renderer, src EventSource) (err error) {
	defer CheckError(&err)

	var ctl Control
	for {
		ev := src.PollEvent()
		if ctx.Err() != nil {
			logger.IPrintf("Context done, closing")
			ev = EventCloseRequested
		}
		ctl, err = r.Handle(ev, src)
		if err != nil {
			return err
		}
		if ctl == ControlExit {
			return nil
		}
	}
}
