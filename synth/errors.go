package synth

import "errors"

var (
	// ErrQueueFull is returned when the event queue has no free slot. The
	// event is not delivered.
	ErrQueueFull = errors.New("synth: event queue full")
	// ErrClosed is returned by event producers after Close.
	ErrClosed = errors.New("synth: engine closed")
	// ErrUnknownParam is returned for names outside the control surface.
	ErrUnknownParam = errors.New("synth: unknown parameter")
)
