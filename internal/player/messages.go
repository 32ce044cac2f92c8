package player

import "time"

// Channel capacities for the two control/engine message queues. The
// command side is sized for the worst-case burst of user actions per UI
// tick; the event side carries frequent playhead reports.
const (
	commandCap = 64
	eventCap   = 256
	retiredCap = 8
)

// command is a control-thread message consumed by the engine exactly
// once, inside the audio callback.
type command interface{ isCommand() }

// useStream swaps in a freshly opened stream, discarding prior decode
// and resample state. The previous stream is handed back for the
// control thread to close.
type useStream struct {
	src    *StreamSource
	paused bool
}

// setPaused sets the transport state directly.
type setPaused struct{ paused bool }

// setGain sets the linear gain in [0, 1]. The sender clamps; the engine
// applies the cubic loudness curve.
type setGain struct{ gain float64 }

// seekTo moves the active stream to a position, translated to a frame
// index by the stream's own sample rate.
type seekTo struct{ pos time.Duration }

func (useStream) isCommand() {}
func (setPaused) isCommand() {}
func (setGain) isCommand()   {}
func (seekTo) isCommand()    {}

// event is an engine report drained by Player.Update on the control
// thread.
type event interface{ isEvent() }

// playheadEvent reports the playback position, derived from the
// stream's frame position rather than wall-clock time.
type playheadEvent struct{ pos time.Duration }

// doneEvent reports that the stream reached its end. Not an error; the
// queue reacts by advancing.
type doneEvent struct{}

func (playheadEvent) isEvent() {}
func (doneEvent) isEvent()     {}
