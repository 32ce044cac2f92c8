// Package player implements the real-time playback engine: a
// disk-streaming decoder bridged into the audio output callback over
// bounded message channels, with on-the-fly sample-rate conversion.
// Player is the control-thread façade; everything engine-side runs
// inside the speaker callback and never blocks.
package player

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/kvisten/murn/internal/track"
)

// DefaultDeviceRate is the output rate used when the config does not
// override it. Sources at a different rate are resampled.
const DefaultDeviceRate = 48000

var speakerInitialized bool

// Player is the public playback handle. All mutators are
// fire-and-forget: they enqueue a message for the engine and return
// immediately; a momentarily full channel drops the send, which the
// frequent UI tick makes harmless. Status accessors return values
// cached by the last Update call.
type Player struct {
	proc *process

	volume   int // 0..100, last requested even while muted
	muted    bool
	paused   bool
	done     bool
	elapsed  time.Duration
	duration time.Duration
}

// New opens the output device at the given rate (frames per second) and
// starts the engine, which renders silence until a stream arrives.
func New(deviceRate int) (*Player, error) {
	if deviceRate <= 0 {
		deviceRate = DefaultDeviceRate
	}
	sr := beep.SampleRate(deviceRate)

	proc := newProcess(sr)
	if !speakerInitialized {
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, err
		}
		speakerInitialized = true
	}
	speaker.Play(proc)

	return newPlayer(proc), nil
}

// newPlayer wraps an engine and aligns its gain with the default
// volume, so the engine never plays at a level the facade does not
// report.
func newPlayer(proc *process) *Player {
	pl := &Player{
		proc:   proc,
		volume: 50,
		paused: true,
	}
	pl.send(setGain{gain: float64(pl.volume) / 100})
	return pl
}

// Close silences the output. Engine-owned resources are released when
// the process exits.
func (pl *Player) Close() {
	speaker.Clear()
}

// Replace loads the track and plays it immediately, discarding any
// current stream. Opening blocks on the initial cache fill; this is the
// one blocking operation in the subsystem and it stays on the control
// thread. On error the previous playback state is left untouched.
func (pl *Player) Replace(t *track.Track) error {
	src, err := OpenStream(t.Path(), 0)
	if err != nil {
		return err
	}
	pl.adopt(src, false)
	return nil
}

// Revive loads the track paused and seeked to a prior elapsed position.
// Used on startup to restore the previous session.
func (pl *Player) Revive(t *track.Track, at time.Duration) error {
	src, err := OpenStream(t.Path(), at)
	if err != nil {
		return err
	}
	pl.adopt(src, true)
	return nil
}

func (pl *Player) adopt(src *StreamSource, paused bool) {
	if !pl.send(useStream{src: src, paused: paused}) {
		// Dropped command: the engine never saw the stream, so it is
		// still ours to close.
		src.Close()
		return
	}
	pl.paused = paused
	pl.done = false
	pl.duration = src.Duration()
	pl.elapsed = src.format.SampleRate.D(src.start)
}

// Seek requests a jump to the given position.
func (pl *Player) Seek(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	if pl.duration > 0 && pos > pl.duration {
		pos = pl.duration
	}
	if pl.send(seekTo{pos: pos}) {
		pl.elapsed = pos
	}
}

// Toggle flips between playing and paused.
func (pl *Player) Toggle() {
	pl.Pause(!pl.paused)
}

// Pause sets the transport state directly (used when restoring a
// persisted paused position or honoring an external command).
func (pl *Player) Pause(paused bool) {
	if pl.send(setPaused{paused: paused}) {
		pl.paused = paused
	}
}

// SetVolume stores and applies a volume percentage in [0, 100]. While
// muted only the stored value changes.
func (pl *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	pl.volume = volume
	if !pl.muted {
		pl.send(setGain{gain: float64(volume) / 100})
	}
}

// VolumeUp raises the volume by step, saturating at 100.
func (pl *Player) VolumeUp(step int) {
	pl.SetVolume(pl.volume + step)
}

// VolumeDown lowers the volume by step, saturating at 0.
func (pl *Player) VolumeDown(step int) {
	pl.SetVolume(pl.volume - step)
}

// SetMuted forces the engine gain to zero without touching the stored
// volume; unmuting restores exactly the prior level.
func (pl *Player) SetMuted(muted bool) {
	pl.muted = muted
	gain := 0.0
	if !muted {
		gain = float64(pl.volume) / 100
	}
	pl.send(setGain{gain: gain})
}

// ToggleMute flips the mute state.
func (pl *Player) ToggleMute() {
	pl.SetMuted(!pl.muted)
}

// Volume returns the stored volume percentage.
func (pl *Player) Volume() int { return pl.volume }

// Muted reports the mute state.
func (pl *Player) Muted() bool { return pl.muted }

// Paused reports the transport state.
func (pl *Player) Paused() bool { return pl.paused }

// Done reports whether the engine finished the current stream. It
// stays set until a new stream is adopted.
func (pl *Player) Done() bool { return pl.done }

// Elapsed returns the playhead position from the last Update.
func (pl *Player) Elapsed() time.Duration { return pl.elapsed }

// Duration returns the active stream's total length.
func (pl *Player) Duration() time.Duration { return pl.duration }

// Update drains the engine's status channel into the cached fields and
// closes streams retired by a swap. Call once per UI tick, before
// reading any accessor.
func (pl *Player) Update() {
	for {
		select {
		case e := <-pl.proc.events:
			switch ev := e.(type) {
			case playheadEvent:
				pl.elapsed = ev.pos
			case doneEvent:
				pl.done = true
			}
		default:
			pl.drainRetired()
			return
		}
	}
}

// drainRetired closes streams the engine has swapped out. Old sources
// are always released here, on the control thread, never mid-callback.
func (pl *Player) drainRetired() {
	for {
		select {
		case src := <-pl.proc.retired:
			src.Close()
		default:
			return
		}
	}
}

func (pl *Player) send(cmd command) bool {
	select {
	case pl.proc.commands <- cmd:
		return true
	default:
		return false
	}
}
