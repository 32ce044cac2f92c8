package player

import (
	"github.com/gopxl/beep/v2"
)

// process is the audio engine. It implements beep.Streamer and runs
// entirely inside the speaker's real-time callback: it drains pending
// commands, pulls decoded (and resampled) blocks from the active
// stream, applies the cubic gain curve, and reports timing back to the
// control thread. Every operation in Stream is non-blocking and
// bounded; a starved or finished stream degrades to silence, never to a
// stall or a panic.
type process struct {
	deviceRate beep.SampleRate

	commands chan command
	events   chan event
	retired  chan *StreamSource

	src       *StreamSource
	resampler *Resampler
	pending   [][2]float64 // decoded samples awaiting output
	head      int          // read index into pending
	srcPos    int          // frame position in the source's own rate
	gain      float64      // linear, [0,1]; output is gain cubed
	paused    bool
	done      bool
}

func newProcess(deviceRate beep.SampleRate) *process {
	return &process{
		deviceRate: deviceRate,
		commands:   make(chan command, commandCap),
		events:     make(chan event, eventCap),
		retired:    make(chan *StreamSource, retiredCap),
		gain:       1,
	}
}

var _ beep.Streamer = (*process)(nil)

// Stream fills the device buffer. It always reports the buffer as
// fully written: the engine's silence is still audio.
func (p *process) Stream(samples [][2]float64) (int, bool) {
	p.drainCommands()

	if p.src == nil || p.done || p.paused {
		silence(samples)
		return len(samples), true
	}

	p.fill(len(samples))
	p.copyOut(samples)
	p.reportPlayhead()
	return len(samples), true
}

// Err implements beep.Streamer. Engine-side failures degrade to
// silence and a done report instead of surfacing here.
func (p *process) Err() error { return nil }

// drainCommands consumes every pending control message. Bounded by the
// channel capacity, so this step is bounded-time.
func (p *process) drainCommands() {
	for {
		select {
		case cmd := <-p.commands:
			p.apply(cmd)
		default:
			return
		}
	}
}

func (p *process) apply(cmd command) {
	switch c := cmd.(type) {
	case useStream:
		p.swap(c.src, c.paused)

	case setPaused:
		p.paused = c.paused

	case setGain:
		p.gain = c.gain

	case seekTo:
		if p.src == nil {
			return
		}
		frame := framesAt(c.pos, p.src.format.SampleRate)
		if p.src.length > 0 && frame > p.src.length {
			frame = p.src.length
		}
		p.src.seek(frame)
		p.srcPos = frame
		p.dropBuffered()
		p.done = false
		p.reportPlayhead()
	}
}

// swap replaces the active stream, retiring the old one to the control
// thread and resizing scratch state for the new stream's rate.
func (p *process) swap(src *StreamSource, paused bool) {
	if p.src != nil {
		select {
		case p.retired <- p.src:
		default:
			// Control thread has not drained retirements; the stream
			// leaks until process exit rather than blocking here.
		}
	}

	p.src = src
	p.paused = paused
	p.done = false
	p.srcPos = src.start
	p.pending = p.pending[:0]
	p.head = 0

	if src.format.SampleRate != p.deviceRate {
		p.resampler = NewResampler(src.format.SampleRate, p.deviceRate, blockFrames)
	} else {
		p.resampler = nil
	}

	// Half a second of slack plus one block's worth keeps the top-up
	// loop from growing pending on the hot path.
	maxBlock := blockFrames
	if p.resampler != nil {
		maxBlock = cap(p.resampler.out)
	}
	if want := int(p.deviceRate)/2 + maxBlock; cap(p.pending) < want {
		p.pending = make([][2]float64, 0, want)
	}

	p.reportPlayhead()
}

// fill tops up the pending buffer until it can satisfy need frames, the
// cache underruns, or the stream ends.
func (p *process) fill(need int) {
	p.compact()

	for p.buffered() < need {
		blk, ok := p.src.nextBlock()
		if !ok {
			return // underrun: emit what we have plus silence
		}
		if blk.gen != p.src.generation() {
			continue // decoded before the last seek
		}

		if len(blk.frames) > 0 {
			p.srcPos += len(blk.frames)
			if p.resampler != nil {
				p.pending = append(p.pending, p.resampler.Process(blk.frames)...)
			} else {
				p.pending = append(p.pending, blk.frames...)
			}
		}

		if blk.eof {
			p.done = true
			p.sendEvent(doneEvent{})
			return
		}
	}
}

func (p *process) buffered() int { return len(p.pending) - p.head }

// compact moves unread samples to the front so append never grows the
// buffer past its pre-sized capacity.
func (p *process) compact() {
	if p.head == 0 {
		return
	}
	n := copy(p.pending, p.pending[p.head:])
	p.pending = p.pending[:n]
	p.head = 0
}

// copyOut writes buffered samples into the device buffer, applying the
// cubic loudness curve, and pads any shortfall with silence.
func (p *process) copyOut(samples [][2]float64) {
	g := p.gain * p.gain * p.gain

	n := 0
	for ; n < len(samples) && p.head < len(p.pending); n++ {
		f := p.pending[p.head]
		p.head++
		samples[n][0] = f[0] * g
		samples[n][1] = f[1] * g
	}
	silence(samples[n:])
}

func (p *process) dropBuffered() {
	p.pending = p.pending[:0]
	p.head = 0
	if p.resampler != nil {
		p.resampler.Reset()
	}
}

// reportPlayhead publishes the position derived from the stream's own
// frame counter, which stays exact across seeks and resampling.
func (p *process) reportPlayhead() {
	if p.src == nil {
		return
	}
	p.sendEvent(playheadEvent{pos: p.src.format.SampleRate.D(p.srcPos)})
}

// sendEvent never blocks; a full event channel drops the report. The
// next callback produces a fresh one.
func (p *process) sendEvent(e event) {
	select {
	case p.events <- e:
	default:
	}
}

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}
