package player

import (
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

const (
	// blockFrames is the number of frames decoded per cache block.
	blockFrames = 4096
	// lookaheadBlocks bounds how many decoded blocks the worker keeps
	// ahead of the audio thread.
	lookaheadBlocks = 8
	// readyBlocks is the prefetch level waited for when opening a
	// stream, so early reads and seeks never hit the disk synchronously.
	readyBlocks = 2
	// readyTimeout caps the initial prefetch wait on slow media.
	readyTimeout = 2 * time.Second
)

// cacheBlock is one pre-fetched chunk of decoded frames. Blocks carry
// the seek generation they were decoded under so the audio thread can
// discard stale data after a seek without ever blocking.
type cacheBlock struct {
	gen    uint32
	frames [][2]float64
	eof    bool
}

// seekRequest carries its own generation so the worker tags blocks with
// the generation of the seek it actually applied, never with a counter
// value that raced ahead of it.
type seekRequest struct {
	frame int
	gen   uint32
}

// StreamSource streams decoded audio from disk through a bounded
// look-ahead cache. A worker goroutine owns the decoder; the audio
// thread only performs non-blocking channel reads. An exhausted stream
// is not dead: a seek resurrects it.
type StreamSource struct {
	path     string
	format   beep.Format
	length   int // total frames, 0 if the decoder can't tell
	start    int // initial frame position
	streamer beep.StreamSeekCloser
	file     *os.File

	blocks chan cacheBlock
	seeks  chan seekRequest
	quit   chan struct{}
	gen    atomic.Uint32
	eof    atomic.Bool

	closeOnce sync.Once
}

// OpenStream opens path for playback starting at the given position.
// It blocks the calling (control) thread until the look-ahead cache is
// primed; it is never called from the audio thread.
func OpenStream(path string, at time.Duration) (*StreamSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	start := framesAt(at, format.SampleRate)
	if length := streamer.Len(); length > 0 && start > length {
		start = length
	}
	if start > 0 {
		if err := streamer.Seek(start); err != nil {
			streamer.Close()
			f.Close()
			return nil, err
		}
	}

	s := newStreamSource(path, streamer, format, start)
	s.file = f
	go s.run()
	s.waitReady()
	return s, nil
}

// newStreamSource wires up a source around an already-open decoder.
// OpenStream is the production path; tests inject in-memory streamers.
func newStreamSource(path string, streamer beep.StreamSeekCloser, format beep.Format, start int) *StreamSource {
	return &StreamSource{
		path:     path,
		format:   format,
		length:   streamer.Len(),
		start:    start,
		streamer: streamer,
		blocks:   make(chan cacheBlock, lookaheadBlocks),
		seeks:    make(chan seekRequest, 1),
		quit:     make(chan struct{}),
	}
}

// framesAt translates a duration into a frame index at the given rate.
func framesAt(d time.Duration, rate beep.SampleRate) int {
	frame := int(math.Round(d.Seconds() * float64(rate)))
	if frame < 0 {
		frame = 0
	}
	return frame
}

// Path returns the file path the stream was opened from.
func (s *StreamSource) Path() string { return s.path }

// Duration returns the total stream length.
func (s *StreamSource) Duration() time.Duration {
	return s.format.SampleRate.D(s.length)
}

// Close stops the worker and releases the decoder. Must be called on
// the control thread, after ownership has transferred back from the
// engine.
func (s *StreamSource) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.streamer.Close()
		if s.file != nil {
			s.file.Close()
		}
	})
}

// run decodes ahead of playback, parking at end-of-file until a seek
// or Close arrives. gen is the generation of the last applied seek;
// decoded blocks are tagged with it, so a seek that lands between a
// decode and its send can never promote pre-seek audio to the new
// generation.
func (s *StreamSource) run() {
	gen := s.gen.Load()
	idle := false
	for {
		if idle {
			select {
			case <-s.quit:
				return
			case req := <-s.seeks:
				gen = s.applySeek(req)
				idle = false
			}
			continue
		}

		select {
		case <-s.quit:
			return
		case req := <-s.seeks:
			gen = s.applySeek(req)
			continue
		default:
		}

		buf := make([][2]float64, blockFrames)
		n, ok := s.streamer.Stream(buf)

		blk := cacheBlock{gen: gen, frames: buf[:n]}
		if !ok || n == 0 {
			blk.eof = true
			s.eof.Store(true)
			idle = true
		}

		select {
		case s.blocks <- blk:
		case <-s.quit:
			return
		case req := <-s.seeks:
			gen = s.applySeek(req)
			idle = false
		}
	}
}

func (s *StreamSource) applySeek(req seekRequest) uint32 {
	frame := req.frame
	if frame < 0 {
		frame = 0
	}
	if s.length > 0 && frame > s.length {
		frame = s.length
	}
	// A failed decoder seek leaves the stream where it was; the next
	// playhead report corrects the control thread's view.
	_ = s.streamer.Seek(frame)
	s.eof.Store(false)
	return req.gen
}

// nextBlock hands the audio thread the next cache block without
// blocking. ok is false on underrun (cache empty but stream live).
func (s *StreamSource) nextBlock() (cacheBlock, bool) {
	select {
	case blk := <-s.blocks:
		return blk, true
	default:
		return cacheBlock{}, false
	}
}

// generation returns the current seek generation; blocks tagged with an
// older generation are stale.
func (s *StreamSource) generation() uint32 { return s.gen.Load() }

// seek requests a reposition. Called from the audio callback: it bumps
// the generation so buffered blocks are invalidated immediately, then
// hands the decoder work to the worker. Never blocks; an unprocessed
// older request is replaced.
func (s *StreamSource) seek(frame int) {
	req := seekRequest{frame: frame, gen: s.gen.Add(1)}
	select {
	case s.seeks <- req:
	default:
		select {
		case <-s.seeks:
		default:
		}
		select {
		case s.seeks <- req:
		default:
		}
	}
}

// waitReady blocks until the look-ahead cache is primed, the stream
// hits EOF, or the timeout expires.
func (s *StreamSource) waitReady() {
	deadline := time.Now().Add(readyTimeout)
	for len(s.blocks) < readyBlocks && !s.eof.Load() {
		if !time.Now().Before(deadline) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
