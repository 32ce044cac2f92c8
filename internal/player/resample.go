package player

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// Resampler converts decoded blocks from the source rate to the device
// rate with linear interpolation. It is built once per stream swap and
// sized to the stream's block size; nothing on the per-block path
// allocates. The last input frame of each block is carried over so
// interpolation is continuous across block boundaries; a seek clears
// the carry so no stale audio is stitched across it.
type Resampler struct {
	step     float64 // source frames advanced per output frame
	pos      float64 // fractional read position relative to the current block
	carry    [2]float64
	hasCarry bool
	out      [][2]float64 // scratch, capacity fixed at construction
}

// NewResampler builds a converter from src to dst rate for blocks of at
// most blockSize frames.
func NewResampler(src, dst beep.SampleRate, blockSize int) *Resampler {
	maxOut := int(math.Ceil(float64(blockSize+1)*float64(dst)/float64(src))) + 2
	return &Resampler{
		step: float64(src) / float64(dst),
		out:  make([][2]float64, 0, maxOut),
	}
}

// Process converts one block of source frames. The returned slice
// aliases the internal scratch buffer and is valid until the next call.
func (r *Resampler) Process(in [][2]float64) [][2]float64 {
	out := r.out[:0]
	if len(in) == 0 {
		return out
	}

	// r.pos runs over the extended input [-1, len(in)-1), where -1 is
	// the carried last frame of the previous block.
	for r.pos < float64(len(in)-1) || r.pos < 0 {
		var s0, s1 [2]float64
		var frac float64

		if r.pos < 0 {
			s0, s1 = r.carry, in[0]
			if !r.hasCarry {
				s0 = in[0]
			}
			frac = r.pos + 1
		} else {
			i := int(r.pos)
			s0, s1 = in[i], in[i+1]
			frac = r.pos - float64(i)
		}

		out = append(out, [2]float64{
			s0[0] + (s1[0]-s0[0])*frac,
			s0[1] + (s1[1]-s0[1])*frac,
		})
		r.pos += r.step
	}

	r.carry = in[len(in)-1]
	r.hasCarry = true
	r.pos -= float64(len(in))

	r.out = out[:0]
	return out
}

// Reset drops the inter-block carry. Called on seek.
func (r *Resampler) Reset() {
	r.hasCarry = false
	r.pos = 0
}
