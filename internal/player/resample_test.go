package player

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineFrames(n int, freq, rate float64) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		v := math.Sin(2 * math.Pi * freq * float64(i) / rate)
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func TestResampler_OutputRatio(t *testing.T) {
	r := NewResampler(44100, 48000, 441)

	total := 0
	for i := 0; i < 100; i++ {
		total += len(r.Process(constFrames(441, 0)))
	}

	// 44100 input frames over one second of source audio must come out
	// as one second at the device rate, give or take block rounding.
	require.InDelta(t, 48000, total, 4)
}

func TestResampler_SineRoundTrip(t *testing.T) {
	const (
		srcRate = 44100.0
		dstRate = 48000.0
		freq    = 440.0
	)

	r := NewResampler(44100, 48000, 441)
	in := sineFrames(44100, freq, srcRate)

	var out [][2]float64
	for off := 0; off < len(in); off += 441 {
		out = append(out, r.Process(in[off:off+441])...)
	}

	// Estimate the output frequency by counting zero crossings.
	crossings := 0
	for i := 1; i < len(out); i++ {
		if (out[i-1][0] < 0) != (out[i][0] < 0) {
			crossings++
		}
	}
	got := float64(crossings) / 2 * dstRate / float64(len(out))
	require.InDelta(t, freq, got, freq*0.01)
}

func TestResampler_DCPassthrough(t *testing.T) {
	r := NewResampler(44100, 48000, 512)

	out := r.Process(constFrames(512, 0.5))
	require.NotEmpty(t, out)
	for _, f := range out {
		require.InDelta(t, 0.5, f[0], 1e-9)
		require.InDelta(t, 0.5, f[1], 1e-9)
	}
}

func TestResampler_NoAllocationOnHotPath(t *testing.T) {
	r := NewResampler(44100, 48000, 512)
	in := constFrames(512, 0.5)

	allocs := testing.AllocsPerRun(50, func() {
		r.Process(in)
	})
	require.Zero(t, allocs)
}

func TestResampler_ResetDropsCarry(t *testing.T) {
	r := NewResampler(44100, 48000, 512)

	r.Process(constFrames(512, 1))
	r.Reset()

	out := r.Process(constFrames(512, 0))
	require.NotEmpty(t, out)
	// Without the reset the first output would interpolate from the
	// carried 1.0 frame of the old position.
	require.Zero(t, out[0][0])
}

func TestResampler_CarryBridgesBlocks(t *testing.T) {
	r := NewResampler(44100, 48000, 2)

	r.Process([][2]float64{{0, 0}, {1, 1}})
	out := r.Process([][2]float64{{1, 1}, {1, 1}})

	// Upsampling reads between the last frame of the previous block and
	// the first of this one; every interpolated value sits in [0, 1].
	for _, f := range out {
		require.GreaterOrEqual(t, f[0], 0.0)
		require.LessOrEqual(t, f[0], 1.0)
	}
}

func TestResampler_EmptyInput(t *testing.T) {
	r := NewResampler(44100, 48000, 512)
	require.Empty(t, r.Process(nil))
}
