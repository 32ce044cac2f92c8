package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestPlayer wires a Player to an engine without opening the output
// device; tests drive the callback by hand. The initial gain command is
// drained so tests observe only their own sends.
func newTestPlayer() *Player {
	pl := newPlayer(newProcess(48000))
	drainCommands(pl)
	return pl
}

func drainCommands(p *Player) []command {
	var out []command
	for {
		select {
		case cmd := <-p.proc.commands:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func lastGain(t *testing.T, cmds []command) float64 {
	t.Helper()
	gain := -1.0
	for _, cmd := range cmds {
		if g, ok := cmd.(setGain); ok {
			gain = g.gain
		}
	}
	require.GreaterOrEqual(t, gain, 0.0, "no gain command sent")
	return gain
}

func TestPlayer_InitialGainMatchesDefaultVolume(t *testing.T) {
	pl := newPlayer(newProcess(48000))

	require.Equal(t, 50, pl.Volume())
	require.Equal(t, 0.5, lastGain(t, drainCommands(pl)))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	pl := newTestPlayer()

	pl.SetVolume(150)
	require.Equal(t, 100, pl.Volume())
	require.Equal(t, 1.0, lastGain(t, drainCommands(pl)))

	pl.SetVolume(-10)
	require.Equal(t, 0, pl.Volume())
	require.Equal(t, 0.0, lastGain(t, drainCommands(pl)))
}

func TestPlayer_VolumeSteps(t *testing.T) {
	pl := newTestPlayer()

	pl.VolumeUp(5)
	require.Equal(t, 55, pl.Volume())
	pl.VolumeDown(60)
	require.Equal(t, 0, pl.Volume())
}

func TestPlayer_MutePreservesStoredVolume(t *testing.T) {
	pl := newTestPlayer()
	pl.SetVolume(80)
	drainCommands(pl)

	pl.SetMuted(true)
	require.True(t, pl.Muted())
	require.Equal(t, 80, pl.Volume())
	require.Equal(t, 0.0, lastGain(t, drainCommands(pl)))

	// Unmute restores exactly the stored level.
	pl.SetMuted(false)
	require.Equal(t, 0.8, lastGain(t, drainCommands(pl)))
}

func TestPlayer_SetVolumeWhileMuted(t *testing.T) {
	pl := newTestPlayer()
	pl.SetMuted(true)
	drainCommands(pl)

	// Volume changes while muted update the stored value without
	// touching the engine gain.
	pl.SetVolume(90)
	require.Equal(t, 90, pl.Volume())
	for _, cmd := range drainCommands(pl) {
		_, isGain := cmd.(setGain)
		require.False(t, isGain, "gain must stay at zero while muted")
	}

	pl.ToggleMute()
	require.Equal(t, 0.9, lastGain(t, drainCommands(pl)))
}

func TestPlayer_Toggle(t *testing.T) {
	pl := newTestPlayer()
	require.True(t, pl.Paused())

	pl.Toggle()
	require.False(t, pl.Paused())

	cmds := drainCommands(pl)
	require.Len(t, cmds, 1)
	require.Equal(t, setPaused{paused: false}, cmds[0])
}

func TestPlayer_SeekClampsToDuration(t *testing.T) {
	pl := newTestPlayer()
	pl.duration = time.Minute

	pl.Seek(2 * time.Minute)
	require.Equal(t, time.Minute, pl.Elapsed())

	pl.Seek(-time.Second)
	require.Equal(t, time.Duration(0), pl.Elapsed())
}

func TestPlayer_UpdateDrainsEvents(t *testing.T) {
	pl := newTestPlayer()

	pl.proc.events <- playheadEvent{pos: 42 * time.Second}
	pl.proc.events <- doneEvent{}
	pl.Update()

	require.Equal(t, 42*time.Second, pl.Elapsed())
	require.True(t, pl.Done())
}

func TestPlayer_UpdateClosesRetiredStreams(t *testing.T) {
	pl := newTestPlayer()

	ms := &memStreamer{data: constFrames(10, 0)}
	src := newStreamSource("mem", ms, testFormat(48000), 0)
	go src.run()

	pl.proc.retired <- src
	pl.Update()
	require.True(t, ms.closed)
}

func TestPlayer_DroppedCommandClosesStream(t *testing.T) {
	pl := newTestPlayer()

	// Saturate the command channel so the adopt send is dropped.
	for i := 0; i < commandCap; i++ {
		pl.proc.commands <- setGain{gain: 1}
	}

	ms := &memStreamer{data: constFrames(10, 0)}
	src := newStreamSource("mem", ms, testFormat(48000), 0)
	go src.run()

	pl.adopt(src, false)
	require.True(t, ms.closed)
	require.True(t, pl.Paused(), "a dropped swap must not flip transport state")
}
