// Package mpris exposes the player on the MPRIS D-Bus interface so
// desktop media controls work. Commands from D-Bus are handed to the
// application through a handler callback; playback status flows the
// other way through published snapshots. Nothing here touches the
// audio path.
package mpris

import "time"

// CommandKind identifies a remote control request.
type CommandKind int

const (
	CmdToggle CommandKind = iota
	CmdPlay
	CmdPause
	CmdStop
	CmdNext
	CmdPrevious
	CmdSeekBy
	CmdSeekTo
	CmdSetShuffle
	CmdSetVolume
)

// Command is a control request received over D-Bus. Only the fields
// relevant to Kind are set.
type Command struct {
	Kind    CommandKind
	Offset  time.Duration // CmdSeekBy (may be negative)
	Pos     time.Duration // CmdSeekTo
	Shuffle bool          // CmdSetShuffle
	Volume  float64       // CmdSetVolume, 0..1
}

// Handler receives commands on a D-Bus goroutine. Implementations must
// be safe to call from outside the UI loop; forwarding into the tea
// program is the usual approach.
type Handler func(Command)

// Status is the playback snapshot served to D-Bus clients.
type Status struct {
	TrackPath   string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Duration    time.Duration
	Position    time.Duration
	Playing     bool
	Stopped     bool // no track loaded
	Shuffle     bool
	Volume      int // 0..100
	HasTracks   bool
}
