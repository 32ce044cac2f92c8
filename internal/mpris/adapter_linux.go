//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
)

// Adapter runs the MPRIS server and bridges it to the application.
type Adapter struct {
	server *server.Server

	mu     sync.Mutex
	status Status
}

// New starts the D-Bus server. Failure to claim the bus name is
// reported by Listen in the background and simply leaves the player
// without desktop controls.
func New(handler Handler) (*Adapter, error) {
	a := &Adapter{
		status: Status{Stopped: true},
	}

	root := &rootAdapter{}
	player := &playerAdapter{adapter: a, handler: handler}

	a.server = server.NewServer("murn", root, player)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Publish replaces the snapshot served to D-Bus clients. Call once per
// UI tick.
func (a *Adapter) Publish(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

func (a *Adapter) snapshot() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }

func (r *rootAdapter) Quit() error { return nil }

func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }

func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return "Murn", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter plus the
// optional Shuffle interface.
type playerAdapter struct {
	adapter *Adapter
	handler Handler
}

func (p *playerAdapter) Next() error {
	p.handler(Command{Kind: CmdNext})
	return nil
}

func (p *playerAdapter) Previous() error {
	p.handler(Command{Kind: CmdPrevious})
	return nil
}

func (p *playerAdapter) Pause() error {
	p.handler(Command{Kind: CmdPause})
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.handler(Command{Kind: CmdToggle})
	return nil
}

func (p *playerAdapter) Stop() error {
	p.handler(Command{Kind: CmdStop})
	return nil
}

func (p *playerAdapter) Play() error {
	p.handler(Command{Kind: CmdPlay})
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.handler(Command{Kind: CmdSeekBy, Offset: time.Duration(offset) * time.Microsecond})
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.handler(Command{Kind: CmdSeekTo, Pos: time.Duration(position) * time.Microsecond})
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	s := p.adapter.snapshot()
	switch {
	case s.Stopped:
		return types.PlaybackStatusStopped, nil
	case s.Playing:
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetRate(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	s := p.adapter.snapshot()
	if s.TrackPath == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(s.TrackPath)),
		Length:      types.Microseconds(s.Duration.Microseconds()),
		Title:       s.Title,
		Artist:      []string{s.Artist},
		Album:       s.Album,
		TrackNumber: s.TrackNumber,
	}

	if artPath := albumArtPath(s.TrackPath); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

// Artwork naming conventions differ by ripper; base names are ordered
// by how specific they are to the album itself.
var (
	artBaseNames  = []string{"cover", "folder", "album", "front"}
	artExtensions = []string{".jpg", ".png", ".jpeg"}
)

// albumArtPath returns an image stored beside the track, or "" when the
// directory carries none.
func albumArtPath(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, base := range artBaseNames {
		for _, ext := range artExtensions {
			candidate := filepath.Join(dir, base+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.adapter.snapshot().Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	p.handler(Command{Kind: CmdSetVolume, Volume: volume})
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.adapter.snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.adapter.snapshot().HasTracks, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.adapter.snapshot().HasTracks, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.adapter.snapshot().HasTracks, nil
}

func (p *playerAdapter) CanPause() (bool, error) { return true, nil }

func (p *playerAdapter) CanSeek() (bool, error) { return true, nil }

func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.adapter.snapshot().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.handler(Command{Kind: CmdSetShuffle, Shuffle: shuffle})
	return nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
