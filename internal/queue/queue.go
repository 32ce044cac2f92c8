// Package queue owns the ordered track list for a directory, the current
// position, and a bounded traversable play history. It decides which
// track plays next; the player decides how it is streamed.
package queue

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kvisten/murn/internal/track"
)

// Errors returned by queue operations. Path resolution errors
// (track.ErrNoTrack, track.ErrNotADirectory) pass through wrapped.
var (
	// ErrNoTracks means the queue holds no tracks.
	ErrNoTracks = errors.New("queue is empty")
	// ErrOutOfBounds means an index is outside [0, len).
	ErrOutOfBounds = errors.New("index out of bounds")
)

// Player is the narrow playback contract the queue drives. The real
// implementation is player.Player; tests use a mock.
type Player interface {
	Replace(t *track.Track) error
	Seek(pos time.Duration)
	Elapsed() time.Duration
	Duration() time.Duration
}

// Queue manages the playback order for one directory of tracks.
type Queue struct {
	path    string
	tracks  []*track.Track
	history *History
	current int // -1 if nothing playing
	shuffle bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		history: NewHistory(historyCap),
		current: -1,
	}
}

// Restore rebuilds a queue from persisted session state. A vanished
// directory yields an empty queue; a vanished or unknown track leaves
// nothing selected. The restored track is seeded into history so Last
// can walk back to it later.
func Restore(dir, trackPath string, shuffle bool) *Queue {
	q := New()
	q.shuffle = shuffle

	if dir == "" {
		return q
	}
	tracks, err := track.FromDir(dir)
	if err != nil {
		return q
	}
	q.path = dir
	q.tracks = tracks

	if trackPath == "" {
		return q
	}
	for i, t := range tracks {
		if t.Path() == trackPath {
			q.current = i
			q.history.Push(i)
			break
		}
	}
	return q
}

// Load queues a new directory, replacing the track list and resetting
// position and history.
func (q *Queue) Load(path string) error {
	tracks, err := track.FromDir(path)
	if err != nil {
		return err
	}

	q.path = path
	q.tracks = tracks
	q.current = -1
	q.history.Clear()
	return nil
}

// Path returns the queued directory, or "" if none.
func (q *Queue) Path() string { return q.path }

// Tracks returns the track list. Callers must not mutate it.
func (q *Queue) Tracks() []*track.Track { return q.tracks }

// Index returns the current track index, or -1 if nothing is playing.
func (q *Queue) Index() int { return q.current }

// Track returns the current track, or nil if nothing is playing.
func (q *Queue) Track() *track.Track {
	if q.current < 0 || q.current >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.current]
}

// Shuffle reports whether shuffle mode is on.
func (q *Queue) Shuffle() bool { return q.shuffle }

// ToggleShuffle flips shuffle mode and clears the history path.
func (q *Queue) ToggleShuffle() {
	q.history.Clear()
	q.shuffle = !q.shuffle
}

// SetShuffle sets shuffle mode directly (external commands, e.g. MPRIS).
func (q *Queue) SetShuffle(shuffle bool) {
	if q.shuffle != shuffle {
		q.history.Clear()
		q.shuffle = shuffle
	}
}

// SelectIndex plays the track at index. Manual selection invalidates the
// implied traversal path, so history is cleared.
func (q *Queue) SelectIndex(index int, p Player) error {
	if index < 0 || index >= len(q.tracks) {
		return ErrOutOfBounds
	}
	if err := q.replace(index, p); err != nil {
		return err
	}
	q.history.Clear()
	return nil
}

// SelectPath plays the track with the given path. Clears history, like
// SelectIndex.
func (q *Queue) SelectPath(path string, p Player) error {
	for i, t := range q.tracks {
		if t.Path() == path {
			if err := q.replace(i, p); err != nil {
				return err
			}
			q.history.Clear()
			return nil
		}
	}
	return fmt.Errorf("%w %q", track.ErrNoTrack, path)
}

// Next plays the next track. Resolution order: replay a forward history
// entry, else sequential wrap-around, else (shuffle) a uniformly random
// track that is not the current one.
func (q *Queue) Next(p Player) error {
	index, shuffled, ok := q.nextTrack()
	if !ok {
		return ErrNoTracks
	}
	if err := q.replace(index, p); err != nil {
		return err
	}
	// A shuffle pick joins history only once the player accepted it;
	// a failed replace must not leave a dead index for Last to retry.
	if shuffled {
		q.history.Push(index)
	}
	return nil
}

// Last plays the previous track: retreat through history if possible,
// else sequential wrap-around when shuffle is off. In shuffle mode with
// no history this is a no-op.
func (q *Queue) Last(p Player) error {
	index, ok := q.history.Retreat()
	if !ok {
		if q.shuffle {
			return nil
		}
		index, ok = q.lastSequential()
		if !ok {
			return nil
		}
	}
	return q.replace(index, p)
}

// Restart seeks the current track back to the start.
func (q *Queue) Restart(p Player) {
	if q.current >= 0 {
		p.Seek(0)
	}
}

// SeekForward seeks ahead by amt. Seeking past the end of the track
// advances to the next track instead of an out-of-range seek.
func (q *Queue) SeekForward(p Player, amt time.Duration) error {
	if q.current < 0 {
		return nil
	}
	pos := p.Elapsed() + amt
	if dur := p.Duration(); dur > 0 && pos >= dur {
		return q.Next(p)
	}
	p.Seek(pos)
	return nil
}

// SeekBackward seeks back by amt, clamped at the start of the track.
func (q *Queue) SeekBackward(p Player, amt time.Duration) {
	if q.current < 0 {
		return
	}
	pos := p.Elapsed() - amt
	if pos < 0 {
		pos = 0
	}
	p.Seek(pos)
}

// TrackFinished advances the queue after the engine reports a finished
// stream. End-of-stream is not an error.
func (q *Queue) TrackFinished(p Player) error {
	return q.Next(p)
}

// nextTrack resolves the next index; shuffled reports whether it came
// from a fresh shuffle draw and still needs a history push.
func (q *Queue) nextTrack() (index int, shuffled, ok bool) {
	if index, ok := q.history.Advance(); ok {
		return index, false, true
	}
	if !q.shuffle {
		index, ok := q.nextSequential()
		return index, false, ok
	}
	index, ok = q.nextShuffle()
	return index, true, ok
}

func (q *Queue) nextSequential() (int, bool) {
	if len(q.tracks) == 0 {
		return 0, false
	}
	if q.current < 0 {
		return 0, true
	}
	return (q.current + 1) % len(q.tracks), true
}

func (q *Queue) lastSequential() (int, bool) {
	if len(q.tracks) == 0 || q.current < 0 {
		return 0, false
	}
	if q.current == 0 {
		return len(q.tracks) - 1, true
	}
	return q.current - 1, true
}

// nextShuffle picks uniformly among all tracks except the current one.
// A single-track queue repeats that track; there is no alternative.
func (q *Queue) nextShuffle() (int, bool) {
	if len(q.tracks) == 0 {
		return 0, false
	}
	if len(q.tracks) == 1 {
		return 0, true
	}
	for {
		index := rand.IntN(len(q.tracks))
		if index != q.current {
			return index, true
		}
	}
}

// replace hands the track at index to the player and records it as
// current only if the player accepted it.
func (q *Queue) replace(index int, p Player) error {
	if err := p.Replace(q.tracks[index]); err != nil {
		return err
	}
	q.current = index
	return nil
}
