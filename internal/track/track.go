// Package track provides immutable handles to decodable audio files and
// their tag metadata, plus directory scanning with deterministic ordering.
package track

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Errors returned when resolving paths into tracks.
var (
	// ErrNoTrack means the path does not exist.
	ErrNoTrack = errors.New("couldn't find track")
	// ErrIsDirectory means a track path points at a directory.
	ErrIsDirectory = errors.New("is a directory")
	// ErrNotADirectory means a scan path is not a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// File extensions with a decode path.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtWAV  = ".wav"
)

// Track is an immutable handle to a decodable audio file and its tags.
// Tracks are shared by pointer between the queue and the UI; all fields
// are fixed at creation.
type Track struct {
	path   string
	title  string
	artist string
	album  string
	lyrics string
	number int // 0 when the tag is absent
}

// New reads a Track from path. Unreadable or missing tags are not an
// error; the track simply has empty tag fields.
func New(path string) (*Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrNoTrack, path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w %q", ErrIsDirectory, path)
	}

	t := &Track{path: path}
	t.readTags()
	return t, nil
}

// FromDir recursively scans path for playable files and returns them
// sorted by (track number, title, artist, album); see Compare.
func FromDir(path string) ([]*Track, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w %q", ErrNotADirectory, path)
	}

	var tracks []*Track
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil //nolint:nilerr // intentional skip
		}
		if d.IsDir() || !IsPlayable(p) {
			return nil
		}
		t, err := New(p)
		if err != nil {
			return nil
		}
		tracks = append(tracks, t)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return Compare(tracks[i], tracks[j]) < 0
	})
	return tracks, nil
}

// IsPlayable reports whether the path has a supported audio extension.
func IsPlayable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOGG, ExtOGA, ExtWAV:
		return true
	}
	return false
}

// Path returns the file path.
func (t *Track) Path() string { return t.path }

// Title returns the title tag, or "" if absent.
func (t *Track) Title() string { return t.title }

// Artist returns the artist tag, or "" if absent.
func (t *Track) Artist() string { return t.artist }

// Album returns the album tag, or "" if absent.
func (t *Track) Album() string { return t.album }

// Lyrics returns the unsynchronized lyrics tag, or "" if absent.
func (t *Track) Lyrics() string { return t.lyrics }

// Number returns the track number tag, or 0 if absent.
func (t *Track) Number() int { return t.number }

// String formats the track as "NN title ~ artist" with fallbacks for
// missing tags.
func (t *Track) String() string {
	var b strings.Builder
	if t.number > 0 {
		fmt.Fprintf(&b, "%02d ", t.number)
	}

	title := t.title
	if title == "" {
		title = "unknown title"
	}
	artist := t.artist
	if artist == "" {
		artist = "unknown artist"
	}

	b.WriteString(title)
	b.WriteString(" ~ ")
	b.WriteString(artist)
	return b.String()
}
