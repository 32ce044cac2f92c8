package track

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.mp3")

	tr, err := New(path)
	require.NoError(t, err)
	require.Equal(t, path, tr.Path())
	// An empty file has no tags; that is not an error.
	require.Empty(t, tr.Title())
	require.Zero(t, tr.Number())
}

func TestNew_Missing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.mp3"))
	require.ErrorIs(t, err, ErrNoTrack)
}

func TestNew_Directory(t *testing.T) {
	_, err := New(t.TempDir())
	require.ErrorIs(t, err, ErrIsDirectory)
}

func TestFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.mp3")
	writeFile(t, dir, "a.flac")
	writeFile(t, dir, "notes.txt")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "c.ogg")

	tracks, err := FromDir(dir)
	require.NoError(t, err)
	require.Len(t, tracks, 3, "only playable files are scanned")

	// Untagged files compare equal, so the stable sort preserves the
	// walk order.
	require.Equal(t, filepath.Join(dir, "a.flac"), tracks[0].Path())
	require.Equal(t, filepath.Join(dir, "b.mp3"), tracks[1].Path())
	require.Equal(t, filepath.Join(sub, "c.ogg"), tracks[2].Path())
}

func TestFromDir_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.mp3")

	_, err := FromDir(path)
	require.ErrorIs(t, err, ErrNotADirectory)

	_, err = FromDir(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestIsPlayable(t *testing.T) {
	require.True(t, IsPlayable("x.mp3"))
	require.True(t, IsPlayable("x.FLAC"))
	require.True(t, IsPlayable("x.ogg"))
	require.True(t, IsPlayable("x.oga"))
	require.True(t, IsPlayable("x.wav"))
	require.False(t, IsPlayable("x.m4a"))
	require.False(t, IsPlayable("x.txt"))
	require.False(t, IsPlayable("x"))
}

func TestTrack_String(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{
			name:  "full tags",
			track: Track{number: 3, title: "Aurora", artist: "Foss"},
			want:  "03 Aurora ~ Foss",
		},
		{
			name:  "no number",
			track: Track{title: "Aurora", artist: "Foss"},
			want:  "Aurora ~ Foss",
		},
		{
			name:  "no tags",
			track: Track{},
			want:  "unknown title ~ unknown artist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.track.String())
		})
	}
}

func TestCompare(t *testing.T) {
	require.Negative(t, Compare(&Track{number: 1}, &Track{number: 2}))
	require.Positive(t, Compare(&Track{number: 2}, &Track{number: 1}))

	// Title breaks number ties, case-insensitively.
	require.Negative(t, Compare(
		&Track{number: 1, title: "alpha"},
		&Track{number: 1, title: "Beta"},
	))

	// A missing field compares equal instead of sorting first.
	require.Zero(t, Compare(
		&Track{number: 1, title: "alpha"},
		&Track{number: 1},
	))
	require.Zero(t, Compare(&Track{}, &Track{}))
}

func TestCompare_ArtistAndAlbum(t *testing.T) {
	a := &Track{title: "same", artist: "Ana"}
	b := &Track{title: "same", artist: "Bo"}
	require.Negative(t, Compare(a, b))

	c := &Track{title: "same", artist: "Ana", album: "First"}
	d := &Track{title: "same", artist: "Ana", album: "Second"}
	require.Negative(t, Compare(c, d))
}
