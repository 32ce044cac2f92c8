package track

import (
	"os"

	"github.com/dhowden/tag"
)

// readTags fills tag fields from the file. Files without readable tags
// keep zero values; playback does not depend on metadata.
func (t *Track) readTags() {
	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}

	t.title = m.Title()
	t.artist = m.Artist()
	t.album = m.Album()
	t.lyrics = m.Lyrics()
	t.number, _ = m.Track()
}
