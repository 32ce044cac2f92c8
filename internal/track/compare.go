package track

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// coll orders tag strings case-insensitively and locale-aware. Only used
// from the control thread; collators are not safe for concurrent use.
var coll = collate.New(language.Und, collate.IgnoreCase)

// Compare orders tracks by (track number, title, artist, album). A field
// missing on either side compares as equal, so partially tagged
// directories still sort deterministically.
func Compare(a, b *Track) int {
	if a.number > 0 && b.number > 0 {
		if a.number != b.number {
			if a.number < b.number {
				return -1
			}
			return 1
		}
	}
	if c := compareTag(a.title, b.title); c != 0 {
		return c
	}
	if c := compareTag(a.artist, b.artist); c != 0 {
		return c
	}
	return compareTag(a.album, b.album)
}

func compareTag(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return coll.CompareString(a, b)
}
