// Package snippet slides a fixed window across a monophonic voice line,
// producing shallow views that stemmers turn into index keys.
package snippet

import "github.com/axiomabsolute/firms-go/internal/notemodel"

// Snippet is a W-note window at a given offset into one voice line.
// Notes is a shallow view: it shares the underlying notes with the
// voice line it was extracted from.
type Snippet struct {
	Notes  []*notemodel.GeneralNote
	Offset int
}

// Extract returns max(0, L-W+1) snippets at integer offsets 0..L-W over
// the given voice line, for a fixed window size w.
func Extract(voiceLine []*notemodel.GeneralNote, w int) []*Snippet {
	l := len(voiceLine)
	count := l - w + 1
	if count <= 0 {
		return nil
	}
	snippets := make([]*Snippet, count)
	for offset := 0; offset < count; offset++ {
		snippets[offset] = &Snippet{
			Notes:  voiceLine[offset : offset+w],
			Offset: offset,
		}
	}
	return snippets
}
