// Package stem implements the six deterministic stemmers that turn a
// snippet window into a single whitespace-joined token string.
package stem

import (
	"strconv"
	"strings"

	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/snippet"
)

// Stemmer is a pure function from a snippet window to its index key.
type Stemmer interface {
	Name() string
	Stem(s *snippet.Snippet) string
}

// All returns one instance of every stemmer specified for the engine.
func All() []Stemmer {
	return []Stemmer{
		ByPitch{},
		BySimplePitch{},
		ByInterval{},
		ByContour{},
		ByRythm{},
		ByNormalRythm{},
	}
}

func pitchTokens(n *notemodel.GeneralNote, withOctave bool) []string {
	names := make([]string, len(n.Pitches))
	for i, p := range n.Pitches {
		if withOctave {
			names[i] = p.NameWithOctave()
		} else {
			names[i] = p.Name()
		}
	}
	return names
}

func pitchToken(n *notemodel.GeneralNote, withOctave bool) string {
	if n.IsRest() {
		return "rest"
	}
	names := pitchTokens(n, withOctave)
	if n.IsChord() {
		return "[ " + strings.Join(names, " ") + " ]"
	}
	return names[0]
}

// ByPitch tokenizes each position by its exact pitch name and octave.
type ByPitch struct{}

func (ByPitch) Name() string { return "ByPitch" }

func (ByPitch) Stem(s *snippet.Snippet) string {
	tokens := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		tokens[i] = pitchToken(n, true)
	}
	return strings.Join(tokens, " ")
}

// BySimplePitch tokenizes each position by pitch name, omitting octave.
type BySimplePitch struct{}

func (BySimplePitch) Name() string { return "BySimplePitch" }

func (BySimplePitch) Stem(s *snippet.Snippet) string {
	tokens := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		tokens[i] = pitchToken(n, false)
	}
	return strings.Join(tokens, " ")
}

// ByInterval tokenizes each adjacent pair by signed cents distance.
type ByInterval struct{}

func (ByInterval) Name() string { return "ByInterval" }

func (ByInterval) Stem(s *snippet.Snippet) string {
	notes := s.Notes
	if len(notes) < 2 {
		return ""
	}
	tokens := make([]string, len(notes)-1)
	for i := 0; i < len(notes)-1; i++ {
		a, b := notes[i], notes[i+1]
		if a.IsRest() || b.IsRest() {
			tokens[i] = "rest"
			continue
		}
		tokens[i] = strconv.Itoa(a.Pitches[0].CentsTo(b.Pitches[0]))
	}
	return strings.Join(tokens, " ")
}

// ByContour tokenizes each adjacent pair as rising (u), falling (d), or
// steady (s).
type ByContour struct{}

func (ByContour) Name() string { return "ByContour" }

func (ByContour) Stem(s *snippet.Snippet) string {
	notes := s.Notes
	if len(notes) < 2 {
		return ""
	}
	tokens := make([]string, len(notes)-1)
	for i := 0; i < len(notes)-1; i++ {
		tokens[i] = contourToken(notes[i], notes[i+1])
	}
	return strings.Join(tokens, " ")
}

func contourToken(a, b *notemodel.GeneralNote) string {
	aRest, bRest := a.IsRest(), b.IsRest()
	switch {
	case aRest && bRest:
		return "s"
	case aRest:
		return "u"
	case bRest:
		return "d"
	}
	cents := a.Pitches[0].CentsTo(b.Pitches[0])
	switch {
	case cents > 0:
		return "u"
	case cents < 0:
		return "d"
	default:
		return "s"
	}
}

// ByRythm tokenizes each position by its exact quarter-length.
type ByRythm struct{}

func (ByRythm) Name() string { return "ByRythm" }

func (ByRythm) Stem(s *snippet.Snippet) string {
	tokens := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		tokens[i] = notemodel.FormatRational(n.QuarterLength)
	}
	return strings.Join(tokens, " ")
}

// ByNormalRythm tokenizes each position by its quarter-length divided by
// the window's maximum quarter-length (1.0 if the window's max is 0).
type ByNormalRythm struct{}

func (ByNormalRythm) Name() string { return "ByNormalRythm" }

func (ByNormalRythm) Stem(s *snippet.Snippet) string {
	max := windowMaxQuarterLength(s.Notes)
	tokens := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		tokens[i] = formatNormalized(n.QuarterLength, max)
	}
	return strings.Join(tokens, " ")
}
