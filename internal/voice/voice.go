// Package voice implements the nearest-interval voice-leading splitter
// that turns a (possibly polyphonic) note stream into V monophonic voice
// lines, V being the widest chord in the stream.
package voice

import (
	"sort"

	"github.com/axiomabsolute/firms-go/internal/notemodel"
)

// SplitError reports a fatal condition for one snippet's voice split.
type SplitError string

func (e SplitError) Error() string { return string(e) }

// ErrEmptyChord is returned when the input contains a chord with zero pitches.
const ErrEmptyChord SplitError = "voice: empty chord cannot be split"

// Split turns a note stream into V monophonic voice lines, each aligned
// with the input positions (rests are replicated into every line at
// their original offsets). If every input note is a rest or a single
// note, Split returns a single voice equal to the input, unchanged.
func Split(input []*notemodel.GeneralNote) ([][]*notemodel.GeneralNote, error) {
	for _, n := range input {
		if n.IsChord() && len(n.Pitches) == 0 {
			return nil, ErrEmptyChord
		}
	}

	v := maxChordWidth(input)
	if v <= 1 {
		return [][]*notemodel.GeneralNote{input}, nil
	}

	type positioned struct {
		idx  int
		note *notemodel.GeneralNote
	}

	var nonRests, rests []positioned
	for i, n := range input {
		if n.IsRest() {
			rests = append(rests, positioned{i, n})
		} else {
			nonRests = append(nonRests, positioned{i, n})
		}
	}

	peak := -1
	for i, pn := range nonRests {
		if len(pn.note.Pitches) == v {
			peak = i
			break
		}
	}

	assignments := make([][]notemodel.Pitch, len(nonRests))
	assignments[peak] = append([]notemodel.Pitch(nil), nonRests[peak].note.Pitches...)

	lead := assignments[peak]
	for i := peak - 1; i >= 0; i-- {
		assignments[i] = splitVoices(lead, nonRests[i].note, v)
		lead = assignments[i]
	}

	lead = assignments[peak]
	for i := peak + 1; i < len(nonRests); i++ {
		assignments[i] = splitVoices(lead, nonRests[i].note, v)
		lead = assignments[i]
	}

	voices := make([][]*notemodel.GeneralNote, v)
	for j := 0; j < v; j++ {
		pairs := make([]positioned, 0, len(input))
		for i, pn := range nonRests {
			pairs = append(pairs, positioned{pn.idx, notemodel.NewNote(assignments[i][j], pn.note.QuarterLength)})
		}
		pairs = append(pairs, rests...)
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].idx < pairs[b].idx })

		voiceNotes := make([]*notemodel.GeneralNote, len(pairs))
		for k, p := range pairs {
			voiceNotes[k] = p.note
		}
		voices[j] = voiceNotes
	}
	return voices, nil
}

// splitVoices assigns current's pitches across v voices given lead, the
// previously assigned V-length pitch vector of the adjacent, already
// processed position (§4.2 of the design).
func splitVoices(lead []notemodel.Pitch, current *notemodel.GeneralNote, v int) []notemodel.Pitch {
	if current.IsNote() {
		result := make([]notemodel.Pitch, v)
		for i := range result {
			result[i] = current.Pitches[0]
		}
		return result
	}

	cur := current.Pitches
	if len(lead) == len(cur) {
		return append([]notemodel.Pitch(nil), cur...)
	}

	result := make([]notemodel.Pitch, v)
	result[0] = cur[0]
	result[v-1] = cur[len(cur)-1]
	for voiceIdx := 1; voiceIdx < v-1; voiceIdx++ {
		result[voiceIdx] = nearestPitch(lead[voiceIdx], cur)
	}
	return result
}

func nearestPitch(target notemodel.Pitch, candidates []notemodel.Pitch) notemodel.Pitch {
	best := candidates[0]
	bestDist := absInt(target.CentsTo(best))
	for _, p := range candidates[1:] {
		if d := absInt(target.CentsTo(p)); d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// maxChordWidth returns max(pitch_count(n)) over non-rest notes, or 1 if
// there are none (a stream of only rests is vacuously monophonic).
func maxChordWidth(input []*notemodel.GeneralNote) int {
	v := 1
	for _, n := range input {
		if n.IsChord() && len(n.Pitches) > v {
			v = len(n.Pitches)
		}
	}
	return v
}
