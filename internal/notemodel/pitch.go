// Package notemodel is the lossless in-memory representation of a parsed
// score: an ordered list of parts, each an ordered sequence of general
// notes (single note, chord, or rest) with pitch, octave, and
// quarter-length duration.
package notemodel

import (
	"strconv"
	"strings"
)

// Pitch is a single pitched tone: a letter name, an accidental (signed
// count of semitones away from natural — positive sharps, negative
// flats), and an octave.
type Pitch struct {
	Letter     byte // 'A'..'G'
	Accidental int
	Octave     int
}

var pitchClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MIDI returns the MIDI note number for the pitch (C4 = 60).
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + pitchClass[p.Letter] + p.Accidental
}

// accidentalString renders the accidental as music21-style suffix
// characters: '#' repeated for sharps, '-' repeated for flats.
func accidentalString(n int) string {
	if n > 0 {
		return strings.Repeat("#", n)
	}
	if n < 0 {
		return strings.Repeat("-", -n)
	}
	return ""
}

// NameWithOctave renders "{LETTER}{ACCIDENTAL}{OCTAVE}", e.g. "C4", "F#4", "B-3".
func (p Pitch) NameWithOctave() string {
	return string(p.Letter) + accidentalString(p.Accidental) + strconv.Itoa(p.Octave)
}

// Name renders "{LETTER}{ACCIDENTAL}" without octave, e.g. "C", "F#", "B-".
func (p Pitch) Name() string {
	return string(p.Letter) + accidentalString(p.Accidental)
}

// CentsTo returns the signed interval in cents from p to other.
func (p Pitch) CentsTo(other Pitch) int {
	return (other.MIDI() - p.MIDI()) * 100
}

// chromaticSpelling always respells transposed pitches with sharps,
// index i is the pitch class i semitones above C.
var chromaticSpelling = []struct {
	letter     byte
	accidental int
}{
	{'C', 0}, {'C', 1}, {'D', 0}, {'D', 1}, {'E', 0}, {'F', 0},
	{'F', 1}, {'G', 0}, {'G', 1}, {'A', 0}, {'A', 1}, {'B', 0},
}

// TransposeBySemitones returns p shifted by the given signed number of
// semitones, respelled with sharps.
func (p Pitch) TransposeBySemitones(semitones int) Pitch {
	midi := p.MIDI() + semitones
	octaveIndex := floorDiv(midi, 12)
	pc := midi - octaveIndex*12
	spelling := chromaticSpelling[pc]
	return Pitch{Letter: spelling.letter, Accidental: spelling.accidental, Octave: octaveIndex - 1}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

