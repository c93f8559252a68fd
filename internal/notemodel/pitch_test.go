package notemodel

import "testing"

func TestPitchNameWithOctave(t *testing.T) {
	tests := []struct {
		name  string
		pitch Pitch
		want  string
	}{
		{"natural", Pitch{Letter: 'C', Octave: 4}, "C4"},
		{"sharp", Pitch{Letter: 'F', Accidental: 1, Octave: 4}, "F#4"},
		{"flat", Pitch{Letter: 'B', Accidental: -1, Octave: 3}, "B-3"},
		{"double sharp", Pitch{Letter: 'G', Accidental: 2, Octave: 5}, "G##5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pitch.NameWithOctave(); got != tt.want {
				t.Errorf("NameWithOctave() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPitchCentsTo(t *testing.T) {
	c4 := Pitch{Letter: 'C', Octave: 4}
	e4 := Pitch{Letter: 'E', Octave: 4}
	if got := c4.CentsTo(e4); got != 400 {
		t.Errorf("CentsTo() = %d, want 400", got)
	}
	if got := e4.CentsTo(c4); got != -400 {
		t.Errorf("CentsTo() reverse = %d, want -400", got)
	}
}

func TestTransposeBySemitones(t *testing.T) {
	c4 := Pitch{Letter: 'C', Octave: 4}
	if got := c4.TransposeBySemitones(1).NameWithOctave(); got != "C#4" {
		t.Errorf("C4+1 = %s, want C#4", got)
	}
	if got := c4.TransposeBySemitones(12).NameWithOctave(); got != "C5" {
		t.Errorf("C4+12 = %s, want C5", got)
	}
	if got := c4.TransposeBySemitones(-1).NameWithOctave(); got != "B3" {
		t.Errorf("C4-1 = %s, want B3", got)
	}
	if got := c4.TransposeBySemitones(-13).NameWithOctave(); got != "B2" {
		t.Errorf("C4-13 = %s, want B2", got)
	}
}

func TestPitchTranspositionPreservesInterval(t *testing.T) {
	c4 := Pitch{Letter: 'C', Octave: 4}
	e4 := Pitch{Letter: 'E', Octave: 4}
	base := c4.CentsTo(e4)

	// Transpose both up a major third (4 semitones): E4 and G#4.
	c4t := Pitch{Letter: 'E', Octave: 4}
	e4t := Pitch{Letter: 'G', Accidental: 1, Octave: 4}
	if got := c4t.CentsTo(e4t); got != base {
		t.Errorf("transposed interval = %d, want %d", got, base)
	}
}
