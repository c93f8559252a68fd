package voice

import (
	"math/big"
	"testing"

	"github.com/axiomabsolute/firms-go/internal/notemodel"
)

func q(n int64) *big.Rat { return big.NewRat(n, 1) }

func TestSplitMonophonicIsUnchanged(t *testing.T) {
	input := []*notemodel.GeneralNote{
		notemodel.NewNote(notemodel.Pitch{Letter: 'C', Octave: 4}, q(1)),
		notemodel.NewRest(q(1)),
		notemodel.NewNote(notemodel.Pitch{Letter: 'D', Octave: 4}, q(1)),
	}
	voices, err := Split(input)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(voices) != 1 {
		t.Fatalf("expected 1 voice for monophonic input, got %d", len(voices))
	}
	if len(voices[0]) != len(input) {
		t.Fatalf("expected length preservation, got %d want %d", len(voices[0]), len(input))
	}
}

func TestSplitEmptyChordIsError(t *testing.T) {
	input := []*notemodel.GeneralNote{
		notemodel.NewChord(nil, q(1)),
	}
	if _, err := Split(input); err != ErrEmptyChord {
		t.Fatalf("expected ErrEmptyChord, got %v", err)
	}
}

func TestSplitPreservesLength(t *testing.T) {
	c4 := notemodel.Pitch{Letter: 'C', Octave: 4}
	e4 := notemodel.Pitch{Letter: 'E', Octave: 4}
	g4 := notemodel.Pitch{Letter: 'G', Octave: 4}

	input := []*notemodel.GeneralNote{
		notemodel.NewNote(c4, q(1)),
		notemodel.NewChord([]notemodel.Pitch{c4, e4, g4}, q(1)),
		notemodel.NewRest(q(1)),
		notemodel.NewNote(g4, q(1)),
	}
	voices, err := Split(input)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(voices) != 3 {
		t.Fatalf("expected V=3 voices, got %d", len(voices))
	}
	for i, v := range voices {
		if len(v) != len(input) {
			t.Errorf("voice %d length = %d, want %d", i, len(v), len(input))
		}
	}
}

// Chord bridging two single notes: [C4] [C4 E4] [C4] should produce two
// voices each of length 3, with the chord split by nearest interval.
func TestSplitChordBetweenSingleNotes(t *testing.T) {
	c4 := notemodel.Pitch{Letter: 'C', Octave: 4}
	e4 := notemodel.Pitch{Letter: 'E', Octave: 4}

	input := []*notemodel.GeneralNote{
		notemodel.NewNote(c4, q(1)),
		notemodel.NewChord([]notemodel.Pitch{c4, e4}, q(1)),
		notemodel.NewNote(c4, q(1)),
	}
	voices, err := Split(input)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("expected V=2 voices, got %d", len(voices))
	}
	for i, v := range voices {
		if len(v) != 3 {
			t.Fatalf("voice %d length = %d, want 3", i, len(v))
		}
		for _, n := range v {
			if !n.IsNote() {
				t.Errorf("voice %d expected monophonic notes only, got kind %v", i, n.Kind)
			}
		}
	}
}

func TestSplitRestsReinsertedAtOriginalPositions(t *testing.T) {
	c4 := notemodel.Pitch{Letter: 'C', Octave: 4}
	e4 := notemodel.Pitch{Letter: 'E', Octave: 4}

	input := []*notemodel.GeneralNote{
		notemodel.NewRest(q(1)),
		notemodel.NewChord([]notemodel.Pitch{c4, e4}, q(1)),
		notemodel.NewRest(q(1)),
	}
	voices, err := Split(input)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	for i, v := range voices {
		if !v[0].IsRest() || !v[2].IsRest() {
			t.Errorf("voice %d expected rests at positions 0 and 2, got %+v", i, v)
		}
		if !v[1].IsNote() {
			t.Errorf("voice %d expected a single note at position 1, got kind %v", i, v[1].Kind)
		}
	}
}
