package corpus

import "testing"

func newTestParser(t *testing.T) *TinyNotationParser {
	t.Helper()
	p, err := NewTinyNotationParser()
	if err != nil {
		t.Fatalf("NewTinyNotationParser: %v", err)
	}
	return p
}

func TestParseTinyNotationSimpleLine(t *testing.T) {
	p := newTestParser(t)
	piece, err := p.ParseTinyNotation("C4 C4 C4 C4 D4")
	if err != nil {
		t.Fatalf("ParseTinyNotation: %v", err)
	}
	if len(piece.Parts) != 1 || len(piece.Parts[0].Notes) != 5 {
		t.Fatalf("expected 1 part with 5 notes, got %+v", piece.Parts)
	}
	last := piece.Parts[0].Notes[4]
	if !last.IsNote() || last.Pitches[0].NameWithOctave() != "D4" {
		t.Errorf("expected last note D4, got %+v", last)
	}
}

func TestParseTinyNotationRestAndAccidental(t *testing.T) {
	p := newTestParser(t)
	piece, err := p.ParseTinyNotation("F#4 r B-3")
	if err != nil {
		t.Fatalf("ParseTinyNotation: %v", err)
	}
	notes := piece.Parts[0].Notes
	if notes[0].Pitches[0].NameWithOctave() != "F#4" {
		t.Errorf("expected F#4, got %v", notes[0].Pitches[0].NameWithOctave())
	}
	if !notes[1].IsRest() {
		t.Errorf("expected a rest at position 1")
	}
	if notes[2].Pitches[0].NameWithOctave() != "B-3" {
		t.Errorf("expected B-3, got %v", notes[2].Pitches[0].NameWithOctave())
	}
}

func TestParseTinyNotationChord(t *testing.T) {
	p := newTestParser(t)
	piece, err := p.ParseTinyNotation("C4 [C4 E4 G4] C4")
	if err != nil {
		t.Fatalf("ParseTinyNotation: %v", err)
	}
	chord := piece.Parts[0].Notes[1]
	if !chord.IsChord() || len(chord.Pitches) != 3 {
		t.Fatalf("expected a 3-pitch chord, got %+v", chord)
	}
}

func TestParseTinyNotationDurationSuffix(t *testing.T) {
	p := newTestParser(t)
	piece, err := p.ParseTinyNotation("C4/8 D4/2")
	if err != nil {
		t.Fatalf("ParseTinyNotation: %v", err)
	}
	notes := piece.Parts[0].Notes
	if got := notes[0].QuarterLength.RatString(); got != "1/2" {
		t.Errorf("eighth note quarter-length = %s, want 1/2", got)
	}
	if got := notes[1].QuarterLength.RatString(); got != "2" {
		t.Errorf("half note quarter-length = %s, want 2", got)
	}
}

func TestParseTinyNotationInvalidPitchIsError(t *testing.T) {
	p := newTestParser(t)
	if _, err := p.ParseTinyNotation("Z4"); err == nil {
		t.Fatal("expected an error for invalid pitch letter")
	}
}
