package store

import "testing"

func TestMemoryStoreAddAndLookup(t *testing.T) {
	m := NewMemoryStore()
	err := m.AddPiece("p1.xml", "Fugue", []PartStems{
		{
			PartName:     "Part 0",
			SnippetCount: 2,
			Stems: map[string][]string{
				"ByPitch": {"C4 D4 E4 F4 G4", "D4 E4 F4 G4 A4"},
			},
		},
	})
	if err != nil {
		t.Fatalf("AddPiece: %v", err)
	}

	matches, err := m.Lookup("ByPitch", "C4 D4 E4 F4 G4")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].PiecePath != "p1.xml" || matches[0].PieceName != "Fugue" {
		t.Errorf("unexpected match %+v", matches[0])
	}

	size, err := m.CorpusSize()
	if err != nil {
		t.Fatalf("CorpusSize: %v", err)
	}
	if size != 1 {
		t.Errorf("CorpusSize = %d, want 1", size)
	}
}

func TestMemoryStoreMissingStemReturnsEmpty(t *testing.T) {
	m := NewMemoryStore()
	matches, err := m.Lookup("ByPitch", "nonexistent")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}
