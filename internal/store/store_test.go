package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, true)
	require.NoError(t, err)
	return s
}

func TestStoreAddPieceAndLookup(t *testing.T) {
	s := openTestStore(t)

	err := s.AddPiece("p1.xml", "Fugue", []PartStems{
		{
			PartName:     "Part 0",
			SnippetCount: 2,
			Stems: map[string][]string{
				"ByPitch": {"C4 D4 E4 F4 G4", "D4 E4 F4 G4 A4"},
			},
		},
	})
	require.NoError(t, err)

	matches, err := s.Lookup("ByPitch", "C4 D4 E4 F4 G4")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "p1.xml", matches[0].PiecePath)
	require.Equal(t, "Fugue", matches[0].PieceName)
	require.Equal(t, 0, matches[0].Offset)

	size, err := s.CorpusSize()
	require.NoError(t, err)
	require.Equal(t, 1, size)
}

func TestStoreLookupMissingStemReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	matches, err := s.Lookup("ByPitch", "nonexistent")
	require.NoError(t, err)
	require.Empty(t, matches)
}

// TestStoreAddPieceIsIdempotentUnderReingest re-adds the same piece,
// part and stems and confirms the conflict-upsert path (upsertPiece,
// upsertPart, upsertSnippets, upsertStemmer, upsertStem, upsertEntry)
// re-selects the existing rows instead of erroring or duplicating them
// — the bug this store's re-SELECT-after-upsert exists to avoid.
func TestStoreAddPieceIsIdempotentUnderReingest(t *testing.T) {
	s := openTestStore(t)

	parts := []PartStems{
		{
			PartName:     "Part 0",
			SnippetCount: 3,
			Stems: map[string][]string{
				"ByPitch": {"C4 D4 E4", "D4 E4 F4", "E4 F4 G4"},
			},
		},
	}

	require.NoError(t, s.AddPiece("p1.xml", "Fugue", parts))
	require.NoError(t, s.AddPiece("p1.xml", "Fugue", parts))

	size, err := s.CorpusSize()
	require.NoError(t, err)
	require.Equal(t, 1, size, "re-ingesting the same piece must not duplicate the piece row")

	matches, err := s.Lookup("ByPitch", "C4 D4 E4")
	require.NoError(t, err)
	require.Len(t, matches, 1, "re-ingesting must not duplicate snippet/stem/entry rows")
	require.Equal(t, 0, matches[0].Offset)
}

// TestStoreAddPieceNewPartOnExistingPiece confirms a piece re-ingested
// with an additional part upserts the existing piece row (by path+name)
// rather than inserting a duplicate, while still adding the new part's
// snippets.
func TestStoreAddPieceNewPartOnExistingPiece(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddPiece("p1.xml", "Fugue", []PartStems{
		{PartName: "Part 0", SnippetCount: 1, Stems: map[string][]string{"ByPitch": {"C4 D4"}}},
	}))
	require.NoError(t, s.AddPiece("p1.xml", "Fugue", []PartStems{
		{PartName: "Part 1", SnippetCount: 1, Stems: map[string][]string{"ByPitch": {"G4 A4"}}},
	}))

	size, err := s.CorpusSize()
	require.NoError(t, err)
	require.Equal(t, 1, size)

	var parts []Part
	require.NoError(t, s.DB().Find(&parts).Error)
	require.Len(t, parts, 2)
}

func TestStoreOpenFreshDropsPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, s.AddPiece("p1.xml", "Fugue", []PartStems{
		{PartName: "Part 0", SnippetCount: 1, Stems: map[string][]string{"ByPitch": {"C4 D4"}}},
	}))

	reopened, err := Open(path, true)
	require.NoError(t, err)
	size, err := reopened.CorpusSize()
	require.NoError(t, err)
	require.Equal(t, 0, size)
}
