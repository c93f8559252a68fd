package retrieval

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axiomabsolute/firms-go/internal/grade"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/stem"
	"github.com/axiomabsolute/firms-go/internal/store"
)

func q(n int64) *big.Rat { return big.NewRat(n, 1) }

func lineOf(letters ...byte) []*notemodel.GeneralNote {
	notes := make([]*notemodel.GeneralNote, len(letters))
	for i, l := range letters {
		notes[i] = notemodel.NewNote(notemodel.Pitch{Letter: l, Octave: 4}, q(1))
	}
	return notes
}

func newTestEngine() *Engine {
	idx := store.NewMemoryStore()
	return New(idx, stem.All(), []grade.Grader{grade.NewBM25Grader()}, 5)
}

func TestEngineQueryRanksExactMatchHighest(t *testing.T) {
	e := newTestEngine()

	p1 := &notemodel.Piece{Title: "P1", Parts: []*notemodel.Part{{Name: "melody", Notes: lineOf('A', 'A', 'B', 'C', 'D')}}}
	p2 := &notemodel.Piece{Title: "P2", Parts: []*notemodel.Part{{Name: "melody", Notes: lineOf('A', 'A', 'B', 'C', 'E')}}}

	require.NoError(t, e.AddPiece(p1, "p1.xml"))
	require.NoError(t, e.AddPiece(p2, "p2.xml"))

	results, err := e.Query(context.Background(), lineOf('A', 'A', 'B', 'C', 'D'))
	require.NoError(t, err)

	bm25 := results["bm25"]
	require.NotEmpty(t, bm25)

	var p1Grade, p2Grade float64
	for _, r := range bm25 {
		if r.PieceName == "P1" {
			p1Grade = r.Grade
		}
		if r.PieceName == "P2" {
			p2Grade = r.Grade
		}
	}
	require.Greater(t, p1Grade, p2Grade)
}

func TestEngineQueryNoMatchesReturnsEmptyGrades(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.AddPiece(&notemodel.Piece{Title: "P1", Parts: []*notemodel.Part{{Notes: lineOf('A', 'B', 'C', 'D', 'E')}}}, "p1.xml"))

	// Uneven durations keep the rhythm stems from matching P1's even quarters.
	query := lineOf('F', 'F', 'F', 'F', 'F')
	query[1].QuarterLength = q(2)
	query[3].QuarterLength = q(2)

	results, err := e.Query(context.Background(), query)
	require.NoError(t, err)
	require.Empty(t, results["bm25"])
}

func TestEngineAddPieceRejectsEmptyChord(t *testing.T) {
	e := newTestEngine()
	piece := &notemodel.Piece{
		Title: "Bad",
		Parts: []*notemodel.Part{{Notes: []*notemodel.GeneralNote{notemodel.NewChord(nil, q(1))}}},
	}
	err := e.AddPiece(piece, "bad.xml")
	require.Error(t, err)
}

func TestEngineCorpusSizeTracksDistinctPieces(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.AddPiece(&notemodel.Piece{Title: "P1", Parts: []*notemodel.Part{{Notes: lineOf('A', 'B', 'C', 'D', 'E')}}}, "p1.xml"))
	require.NoError(t, e.AddPiece(&notemodel.Piece{Title: "P2", Parts: []*notemodel.Part{{Notes: lineOf('A', 'B', 'C', 'D', 'F')}}}, "p2.xml"))

	size, err := e.CorpusSize()
	require.NoError(t, err)
	require.Equal(t, 2, size)
}
