package evaluate

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/axiomabsolute/firms-go/internal/corpus"
	"github.com/axiomabsolute/firms-go/internal/grade"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/retrieval"
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

func TestRunWithNoInjectionRanksTruePieceFirst(t *testing.T) {
	idx := store.NewMemoryStore()
	engine := retrieval.New(idx, stem.All(), []grade.Grader{grade.NewBM25Grader()}, 5)

	p1Notes := lineOf('A', 'B', 'C', 'D', 'E', 'F', 'G', 'A', 'B', 'C')
	p2Notes := lineOf('C', 'D', 'E', 'F', 'G', 'A', 'B', 'C', 'D', 'E')

	if err := engine.AddPiece(&notemodel.Piece{Title: "P1", Parts: []*notemodel.Part{{Notes: p1Notes}}}, "p1.xml"); err != nil {
		t.Fatalf("AddPiece p1: %v", err)
	}
	if err := engine.AddPiece(&notemodel.Piece{Title: "P2", Parts: []*notemodel.Part{{Notes: p2Notes}}}, "p2.xml"); err != nil {
		t.Fatalf("AddPiece p2: %v", err)
	}

	source := corpus.MemorySampleSource{
		{PiecePath: "p1.xml", PieceName: "P1", Notes: p1Notes},
	}

	rng := rand.New(rand.NewSource(1))
	stats, err := Run(engine, source, 1, rng, ErrorProbabilities{}, 0, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	bm25 := stats["bm25"]
	if len(bm25.Ranks) != 1 {
		t.Fatalf("expected 1 rank, got %d", len(bm25.Ranks))
	}
	if bm25.Ranks[0] != 1 {
		t.Errorf("expected true piece ranked 1st, got rank %d", bm25.Ranks[0])
	}
}

func TestSummarizeMeanAndVariance(t *testing.T) {
	stats := summarize([]int{1, 1, 3})
	if stats.Mean != float64(5)/3 {
		t.Errorf("mean = %v, want %v", stats.Mean, float64(5)/3)
	}
	if stats.Variance <= 0 {
		t.Errorf("expected nonzero variance, got %v", stats.Variance)
	}
}

func TestRankOfMissingPieceIsZero(t *testing.T) {
	results := []grade.Result{{PiecePath: "other.xml", Grade: 5}}
	if got := rankOf(results, "missing.xml"); got != 0 {
		t.Errorf("rankOf = %d, want 0", got)
	}
}
