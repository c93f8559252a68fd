package grade

import (
	"testing"

	"github.com/axiomabsolute/firms-go/internal/store"
)

func matchFor(stemmer string, pieceID uint, path string, stem string) Match {
	return Match{Stemmer: stemmer, LookupMatch: store.LookupMatch{PieceID: pieceID, PiecePath: path, PieceName: path, Stem: stem}}
}

// Scenario 4: P1={A,A,B,C,D} vs P2={A,A,B,C,E}; query {A,A,B,C,D} should
// rank P1 above P2, since P1 shares every stem while P2 misses one.
func TestBM25RanksExactMatchHigher(t *testing.T) {
	g := NewBM25Grader()

	g.Aggregate([]Match{
		matchFor("ByPitch", 1, "p1", "A"),
		matchFor("ByPitch", 1, "p1", "A"),
		matchFor("ByPitch", 1, "p1", "B"),
		matchFor("ByPitch", 1, "p1", "C"),
		matchFor("ByPitch", 1, "p1", "D"),
		matchFor("ByPitch", 2, "p2", "A"),
		matchFor("ByPitch", 2, "p2", "A"),
		matchFor("ByPitch", 2, "p2", "B"),
		matchFor("ByPitch", 2, "p2", "C"),
	})

	results := g.Grade(2)
	var p1, p2 float64
	for _, r := range results {
		if r.PieceID == 1 {
			p1 = r.Grade
		}
		if r.PieceID == 2 {
			p2 = r.Grade
		}
	}
	if p1 <= p2 {
		t.Errorf("expected p1 (%v) to outrank p2 (%v)", p1, p2)
	}
}

// Reproduces the source's df-accumulation bug scenario: the same piece
// matching the same stem across two separate Aggregate batches must not
// inflate df beyond the true distinct-piece count.
func TestBM25DfIsSetUnionAcrossBatches(t *testing.T) {
	g := NewBM25Grader()

	g.Aggregate([]Match{matchFor("ByPitch", 1, "p1", "A")})
	g.Aggregate([]Match{matchFor("ByPitch", 1, "p1", "A")})

	if df := len(g.df["A"]); df != 1 {
		t.Errorf("df for stem A = %d, want 1 (one distinct piece)", df)
	}
}

func TestLogWeightedSumSkipsAbsentStemmers(t *testing.T) {
	g := NewLogWeightedSumGrader(map[string]float64{"ByPitch": 1.0})
	g.Aggregate([]Match{matchFor("ByContour", 1, "p1", "u")})

	results := g.Grade(1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Grade != 0 {
		t.Errorf("expected zero grade when only an unweighted stemmer matched, got %v", results[0].Grade)
	}
}
