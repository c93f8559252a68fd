package grade

import "math"

// BM25Grader implements Okapi BM25 with no document-length normalization
// (b = 0). Document frequency is tracked as the true running set union
// of distinct pieces that have matched each stem, across every
// Aggregate call in the query, not an additive per-batch count.
type BM25Grader struct {
	k float64

	tf map[uint]map[string]int       // piece id -> stem -> term frequency
	df map[string]map[uint]struct{}  // stem -> set of piece ids
	pc map[uint]pieceRef             // piece id -> path/name, for result labeling
}

type pieceRef struct {
	path, name string
}

const bm25K = 1.2

// NewBM25Grader returns a BM25 grader with k=1.2, b=0.
func NewBM25Grader() *BM25Grader {
	g := &BM25Grader{k: bm25K}
	g.Reset()
	return g
}

func (g *BM25Grader) Name() string { return "bm25" }

func (g *BM25Grader) Reset() {
	g.tf = make(map[uint]map[string]int)
	g.df = make(map[string]map[uint]struct{})
	g.pc = make(map[uint]pieceRef)
}

func (g *BM25Grader) Aggregate(matches []Match) {
	for _, m := range matches {
		g.pc[m.PieceID] = pieceRef{path: m.PiecePath, name: m.PieceName}

		if g.tf[m.PieceID] == nil {
			g.tf[m.PieceID] = make(map[string]int)
		}
		g.tf[m.PieceID][m.Stem]++

		if g.df[m.Stem] == nil {
			g.df[m.Stem] = make(map[uint]struct{})
		}
		g.df[m.Stem][m.PieceID] = struct{}{}
	}
}

func (g *BM25Grader) Grade(corpusSize int) []Result {
	results := make([]Result, 0, len(g.tf))
	for pieceID, stemCounts := range g.tf {
		var score float64
		for stemText, tf := range stemCounts {
			df := len(g.df[stemText])
			score += bm25Tf(tf, g.k) * bm25Idf(corpusSize, df)
		}
		ref := g.pc[pieceID]
		results = append(results, Result{
			PieceID:   pieceID,
			PiecePath: ref.path,
			PieceName: ref.name,
			Grade:     score,
		})
	}
	return results
}

func bm25Idf(n, df int) float64 {
	return math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
}

func bm25Tf(tf int, k float64) float64 {
	ftf := float64(tf)
	return ftf * (k + 1) / (ftf + k)
}
