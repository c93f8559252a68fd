package grade

import "math"

// LogWeightedSumGrader scores a piece as the weighted sum of
// log(match count) across stemmers, weights supplied at construction.
// Stemmers absent for a piece are skipped, so log(0) is never evaluated.
type LogWeightedSumGrader struct {
	weights map[string]float64

	counts map[uint]map[string]int // piece id -> stemmer -> match count
	pc     map[uint]pieceRef
}

// NewLogWeightedSumGrader builds a grader with the given per-stemmer
// weights. Weights may be negative.
func NewLogWeightedSumGrader(weights map[string]float64) *LogWeightedSumGrader {
	g := &LogWeightedSumGrader{weights: weights}
	g.Reset()
	return g
}

func (g *LogWeightedSumGrader) Name() string { return "log_weighted_sum" }

func (g *LogWeightedSumGrader) Reset() {
	g.counts = make(map[uint]map[string]int)
	g.pc = make(map[uint]pieceRef)
}

func (g *LogWeightedSumGrader) Aggregate(matches []Match) {
	for _, m := range matches {
		g.pc[m.PieceID] = pieceRef{path: m.PiecePath, name: m.PieceName}
		if g.counts[m.PieceID] == nil {
			g.counts[m.PieceID] = make(map[string]int)
		}
		g.counts[m.PieceID][m.Stemmer]++
	}
}

func (g *LogWeightedSumGrader) Grade(corpusSize int) []Result {
	results := make([]Result, 0, len(g.counts))
	for pieceID, stemmerCounts := range g.counts {
		var score float64
		for stemmer, count := range stemmerCounts {
			weight, ok := g.weights[stemmer]
			if !ok || count == 0 {
				continue
			}
			score += weight * math.Log(float64(count))
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
