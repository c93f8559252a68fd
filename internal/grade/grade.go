// Package grade scores pieces against the lookup matches a query
// produces, via the Grader interface and its two implementations.
package grade

import "github.com/axiomabsolute/firms-go/internal/store"

// Match pairs a stemmer name with the lookup row it produced, the unit
// graders aggregate over.
type Match struct {
	Stemmer string
	store.LookupMatch
}

// Result is one piece's grade from a single grader.
type Result struct {
	PieceID   uint
	PiecePath string
	PieceName string
	Grade     float64
}

// Grader is reusable across queries: Reset drops aggregator state,
// Aggregate folds in one batch of matches (the engine calls it once per
// stemmer, with that stemmer's matches for every query snippet), and Grade
// emits the current scores.
type Grader interface {
	Name() string
	Reset()
	Aggregate(matches []Match)
	Grade(corpusSize int) []Result
}
