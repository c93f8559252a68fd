// Package evaluate implements the retrieval engine's evaluation harness:
// sample known pieces, inject synthetic transcription errors, query, and
// report per-grader rank statistics.
package evaluate

import (
	"context"
	"math/rand"
	"sort"

	"github.com/axiomabsolute/firms-go/internal/corpus"
	"github.com/axiomabsolute/firms-go/internal/grade"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/retrieval"
)

// ErrorProbabilities gives the independent per-sample probability of
// each synthetic transcription error. Add/Remove/Replace act on a
// single random note in the sampled window; Transpose shifts the whole
// window by a random integer number of semitones in [-5, 5].
type ErrorProbabilities struct {
	Add, Remove, Replace, Transpose float64
}

// GraderStats summarizes one grader's ranks of the true piece across a
// sample set.
type GraderStats struct {
	Ranks    []int
	Mean     float64
	Variance float64
}

const (
	defaultMinWindow = 3
	defaultMaxWindow = 7 // exclusive, per the [3,7) range
)

// Run samples n pieces from source, extracts a [minSize,maxSize)-note
// window from each (pass 0, 0 for the default [3,7) range), optionally
// injects transcription errors per probs, queries engine, and records
// the rank of the true piece for every grader.
func Run(engine *retrieval.Engine, source corpus.SampleSource, n int, rng *rand.Rand, probs ErrorProbabilities, minSize, maxSize int) (map[string]GraderStats, error) {
	if minSize <= 0 {
		minSize = defaultMinWindow
	}
	if maxSize <= 0 {
		maxSize = defaultMaxWindow
	}

	samples, err := source.Sample(n)
	if err != nil {
		return nil, err
	}

	ranks := make(map[string][]int)
	for _, sample := range samples {
		if len(sample.Notes) < minSize {
			continue
		}
		windowLen := minSize + rng.Intn(maxSize-minSize)
		if windowLen > len(sample.Notes) {
			windowLen = len(sample.Notes)
		}
		start := rng.Intn(len(sample.Notes) - windowLen + 1)

		window := make([]*notemodel.GeneralNote, windowLen)
		copy(window, sample.Notes[start:start+windowLen])
		window = injectErrors(window, rng, probs)

		results, err := engine.Query(context.Background(), window)
		if err != nil {
			return nil, err
		}
		for graderName, graded := range results {
			ranks[graderName] = append(ranks[graderName], rankOf(graded, sample.PiecePath))
		}
	}

	stats := make(map[string]GraderStats, len(ranks))
	for name, r := range ranks {
		stats[name] = summarize(r)
	}
	return stats, nil
}

// rankOf returns the 1-indexed rank of piecePath among results sorted
// descending by grade, or 0 if it did not appear at all.
func rankOf(results []grade.Result, piecePath string) int {
	sorted := append([]grade.Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Grade > sorted[j].Grade })
	for i, r := range sorted {
		if r.PiecePath == piecePath {
			return i + 1
		}
	}
	return 0
}

func summarize(ranks []int) GraderStats {
	if len(ranks) == 0 {
		return GraderStats{}
	}
	var sum float64
	for _, r := range ranks {
		sum += float64(r)
	}
	mean := sum / float64(len(ranks))

	var variance float64
	for _, r := range ranks {
		d := float64(r) - mean
		variance += d * d
	}
	variance /= float64(len(ranks))

	return GraderStats{Ranks: append([]int(nil), ranks...), Mean: mean, Variance: variance}
}
