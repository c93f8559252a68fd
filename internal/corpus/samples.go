package corpus

import "github.com/axiomabsolute/firms-go/internal/notemodel"

// Sample is one known (piece, voice) pair available to the evaluation
// harness, together with its full note stream to draw a window from.
type Sample struct {
	PiecePath string
	PieceName string
	Notes     []*notemodel.GeneralNote
}

// SampleSource returns known samples for the evaluation harness to draw
// measure-like windows from and inject transcription errors into.
type SampleSource interface {
	Sample(n int) ([]Sample, error)
}

// MemorySampleSource is a fixed, pre-built SampleSource — typically the
// pieces an evaluation run just ingested.
type MemorySampleSource []Sample

// Sample returns up to n samples from the fixed set, in order.
func (m MemorySampleSource) Sample(n int) ([]Sample, error) {
	if n > len(m) {
		n = len(m)
	}
	return m[:n], nil
}
