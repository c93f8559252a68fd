package evaluate

import (
	"math/big"
	"math/rand"

	"github.com/axiomabsolute/firms-go/internal/notemodel"
)

const maxTransposeSemitones = 5

// injectErrors independently rolls each configured probability and
// applies the corresponding transcription error to a copy of window.
// Add/remove/replace act on one random position; transpose shifts every
// pitched note in the window by the same random interval.
func injectErrors(window []*notemodel.GeneralNote, rng *rand.Rand, probs ErrorProbabilities) []*notemodel.GeneralNote {
	result := append([]*notemodel.GeneralNote(nil), window...)

	if probs.Replace > 0 && rng.Float64() < probs.Replace && len(result) > 0 {
		result = replaceRandomNote(result, rng)
	}
	if probs.Remove > 0 && rng.Float64() < probs.Remove && len(result) > 1 {
		result = removeRandomNote(result, rng)
	}
	if probs.Add > 0 && rng.Float64() < probs.Add {
		result = addRandomNote(result, rng)
	}
	if probs.Transpose > 0 && rng.Float64() < probs.Transpose {
		result = transposeAll(result, rng)
	}
	return result
}

func randomPitch(rng *rand.Rand) notemodel.Pitch {
	letters := "ABCDEFG"
	return notemodel.Pitch{
		Letter: letters[rng.Intn(len(letters))],
		Octave: 3 + rng.Intn(3),
	}
}

func replaceRandomNote(window []*notemodel.GeneralNote, rng *rand.Rand) []*notemodel.GeneralNote {
	i := rng.Intn(len(window))
	original := window[i]
	window[i] = notemodel.NewNote(randomPitch(rng), original.QuarterLength)
	return window
}

func removeRandomNote(window []*notemodel.GeneralNote, rng *rand.Rand) []*notemodel.GeneralNote {
	i := rng.Intn(len(window))
	return append(window[:i:i], window[i+1:]...)
}

func addRandomNote(window []*notemodel.GeneralNote, rng *rand.Rand) []*notemodel.GeneralNote {
	i := rng.Intn(len(window) + 1)
	note := notemodel.NewNote(randomPitch(rng), big.NewRat(1, 1))
	result := make([]*notemodel.GeneralNote, 0, len(window)+1)
	result = append(result, window[:i]...)
	result = append(result, note)
	result = append(result, window[i:]...)
	return result
}

func transposeAll(window []*notemodel.GeneralNote, rng *rand.Rand) []*notemodel.GeneralNote {
	semitones := rng.Intn(2*maxTransposeSemitones+1) - maxTransposeSemitones
	result := make([]*notemodel.GeneralNote, len(window))
	for i, n := range window {
		if n.IsRest() {
			result[i] = n
			continue
		}
		pitches := make([]notemodel.Pitch, len(n.Pitches))
		for j, p := range n.Pitches {
			pitches[j] = p.TransposeBySemitones(semitones)
		}
		result[i] = &notemodel.GeneralNote{Kind: n.Kind, Pitches: pitches, QuarterLength: n.QuarterLength}
	}
	return result
}
