// Package retrieval wires the voice splitter, snippet extractor,
// stemmers, index store and graders into the public add/query contract.
package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/axiomabsolute/firms-go/internal/fierr"
	"github.com/axiomabsolute/firms-go/internal/grade"
	"github.com/axiomabsolute/firms-go/internal/logger"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/snippet"
	"github.com/axiomabsolute/firms-go/internal/stem"
	"github.com/axiomabsolute/firms-go/internal/store"
	"github.com/axiomabsolute/firms-go/internal/voice"
)

// Engine is the retrieval core: it has no knowledge of file formats or
// transport, only of notes, stems, the index and its graders.
type Engine struct {
	idx      store.Index
	stemmers []stem.Stemmer
	graders  []grade.Grader
	window   int
}

// New builds an engine over the given index, stemmer set and graders,
// with the fixed snippet window w.
func New(idx store.Index, stemmers []stem.Stemmer, graders []grade.Grader, w int) *Engine {
	return &Engine{idx: idx, stemmers: stemmers, graders: graders, window: w}
}

// CorpusSize returns the number of distinct pieces in the index.
func (e *Engine) CorpusSize() (int, error) {
	return e.idx.CorpusSize()
}

// AddPiece splits every part of piece into voices, extracts snippets
// from every voice, stems them with every registered stemmer, and
// inserts the result under originPath inside one store transaction per
// piece.
func (e *Engine) AddPiece(piece *notemodel.Piece, originPath string) error {
	logger.Debug("splitting piece into voices", logger.Fields{"piece_path": originPath, "part_count": len(piece.Parts)})

	var parts []store.PartStems
	for partIndex, part := range piece.Parts {
		voices, err := voice.Split(part.Notes)
		if err != nil {
			return fierr.New(fierr.EmptyChord, "Engine.AddPiece", fmt.Errorf("part %q: %w", part.Name, err))
		}
		baseName := notemodel.SyntheticPartName(part.Name, partIndex)
		for voiceIdx, voiceLine := range voices {
			parts = append(parts, e.stemVoice(voiceName(baseName, voiceIdx, len(voices)), voiceLine))
		}
	}
	if err := e.idx.AddPiece(originPath, notemodel.NormalizeTitle(piece.Title), parts); err != nil {
		return fierr.New(fierr.StoreIO, "Engine.AddPiece", err)
	}
	return nil
}

func voiceName(base string, voiceIdx, voiceCount int) string {
	if voiceCount <= 1 {
		return base
	}
	return base + " - Voice " + strconv.Itoa(voiceIdx+1)
}

func (e *Engine) stemVoice(partName string, voiceLine []*notemodel.GeneralNote) store.PartStems {
	snippets := snippet.Extract(voiceLine, e.window)
	stems := make(map[string][]string, len(e.stemmers))
	for _, stemmer := range e.stemmers {
		texts := make([]string, len(snippets))
		for i, s := range snippets {
			texts[i] = stemmer.Stem(s)
		}
		stems[stemmer.Name()] = texts
	}
	return store.PartStems{PartName: partName, SnippetCount: len(snippets), Stems: stems}
}

// Query resets every grader, splits the query notes into voices,
// extracts their snippets once, looks up matches per (stemmer, query
// snippet) pair, and returns each grader's results keyed by name.
func (e *Engine) Query(ctx context.Context, queryNotes []*notemodel.GeneralNote) (map[string][]grade.Result, error) {
	start := time.Now()
	for _, g := range e.graders {
		g.Reset()
	}

	voices, err := voice.Split(queryNotes)
	if err != nil {
		return nil, fierr.New(fierr.EmptyChord, "Engine.Query", err)
	}

	var querySnippets []*snippet.Snippet
	for _, v := range voices {
		querySnippets = append(querySnippets, snippet.Extract(v, e.window)...)
	}

	for _, stemmer := range e.stemmers {
		var matches []grade.Match
		for _, qs := range querySnippets {
			text := stemmer.Stem(qs)
			lookupMatches, err := e.idx.Lookup(stemmer.Name(), text)
			if err != nil {
				return nil, fierr.New(fierr.StoreIO, "Engine.Query", err)
			}
			for _, lm := range lookupMatches {
				matches = append(matches, grade.Match{Stemmer: stemmer.Name(), LookupMatch: lm})
			}
		}
		for _, g := range e.graders {
			g.Aggregate(matches)
		}
	}

	corpusSize, err := e.idx.CorpusSize()
	if err != nil {
		return nil, fierr.New(fierr.StoreIO, "Engine.Query", err)
	}

	results := make(map[string][]grade.Result, len(e.graders))
	for _, g := range e.graders {
		results[g.Name()] = g.Grade(corpusSize)
	}

	logger.LogQuery(ctx, len(querySnippets), time.Since(start), logger.Fields{"grader_count": len(e.graders)})
	return results, nil
}
