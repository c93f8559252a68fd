// Package corpus provides the two external collaborators the retrieval
// engine depends on but does not implement itself: a score parser (the
// "music library" stand-in) and a corpus enumerator. Both are minimal
// reference implementations; a production deployment is expected to
// supply its own backed by a real music library and file layout.
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/grammar-school-go/gs"
	"github.com/axiomabsolute/firms-go/internal/fierr"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
)

// ScoreParser accepts a file path or tiny-notation text and yields a
// parsed Piece.
type ScoreParser interface {
	ParseFile(path string) (*notemodel.Piece, error)
	ParseTinyNotation(text string) (*notemodel.Piece, error)
}

// TinyNotationParser is a minimal reference ScoreParser for a small
// subset of tiny notation: whitespace-separated tokens, each a rest
// ("r"), a note ("C4", "F#4", "B-3"), or a bracketed chord
// ("[C4 E4 G4]"), with an optional trailing duration code (1, 2, 4, 8,
// 16 for whole/half/quarter/eighth/sixteenth; default quarter). Each
// token is translated into a grammar-school-go DSL call — note(...),
// rest(...), chord(...) — and fed through a Lark-backed gs.Engine one
// statement at a time, the same way Arranger/Drummer DSL parse calls
// one statement per Execute.
type TinyNotationParser struct {
	engine *gs.Engine
	sink   *tinyNotationSink
}

// NewTinyNotationParser builds the grammar-school-go engine once; the
// same engine and sink are reused across parses.
func NewTinyNotationParser() (*TinyNotationParser, error) {
	sink := &tinyNotationSink{}
	larkParser := gs.NewLarkParser()
	engine, err := gs.NewEngine(tinyNotationGrammar, sink, larkParser)
	if err != nil {
		return nil, fierr.New(fierr.ParseFailure, "NewTinyNotationParser", err)
	}
	return &TinyNotationParser{engine: engine, sink: sink}, nil
}

// tinyNotationSink accumulates GeneralNotes as the engine executes
// note/rest/chord calls, the same accumulator role ArrangerDSL's
// actions slice plays for Arranger DSL.
type tinyNotationSink struct {
	notes []*notemodel.GeneralNote
}

// Note handles note(pitch=..., duration=...) calls.
func (s *tinyNotationSink) Note(args gs.Args) error {
	pitchStr := ""
	if v, ok := args["pitch"]; ok && v.Kind == gs.ValueString {
		pitchStr = v.Str
	}
	if pitchStr == "" {
		return fmt.Errorf("corpus: note call missing pitch")
	}
	pitch, err := parsePitchToken(pitchStr)
	if err != nil {
		return err
	}
	ql, err := durationFromCode(numberArg(args, "duration"))
	if err != nil {
		return err
	}
	s.notes = append(s.notes, notemodel.NewNote(pitch, ql))
	return nil
}

// Rest handles rest(duration=...) calls.
func (s *tinyNotationSink) Rest(args gs.Args) error {
	ql, err := durationFromCode(numberArg(args, "duration"))
	if err != nil {
		return err
	}
	s.notes = append(s.notes, notemodel.NewRest(ql))
	return nil
}

// Chord handles chord(pitches="...", duration=...) calls. pitches is a
// space-separated list carried as a single quoted string: grammar-school-go
// has known issues parsing bracketed arrays directly (the same limitation
// Arranger DSL's Progression() callback works around by re-splitting the
// raw chords=[...] text itself), so the grammar captures the whole list as
// one STRING and this callback splits it.
func (s *tinyNotationSink) Chord(args gs.Args) error {
	raw := ""
	if v, ok := args["pitches"]; ok && v.Kind == gs.ValueString {
		raw = strings.Trim(v.Str, `"`)
	}
	fields := strings.Fields(raw)
	ql, err := durationFromCode(numberArg(args, "duration"))
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		s.notes = append(s.notes, notemodel.NewChord(nil, ql))
		return nil
	}
	pitches := make([]notemodel.Pitch, 0, len(fields))
	for _, f := range fields {
		p, err := parsePitchToken(f)
		if err != nil {
			return err
		}
		pitches = append(pitches, p)
	}
	s.notes = append(s.notes, notemodel.NewChord(pitches, ql))
	return nil
}

func numberArg(args gs.Args, key string) string {
	v, ok := args[key]
	if !ok || v.Kind != gs.ValueNumber {
		return ""
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

func (p *TinyNotationParser) ParseFile(path string) (*notemodel.Piece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fierr.New(fierr.ParseFailure, "ParseFile", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fierr.New(fierr.ParseFailure, "ParseFile", err)
	}

	piece, err := p.parse(strings.Join(lines, " "))
	if err != nil {
		return nil, fierr.New(fierr.ParseFailure, "ParseFile", err)
	}
	piece.Title = titleFromPath(path)
	return piece, nil
}

func (p *TinyNotationParser) ParseTinyNotation(text string) (*notemodel.Piece, error) {
	piece, err := p.parse(text)
	if err != nil {
		return nil, fierr.New(fierr.ParseFailure, "ParseTinyNotation", err)
	}
	return piece, nil
}

func titleFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return notemodel.NormalizeTitle(base)
}

// parse tokenizes text (whitespace-separated, with bracketed chords kept
// whole) and runs each token through the grammar-school-go engine as one
// DSL call, accumulating the resulting notes in p.sink.
func (p *TinyNotationParser) parse(text string) (*notemodel.Piece, error) {
	p.sink.notes = nil

	ctx := context.Background()
	for _, tok := range tokenize(text) {
		call, err := tokenToCall(tok)
		if err != nil {
			return nil, err
		}
		if err := p.engine.Execute(ctx, call); err != nil {
			return nil, fmt.Errorf("corpus: executing %q: %w", call, err)
		}
	}

	return &notemodel.Piece{
		Title: "Untitled",
		Parts: []*notemodel.Part{{Name: "Part 0", Notes: p.sink.notes}},
	}, nil
}

// tokenize splits on whitespace, but keeps bracketed chords as one token.
func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	inChord := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '[':
			inChord = true
			cur.WriteRune(r)
		case r == ']':
			inChord = false
			cur.WriteRune(r)
			flush()
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inChord {
				cur.WriteRune(' ')
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// tokenToCall translates one tiny-notation token into a grammar-school-go
// DSL call statement: "C#4/8" -> `note(pitch=C#4, duration=8)`,
// "r/2" -> `rest(duration=2)`, "[C4 E4 G4/2]" -> `chord(pitches="C4 E4 G4", duration=2)`.
func tokenToCall(tok string) (string, error) {
	if strings.HasPrefix(tok, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(tok, "["), "]")
		body, suffix := splitChordSuffix(inner)
		code, err := durationCodeFromSuffix(suffix)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`chord(pitches="%s", duration=%d)`, body, code), nil
	}
	if tok == "r" || (strings.HasPrefix(tok, "r") && isDurationSuffix(tok[1:])) {
		code, err := durationCodeFromSuffix(strings.TrimPrefix(tok, "r"))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rest(duration=%d)", code), nil
	}
	pitch, suffix, err := splitPitchSuffix(tok)
	if err != nil {
		return "", err
	}
	code, err := durationCodeFromSuffix(suffix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("note(pitch=%s, duration=%d)", pitch, code), nil
}

// splitChordSuffix separates a bracket body's trailing /N duration code
// from the space-separated pitch list; the suffix, if any, trails the
// last pitch token (e.g. "C4 E4 G4/2").
func splitChordSuffix(inner string) (body, suffix string) {
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if idx := strings.IndexByte(last, '/'); idx >= 0 {
		fields[len(fields)-1] = last[:idx]
		suffix = last[idx:]
	}
	return strings.Join(fields, " "), suffix
}

// splitPitchSuffix separates a note token's pitch ("C#4") from its
// trailing /N duration code.
func splitPitchSuffix(tok string) (pitch, suffix string, err error) {
	if idx := strings.IndexByte(tok, '/'); idx >= 0 {
		return tok[:idx], tok[idx:], nil
	}
	return tok, "", nil
}

func isDurationSuffix(s string) bool {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// durationCodeFromSuffix parses a "/N" suffix into its music21-style
// duration code, defaulting to 4 (quarter) when absent.
func durationCodeFromSuffix(suffix string) (int, error) {
	suffix = strings.TrimPrefix(suffix, "/")
	if suffix == "" {
		return 4, nil
	}
	code, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("corpus: bad duration suffix %q: %w", suffix, err)
	}
	if code <= 0 {
		return 0, fmt.Errorf("corpus: duration suffix must be positive, got %d", code)
	}
	return code, nil
}

// durationFromCode converts a music21-style duration code string (as
// carried through a gs.Args NUMBER value) into an exact quarter-length.
// An empty code defaults to quarter.
func durationFromCode(code string) (*big.Rat, error) {
	if code == "" {
		return big.NewRat(1, 1), nil
	}
	denom, err := strconv.ParseFloat(code, 64)
	if err != nil || denom <= 0 {
		return nil, fmt.Errorf("corpus: bad duration code %q", code)
	}
	return big.NewRat(4, int64(denom)), nil
}

// parsePitchToken decodes a pitch token like "C4", "F#4", or "B--3"
// into a notemodel.Pitch.
func parsePitchToken(tok string) (notemodel.Pitch, error) {
	if len(tok) == 0 {
		return notemodel.Pitch{}, fmt.Errorf("corpus: empty pitch token")
	}
	letter := tok[0]
	if letter < 'A' || letter > 'G' {
		letter = byte(strings.ToUpper(string(letter))[0])
	}
	if letter < 'A' || letter > 'G' {
		return notemodel.Pitch{}, fmt.Errorf("corpus: invalid pitch letter in token %q", tok)
	}

	i := 1
	accidental := 0
	for i < len(tok) && (tok[i] == '#' || tok[i] == '-') {
		if tok[i] == '#' {
			accidental++
		} else {
			accidental--
		}
		i++
	}

	octStart := i
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == octStart {
		return notemodel.Pitch{}, fmt.Errorf("corpus: missing octave in token %q", tok)
	}
	octave, err := strconv.Atoi(tok[octStart:i])
	if err != nil {
		return notemodel.Pitch{}, fmt.Errorf("corpus: bad octave in token %q: %w", tok, err)
	}

	return notemodel.Pitch{Letter: letter, Accidental: accidental, Octave: octave}, nil
}
