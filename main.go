package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/axiomabsolute/firms-go/internal/config"
	"github.com/axiomabsolute/firms-go/internal/corpus"
	"github.com/axiomabsolute/firms-go/internal/evaluate"
	"github.com/axiomabsolute/firms-go/internal/grade"
	"github.com/axiomabsolute/firms-go/internal/logger"
	"github.com/axiomabsolute/firms-go/internal/metrics"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/retrieval"
	"github.com/axiomabsolute/firms-go/internal/stem"
	"github.com/axiomabsolute/firms-go/internal/store"
	"github.com/axiomabsolute/firms-go/internal/web"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build.
var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "firms-go@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	verb := os.Args[1]
	args := os.Args[2:]

	metricsClient, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	switch verb {
	case "create":
		err = runCreate(cfg, args)
	case "add":
		err = runAdd(cfg, metricsClient, args)
	case "query":
		err = runQuery(cfg, args)
	case "info":
		err = runInfo(cfg, args)
	case "composers":
		err = runComposers(cfg, args)
	case "evaluate":
		err = runEvaluate(cfg, metricsClient, args)
	case "show":
		err = runShow(cfg, args)
	case "serve":
		err = runServe(cfg, metricsClient, args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown verb %q\n", verb)
		usage()
		os.Exit(1)
	}

	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("%s: %v", verb, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `firms-go: fuzzy information retrieval for symbolic music

Usage:
  firms-go create [--path P]
  firms-go add piece --piecepath F [--path P]
  firms-go add composer --composer C [--filetype T] [--path P]
  firms-go add music21 [--path P]
  firms-go query tiny --query Q [--output F] [--path P]
  firms-go query piece --file F [--output F] [--path P]
  firms-go info general [--path P]
  firms-go info pieces [--path P]
  firms-go info piece --id I [--path P]
  firms-go composers
  firms-go evaluate --n N [--erate R] [--minsize a] [--maxsize b] [--add_note_error r] [--remove_note_error r] [--replace_note_error r] [--transposition_error r] [--output F] [--path P]
  firms-go show --piece_path SUBSTR [--path P]
  firms-go serve [--addr ADDR] [--path P]`)
}

// dbPathFlag registers the --path override common to most verbs and
// returns the effective database path after parsing.
func dbPathFlag(fs *flag.FlagSet, cfg *config.Config) *string {
	return fs.String("path", cfg.DBPath, "path to the index database")
}

func openStore(path string, fresh bool) (*store.Store, error) {
	return store.Open(path, fresh)
}

// writeOutput prints s to --output's file, or stdout when output is empty.
func writeOutput(output, s string) error {
	if output == "" {
		fmt.Print(s)
		return nil
	}
	return os.WriteFile(output, []byte(s), 0o644)
}

func newEngine(idx store.Index, window int) *retrieval.Engine {
	graders := []grade.Grader{
		grade.NewBM25Grader(),
		grade.NewLogWeightedSumGrader(defaultStemmerWeights()),
	}
	return retrieval.New(idx, stem.All(), graders, window)
}

// defaultStemmerWeights gives every stemmer equal weight; a deployment
// tuning retrieval precision is expected to override this.
func defaultStemmerWeights() map[string]float64 {
	weights := make(map[string]float64)
	for _, s := range stem.All() {
		weights[s.Name()] = 1.0
	}
	return weights
}

func runCreate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	path := dbPathFlag(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := openStore(*path, true); err != nil {
		return err
	}
	logger.Info("database created", logger.Fields{"path": *path})
	return nil
}

func runAdd(cfg *config.Config, metricsClient *metrics.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("add requires a sub-verb: piece, composer, music21")
	}
	sub, rest := args[0], args[1:]
	parser, err := corpus.NewTinyNotationParser()
	if err != nil {
		return err
	}

	switch sub {
	case "piece":
		fs := flag.NewFlagSet("add piece", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		piecePath := fs.String("piecepath", "", "path to a score file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *piecePath == "" {
			return fmt.Errorf("add piece requires --piecepath")
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		piece, err := parser.ParseFile(*piecePath)
		if err != nil {
			return err
		}
		return addAndLog(newEngine(s, cfg.Window), metricsClient, piece, *piecePath)

	case "composer":
		fs := flag.NewFlagSet("add composer", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		composer := fs.String("composer", "", "composer subdirectory name")
		filetype := fs.String("filetype", "", "file extension filter")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *composer == "" {
			return fmt.Errorf("add composer requires --composer")
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		enum := corpus.NewFSEnumerator(cfg.CorpusDir)
		paths, err := enum.PiecesByComposer(*composer, *filetype)
		if err != nil {
			return err
		}
		return addAllPaths(newEngine(s, cfg.Window), metricsClient, parser, paths)

	case "music21":
		fs := flag.NewFlagSet("add music21", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		engine := newEngine(s, cfg.Window)
		enum := corpus.NewFSEnumerator(cfg.CorpusDir)
		for _, composer := range enum.Composers() {
			paths, err := enum.PiecesByComposer(composer, "")
			if err != nil {
				return err
			}
			if err := addAllPaths(engine, metricsClient, parser, paths); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown add sub-verb %q", sub)
	}
}

func addAllPaths(engine *retrieval.Engine, metricsClient *metrics.Client, parser *corpus.TinyNotationParser, paths []string) error {
	for _, p := range paths {
		piece, err := parser.ParseFile(p)
		if err != nil {
			logger.Warn("skipping unparseable piece", logger.Fields{"path": p, "error": err.Error()})
			continue
		}
		if err := addAndLog(engine, metricsClient, piece, p); err != nil {
			return err
		}
	}
	return nil
}

func addAndLog(engine *retrieval.Engine, metricsClient *metrics.Client, piece *notemodel.Piece, path string) error {
	start := time.Now()
	err := engine.AddPiece(piece, path)
	duration := time.Since(start)
	logger.Info("add piece", logger.Fields{
		"piece_path":  path,
		"duration_ms": duration.Milliseconds(),
		"success":     err == nil,
	})
	if metricsClient != nil {
		metricsClient.RecordIngest(context.Background(), path, 1, duration, err == nil)
	}
	return err
}

func runQuery(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query requires a sub-verb: tiny, piece")
	}
	sub, rest := args[0], args[1:]
	parser, err := corpus.NewTinyNotationParser()
	if err != nil {
		return err
	}

	var dbPath, output string
	var piece *notemodel.Piece

	switch sub {
	case "tiny":
		fs := flag.NewFlagSet("query tiny", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		text := fs.String("query", "", "tiny notation text")
		out := fs.String("output", "", "write results to this file instead of stdout")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *text == "" {
			return fmt.Errorf("query tiny requires --query")
		}
		dbPath, output = *path, *out
		piece, err = parser.ParseTinyNotation(*text)
		if err != nil {
			return err
		}
	case "piece":
		fs := flag.NewFlagSet("query piece", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		file := fs.String("file", "", "path to a score file")
		out := fs.String("output", "", "write results to this file instead of stdout")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *file == "" {
			return fmt.Errorf("query piece requires --file")
		}
		dbPath, output = *path, *out
		piece, err = parser.ParseFile(*file)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown query sub-verb %q", sub)
	}

	s, err := openStore(dbPath, false)
	if err != nil {
		return err
	}
	engine := newEngine(s, cfg.Window)

	var notes []*notemodel.GeneralNote
	for _, part := range piece.Parts {
		notes = append(notes, part.Notes...)
	}

	results, err := engine.Query(context.Background(), notes)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for graderName, graded := range results {
		fmt.Fprintf(&sb, "-- %s --\n", graderName)
		for _, r := range graded {
			fmt.Fprintf(&sb, "%8.4f\t%s\t%s\n", r.Grade, r.PieceName, r.PiecePath)
		}
	}
	return writeOutput(output, sb.String())
}

func runInfo(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("info requires a sub-verb: general, pieces, piece")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "general":
		fs := flag.NewFlagSet("info general", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		size, err := s.CorpusSize()
		if err != nil {
			return err
		}
		fmt.Printf("pieces indexed: %d\nwindow: %d\ndb: %s\n", size, cfg.Window, *path)
		return nil
	case "pieces":
		fs := flag.NewFlagSet("info pieces", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		var pieces []store.Piece
		if err := s.DB().Find(&pieces).Error; err != nil {
			return err
		}
		for _, p := range pieces {
			fmt.Printf("%d\t%s\t%s\n", p.ID, p.Name, p.Path)
		}
		return nil
	case "piece":
		fs := flag.NewFlagSet("info piece", flag.ExitOnError)
		path := dbPathFlag(fs, cfg)
		id := fs.Uint("id", 0, "piece id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		s, err := openStore(*path, false)
		if err != nil {
			return err
		}
		var piece store.Piece
		if err := s.DB().First(&piece, *id).Error; err != nil {
			return err
		}
		var parts []store.Part
		if err := s.DB().Where("piece_id = ?", piece.ID).Find(&parts).Error; err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", piece.ID, piece.Name, piece.Path)
		for _, part := range parts {
			fmt.Printf("  part %d: %s\n", part.ID, part.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown info sub-verb %q", sub)
	}
}

func runComposers(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("composers", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	enum := corpus.NewFSEnumerator(cfg.CorpusDir)
	for _, c := range enum.Composers() {
		fmt.Println(c)
	}
	return nil
}

func runEvaluate(cfg *config.Config, metricsClient *metrics.Client, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	path := dbPathFlag(fs, cfg)
	n := fs.Int("n", 50, "number of samples to draw")
	erate := fs.Float64("erate", 0, "default error probability applied to any of add/remove/replace/transposition left at 0")
	minSize := fs.Int("minsize", 0, "minimum sampled window size (default 3)")
	maxSize := fs.Int("maxsize", 0, "exclusive maximum sampled window size (default 7)")
	addErr := fs.Float64("add_note_error", 0, "probability of injecting a spurious note")
	removeErr := fs.Float64("remove_note_error", 0, "probability of dropping a note")
	replaceErr := fs.Float64("replace_note_error", 0, "probability of replacing a note's pitch")
	transposeErr := fs.Float64("transposition_error", 0, "probability of transposing the whole window")
	output := fs.String("output", "", "write results to this file instead of stdout")
	seed := fs.Int64("seed", 1, "RNG seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openStore(*path, false)
	if err != nil {
		return err
	}
	engine := newEngine(s, cfg.Window)

	parser, err := corpus.NewTinyNotationParser()
	if err != nil {
		return err
	}
	enum := corpus.NewFSEnumerator(cfg.CorpusDir)
	var source corpus.MemorySampleSource
	for _, composer := range enum.Composers() {
		paths, err := enum.PiecesByComposer(composer, "")
		if err != nil {
			return err
		}
		for _, p := range paths {
			piece, err := parser.ParseFile(p)
			if err != nil {
				continue
			}
			var notes []*notemodel.GeneralNote
			for _, part := range piece.Parts {
				notes = append(notes, part.Notes...)
			}
			source = append(source, corpus.Sample{
				PiecePath: p,
				PieceName: piece.Title,
				Notes:     notes,
			})
		}
	}

	if corpusSize, err := engine.CorpusSize(); err == nil && metricsClient != nil {
		metricsClient.RecordCorpusSize(corpusSize)
	}

	rng := rand.New(rand.NewSource(*seed))
	probs := evaluate.ErrorProbabilities{
		Add:       withDefault(*addErr, *erate),
		Remove:    withDefault(*removeErr, *erate),
		Replace:   withDefault(*replaceErr, *erate),
		Transpose: withDefault(*transposeErr, *erate),
	}

	stats, err := evaluate.Run(engine, source, *n, rng, probs, *minSize, *maxSize)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for name, stat := range stats {
		fmt.Fprintf(&sb, "%s: mean_rank=%.2f variance=%.2f n=%d\n", name, stat.Mean, stat.Variance, len(stat.Ranks))
	}
	return writeOutput(*output, sb.String())
}

// withDefault returns specific unless it is zero, in which case it
// falls back to erate — the `evaluate` verb's general error rate.
func withDefault(specific, erate float64) float64 {
	if specific != 0 {
		return specific
	}
	return erate
}

func runShow(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	path := dbPathFlag(fs, cfg)
	substr := fs.String("piece_path", "", "substring to match against a stored path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *substr == "" {
		return fmt.Errorf("show requires --piece_path")
	}

	s, err := openStore(*path, false)
	if err != nil {
		return err
	}
	var pieces []store.Piece
	if err := s.DB().Where("path LIKE ?", "%"+*substr+"%").Find(&pieces).Error; err != nil {
		return err
	}
	if len(pieces) == 0 {
		return fmt.Errorf("no stored piece matches %q", *substr)
	}

	parser, err := corpus.NewTinyNotationParser()
	if err != nil {
		return err
	}
	for _, p := range pieces {
		piece, err := parser.ParseFile(p.Path)
		if err != nil {
			fmt.Printf("%s: re-parse failed: %v\n", p.Path, err)
			continue
		}
		fmt.Printf("%s (%s)\n", piece.Title, p.Path)
		for _, part := range piece.Parts {
			fmt.Printf("  part %q: %d notes\n", part.Name, len(part.Notes))
		}
	}
	return nil
}

func runServe(cfg *config.Config, metricsClient *metrics.Client, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	path := dbPathFlag(fs, cfg)
	addr := fs.String("addr", cfg.ServeAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openStore(*path, false)
	if err != nil {
		return err
	}
	engine := newEngine(s, cfg.Window)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := web.NewRouter(engine, metricsClient)
	if err != nil {
		return err
	}

	logger.Info("serve starting", logger.Fields{"addr": *addr})
	return router.Run(*addr)
}
