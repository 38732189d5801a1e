// Command tradekg runs the rule-based extraction pipeline over a dataset of
// social media posts and writes the knowledge graph artifacts: the graph as
// JSON and N-Triples, the extracted triples as CSV, and the analysis report.
//
// Process a CSV dataset:
//
//	go run ./cmd/tradekg --input data/posts.csv --out out
//
// Generate and process a deterministic sample dataset:
//
//	go run ./cmd/tradekg --sample 500 --seed 42 --out out
//
// Persist the run to SQLite and score it against a gold set:
//
//	go run ./cmd/tradekg --input data/posts.csv --persist --gold data/gold.csv
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brunobiangulo/tradekg"
	"github.com/brunobiangulo/tradekg/eval"
	"github.com/brunobiangulo/tradekg/export"
	"github.com/brunobiangulo/tradekg/loader"
	"github.com/brunobiangulo/tradekg/pipeline"
	"github.com/brunobiangulo/tradekg/sample"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config file (JSON)")
		input       = flag.String("input", "", "Path to the dataset file (csv, jsonl, xlsx, pdf, txt)")
		format      = flag.String("format", "auto", "Dataset format override (auto: detect from extension)")
		sampleN     = flag.Int("sample", 0, "Generate this many sample posts instead of reading --input")
		seed        = flag.Int64("seed", 42, "Sample generator seed")
		outDir      = flag.String("out", "out", "Directory for output artifacts")
		persist     = flag.Bool("persist", false, "Persist the run to the SQLite store")
		dbPath      = flag.String("db", "", "SQLite database path (implies --persist)")
		lexiconPath = flag.String("lexicon", "", "Path to a lexicon JSON file")
		concurrency = flag.Int("concurrency", 0, "Extraction workers (0 = GOMAXPROCS)")
		goldPath    = flag.String("gold", "", "Gold triples CSV to score the run against")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	setupLogging(*logFormat, *logLevel)

	if *input == "" && *sampleN <= 0 {
		log.Fatal("either --input or --sample is required")
	}
	if *input != "" && *sampleN > 0 {
		log.Fatal("--input and --sample are mutually exclusive")
	}

	cfg := tradekg.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Fatalf("opening config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("parsing config: %v", err)
		}
		f.Close()
	}

	// Override from environment variables, then explicit flags.
	if v := os.Getenv("TRADEKG_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TRADEKG_LEXICON"); v != "" {
		cfg.LexiconPath = v
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
		*persist = true
	}
	if *lexiconPath != "" {
		cfg.LexiconPath = *lexiconPath
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}
	cfg.KeepStore = *persist

	engine, err := tradekg.New(cfg)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	defer engine.Close()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	ctx := context.Background()
	start := time.Now()

	var res *pipeline.Result
	switch {
	case *sampleN > 0:
		posts := sample.Generate(*sampleN, *seed)
		datasetPath := filepath.Join(*outDir, "sample_posts.csv")
		if err := sample.WriteCSV(datasetPath, posts); err != nil {
			log.Fatalf("writing sample dataset: %v", err)
		}
		slog.Info("sample dataset written", "path", datasetPath, "posts", len(posts))
		res, err = engine.Process(ctx, posts)
	case *format != "auto":
		l, lerr := loader.NewRegistry().Get(*format)
		if lerr != nil {
			log.Fatalf("unknown --format %q (use: csv, jsonl, ndjson, xlsx, xls, pdf, txt)", *format)
		}
		posts, lerr := l.Load(ctx, *input)
		if lerr != nil {
			log.Fatalf("loading dataset: %v", lerr)
		}
		res, err = engine.Process(ctx, posts)
	default:
		res, err = engine.ProcessFile(ctx, *input)
	}
	if err != nil {
		log.Fatalf("processing: %v", err)
	}

	slog.Info("run complete",
		"posts", res.Stats.Posts,
		"mentions", res.Stats.Mentions,
		"triples", res.Stats.Triples,
		"nodes", res.Graph.NodeCount(),
		"edges", res.Graph.EdgeCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	writeArtifact(filepath.Join(*outDir, "knowledge_graph.json"), func(w io.Writer) error {
		return export.WriteJSON(w, res.Graph)
	})
	writeArtifact(filepath.Join(*outDir, "triples.csv"), func(w io.Writer) error {
		return export.WriteTriplesCSV(w, res.Triples)
	})
	writeArtifact(filepath.Join(*outDir, "knowledge_graph.nt"), func(w io.Writer) error {
		return export.WriteNTriples(w, res.Graph, cfg.Namespace)
	})
	writeArtifact(filepath.Join(*outDir, "report.txt"), func(w io.Writer) error {
		return export.WriteReport(w, res)
	})
	slog.Info("artifacts written", "dir", *outDir)

	if *goldPath != "" {
		scoreRun(res, *goldPath, *outDir)
	}

	if err := export.WriteReport(os.Stdout, res); err != nil {
		log.Fatalf("printing report: %v", err)
	}
}

// setupLogging installs the default slog handler per the CLI flags.
func setupLogging(format, level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		log.Fatalf("unknown --log-level: %s (use: debug, info, warn, error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		log.Fatalf("unknown --log-format: %s (use: text, json)", format)
	}
	slog.SetDefault(slog.New(handler))
}

// writeArtifact creates path and streams one export into it.
func writeArtifact(path string, write func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("creating %s: %v", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		log.Fatalf("writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("closing %s: %v", path, err)
	}
}

// scoreRun compares the run's triples against a gold set and writes eval.json.
func scoreRun(res *pipeline.Result, goldPath, outDir string) {
	gold, err := eval.LoadGold(goldPath)
	if err != nil {
		log.Fatalf("loading gold set: %v", err)
	}
	report := eval.Evaluate(res.Triples, gold)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("marshaling eval report: %v", err)
	}
	path := filepath.Join(outDir, "eval.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}

	slog.Info("gold set scored",
		"gold", report.Gold,
		"extracted", report.Extracted,
		"precision", report.Exact.Precision,
		"recall", report.Exact.Recall,
		"f1", report.Exact.F1,
	)
}
