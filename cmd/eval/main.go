// Command eval scores the extraction pipeline against a gold triple set.
//
// Score a dataset:
//
//	go run ./cmd/eval --input data/posts.csv --gold data/gold.csv
//
// Self-contained sample-data mode:
//
//	go run ./cmd/eval --sample 500 --seed 42 --gold data/gold.csv
//
// Each invocation writes its artifacts into evals/runs/<timestamp>/:
// metadata.json, eval.log and report.json.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/brunobiangulo/tradekg"
	"github.com/brunobiangulo/tradekg/eval"
	"github.com/brunobiangulo/tradekg/pipeline"
	"github.com/brunobiangulo/tradekg/sample"
)

func main() {
	var (
		input       = flag.String("input", "", "Path to the dataset file (csv, jsonl, xlsx, pdf, txt)")
		goldPath    = flag.String("gold", "", "Path to the gold triples CSV (required)")
		sampleN     = flag.Int("sample", 0, "Generate this many sample posts instead of reading --input")
		seed        = flag.Int64("seed", 42, "Sample generator seed")
		lexiconPath = flag.String("lexicon", "", "Path to a lexicon JSON file")
		concurrency = flag.Int("concurrency", 0, "Extraction workers (0 = GOMAXPROCS)")
	)
	flag.Parse()

	if *goldPath == "" {
		log.Fatal("--gold is required")
	}
	if *input == "" && *sampleN <= 0 {
		log.Fatal("either --input or --sample is required")
	}
	if *input != "" && *sampleN > 0 {
		log.Fatal("--input and --sample are mutually exclusive")
	}

	// --- Run artifact directory ---
	runDir := createRunDir()
	fmt.Fprintf(os.Stderr, "Run directory: %s\n", runDir)

	// Setup log tee: write to both stderr and eval.log
	logFile := setupLogTee(runDir)
	defer logFile.Close()

	// Collect metadata
	meta := map[string]interface{}{
		"git_commit":  gitCommit(),
		"go_version":  runtime.Version(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"gold":        filepath.Base(*goldPath),
		"concurrency": *concurrency,
	}
	if *input != "" {
		meta["dataset"] = filepath.Base(*input)
	}
	if *sampleN > 0 {
		meta["sample_posts"] = *sampleN
		meta["seed"] = *seed
	}
	if *lexiconPath != "" {
		meta["lexicon"] = filepath.Base(*lexiconPath)
	}
	writeJSON(filepath.Join(runDir, "metadata.json"), meta)

	cfg := tradekg.DefaultConfig()
	cfg.LexiconPath = *lexiconPath
	cfg.Concurrency = *concurrency

	engine, err := tradekg.New(cfg)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	start := time.Now()

	var res *pipeline.Result
	if *sampleN > 0 {
		res, err = engine.Process(ctx, sample.Generate(*sampleN, *seed))
	} else {
		res, err = engine.ProcessFile(ctx, *input)
	}
	if err != nil {
		log.Fatalf("processing: %v", err)
	}

	gold, err := eval.LoadGold(*goldPath)
	if err != nil {
		log.Fatalf("loading gold set: %v", err)
	}
	report := eval.Evaluate(res.Triples, gold)
	writeJSON(filepath.Join(runDir, "report.json"), report)

	slog.Info("evaluation complete",
		"posts", res.Stats.Posts,
		"extracted", report.Extracted,
		"gold", report.Gold,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	printScores("exact", report.Exact)
	printScores("pairs", report.Pairs)
	for _, pred := range report.Predicates() {
		printScores(pred, report.PerPredicate[pred])
	}
}

// printScores writes one formatted metric line to stderr.
func printScores(name string, s eval.Scores) {
	fmt.Fprintf(os.Stderr, "%-16s P=%.3f R=%.3f F1=%.3f (tp=%d fp=%d fn=%d)\n",
		name, s.Precision, s.Recall, s.F1, s.TP, s.FP, s.FN)
}

func createRunDir() string {
	ts := time.Now().Format("2006-01-02_15-04-05")
	dir := filepath.Join("evals", "runs", ts)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("creating run directory: %v", err)
	}
	return dir
}

// setupLogTee configures slog to write to both stderr and eval.log in the run dir.
func setupLogTee(runDir string) *os.File {
	logPath := filepath.Join(runDir, "eval.log")
	f, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("creating log file: %v", err)
	}
	w := io.MultiWriter(os.Stderr, f)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
	return f
}

// gitCommit returns the current git HEAD short hash, or "unknown".
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// writeJSON marshals v to indented JSON and writes it to path.
func writeJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshaling JSON for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
}
