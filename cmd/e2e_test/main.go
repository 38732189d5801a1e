// Smoke run for the full pipeline: generates a sample dataset, processes it
// with persistence into a throwaway database, then reads the run back from
// the store. Prints the readback as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brunobiangulo/tradekg"
	"github.com/brunobiangulo/tradekg/sample"
	"github.com/brunobiangulo/tradekg/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	tmpDir, _ := os.MkdirTemp("", "tradekg-e2e-*")
	defer os.RemoveAll(tmpDir)

	cfg := tradekg.DefaultConfig()
	cfg.DBPath = tmpDir + "/test.db"
	cfg.KeepStore = true
	cfg.Concurrency = 4

	engine, err := tradekg.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Process
	posts := sample.Generate(200, 7)
	fmt.Fprintf(os.Stderr, "\n=== PROCESSING %d posts ===\n", len(posts))
	res, err := engine.Process(ctx, posts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "process error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "mentions=%d triples=%d nodes=%d edges=%d\n",
		res.Stats.Mentions, res.Stats.Triples, res.Graph.NodeCount(), res.Graph.EdgeCount())

	// Read the run back from the store
	fmt.Fprintf(os.Stderr, "\n=== STORE READBACK ===\n")
	st := engine.Store()
	run, err := st.LatestRun(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "latest run error: %v\n", err)
		os.Exit(1)
	}

	top, err := st.TopNodes(ctx, run.ID, "pagerank", 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "top nodes error: %v\n", err)
		os.Exit(1)
	}
	if len(top) == 0 {
		fmt.Fprintln(os.Stderr, "no nodes persisted")
		os.Exit(1)
	}

	similar, err := st.SimilarProfiles(ctx, run.ID, top[0].Key, 5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "similar profiles error: %v\n", err)
		os.Exit(1)
	}

	type readback struct {
		Run     *store.Run          `json:"run"`
		Top     []store.NodeRow     `json:"top_pagerank"`
		Anchor  string              `json:"anchor"`
		Similar []store.SimilarNode `json:"similar"`
	}

	out, _ := json.MarshalIndent(readback{
		Run:     run,
		Top:     top,
		Anchor:  top[0].Key,
		Similar: similar,
	}, "", "  ")
	fmt.Println(string(out))
}
