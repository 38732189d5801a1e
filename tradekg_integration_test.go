//go:build cgo

package tradekg

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunobiangulo/tradekg/export"
	"github.com/brunobiangulo/tradekg/sample"
)

// TestEndToEnd drives the whole stack: generated dataset, file loading,
// extraction, graph analysis, persistence, read-back and reporting.
func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(dir, "tradekg.db")
	cfg.KeepStore = true
	cfg.Concurrency = 4

	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	defer eng.Close()
	if eng.Store() == nil {
		t.Fatal("expected a store with KeepStore on")
	}

	ctx := context.Background()
	posts := sample.Generate(40, 3)

	res, err := eng.Process(ctx, posts)
	if err != nil {
		t.Fatalf("processing batch: %v", err)
	}
	if res.Stats.Posts != 40 {
		t.Fatalf("got %d posts, want 40", res.Stats.Posts)
	}
	if res.Stats.Mentions == 0 || res.Stats.Triples == 0 {
		t.Fatalf("no extractions from generated posts: %+v", res.Stats)
	}
	if res.Graph.NodeCount() == 0 || res.Metrics.Nodes != res.Graph.NodeCount() {
		t.Fatalf("graph/metrics mismatch: %d nodes vs %+v", res.Graph.NodeCount(), res.Metrics)
	}

	// The run was persisted and rebuilds to the same graph.
	run, err := eng.Store().LatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run.Posts != 40 || run.Nodes != res.Graph.NodeCount() {
		t.Errorf("persisted run = %+v, want 40 posts / %d nodes", run, res.Graph.NodeCount())
	}
	rebuilt, err := eng.Store().LoadGraph(ctx, run.ID)
	if err != nil {
		t.Fatalf("rebuilding graph: %v", err)
	}
	if rebuilt.NodeCount() != res.Graph.NodeCount() || rebuilt.EdgeCount() != res.Graph.EdgeCount() {
		t.Errorf("rebuilt graph %d/%d, want %d/%d",
			rebuilt.NodeCount(), rebuilt.EdgeCount(),
			res.Graph.NodeCount(), res.Graph.EdgeCount())
	}

	// Second run through the file loader.
	csvPath := filepath.Join(dir, "posts.csv")
	if err := sample.WriteCSV(csvPath, posts[:10]); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	res2, err := eng.ProcessFile(ctx, csvPath)
	if err != nil {
		t.Fatalf("processing file: %v", err)
	}
	if res2.Stats.Posts != 10 {
		t.Fatalf("got %d posts from file, want 10", res2.Stats.Posts)
	}
	if eng.Graph() != res2.Graph {
		t.Error("Graph() should follow the latest run")
	}
	runs, err := eng.Store().ListRuns(ctx)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d persisted runs, want 2", len(runs))
	}

	// Reporting consumes the same result.
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, res2); err != nil {
		t.Fatalf("writing report: %v", err)
	}
	if !strings.Contains(buf.String(), "KNOWLEDGE GRAPH ANALYSIS REPORT") {
		t.Error("report header missing")
	}

	// Inline display of a known post.
	text := "Trump announces 25% tariff on China."
	highlighted := Highlight(text, eng.Recognize(text))
	want := "[PERSON Trump] announces [TARIFF_RATE 25% tariff] on [LOCATION China]."
	if highlighted != want {
		t.Errorf("got %q, want %q", highlighted, want)
	}
}
