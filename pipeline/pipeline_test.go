package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/recognize"
	"github.com/brunobiangulo/tradekg/relate"
)

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	r, err := New(lexicon.Default(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func testPosts() []Post {
	return []Post{
		{ID: "post_1", Text: "Trump announces 25% tariff on China."},
		{ID: "post_2", Text: "Biden India trade talks."},
		{ID: "post_3", Text: ""},
	}
}

func TestRunEndToEnd(t *testing.T) {
	r := newTestRunner(t, Config{Concurrency: 2})
	res, err := r.Run(context.Background(), testPosts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := res.Stats
	if st.Posts != 3 || st.PostsWithMentions != 2 || st.PostsWithTriples != 2 {
		t.Errorf("post counters: %+v", st)
	}
	if st.Mentions != 5 || st.Triples != 2 {
		t.Errorf("got %d mentions / %d triples, want 5 / 2", st.Mentions, st.Triples)
	}
	if st.PatternTriples != 1 || st.InferredTriples != 1 {
		t.Errorf("got %d pattern / %d inferred, want 1 / 1", st.PatternTriples, st.InferredTriples)
	}
	if st.Failed != 0 || len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %+v", res.Failures)
	}

	// Triples concatenate in input order regardless of worker scheduling.
	if len(res.Triples) != 2 || res.Triples[0].PostID != "post_1" || res.Triples[1].PostID != "post_2" {
		t.Errorf("triple order: %+v", res.Triples)
	}
	// China is mentioned in post_1 but joins no triple, so it never
	// becomes a node: Trump, 25% tariff, Biden, India.
	if got := res.Graph.NodeCount(); got != 4 {
		t.Errorf("got %d nodes, want 4", got)
	}
	if res.Metrics == nil || res.Metrics.Nodes != 4 {
		t.Errorf("metrics missing or stale: %+v", res.Metrics)
	}

	// Mentions carry their post of origin.
	for _, pr := range res.Posts {
		for _, m := range pr.Mentions {
			if m.PostID != pr.Post.ID {
				t.Errorf("mention %q stamped %q, want %q", m.Surface, m.PostID, pr.Post.ID)
			}
		}
	}
}

func TestRunDeterministicAcrossConcurrency(t *testing.T) {
	posts := []Post{
		{ID: "post_1", Text: "Trump announces 25% tariff on China."},
		{ID: "post_2", Text: "China exports steel to USA."},
		{ID: "post_3", Text: "Reuters says EU opposes the trade war."},
		{ID: "post_4", Text: "Biden India trade talks."},
		{ID: "post_5", Text: "USA imports cars worth $30 billion from Japan."},
	}

	r1 := newTestRunner(t, Config{Concurrency: 1})
	r8 := newTestRunner(t, Config{Concurrency: 8})

	a, err := r1.Run(context.Background(), posts)
	if err != nil {
		t.Fatalf("Run(1): %v", err)
	}
	b, err := r8.Run(context.Background(), posts)
	if err != nil {
		t.Fatalf("Run(8): %v", err)
	}

	if !reflect.DeepEqual(a.Triples, b.Triples) {
		t.Errorf("triples diverge:\n1: %+v\n8: %+v", a.Triples, b.Triples)
	}
	if !reflect.DeepEqual(a.Stats, b.Stats) {
		t.Errorf("stats diverge:\n1: %+v\n8: %+v", a.Stats, b.Stats)
	}
	if !reflect.DeepEqual(a.Graph.Nodes(), b.Graph.Nodes()) {
		t.Errorf("node tables diverge")
	}
	if !reflect.DeepEqual(a.Graph.Edges(), b.Graph.Edges()) {
		t.Errorf("edge lists diverge")
	}
	if !reflect.DeepEqual(a.Metrics, b.Metrics) {
		t.Errorf("metrics diverge")
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	r := newTestRunner(t, Config{Concurrency: 4})
	real := r.extract
	r.extract = func(p Post) ([]recognize.Mention, []relate.Triple) {
		if p.ID == "post_2" {
			panic("boom")
		}
		return real(p)
	}

	res, err := r.Run(context.Background(), testPosts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].PostID != "post_2" {
		t.Fatalf("got failures %+v, want post_2 only", res.Failures)
	}
	if !strings.Contains(res.Failures[0].Reason, "boom") {
		t.Errorf("got reason %q, want the panic value", res.Failures[0].Reason)
	}
	if res.Stats.Failed != 1 {
		t.Errorf("got %d failed, want 1", res.Stats.Failed)
	}
	// The healthy posts still contribute.
	if len(res.Triples) != 1 || res.Triples[0].PostID != "post_1" {
		t.Errorf("surviving triples: %+v", res.Triples)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	r := newTestRunner(t, Config{})
	res, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stats.Posts != 0 || res.Graph.NodeCount() != 0 || len(res.Triples) != 0 {
		t.Errorf("got %+v, want an empty result", res.Stats)
	}
	if res.Metrics == nil {
		t.Error("metrics should be computed even for an empty run")
	}
}

func TestRunCanceledContext(t *testing.T) {
	r := newTestRunner(t, Config{Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, testPosts()); err == nil {
		t.Fatal("expected an error for a canceled context")
	}
}

func TestRunnerSinglePostHelpers(t *testing.T) {
	r := newTestRunner(t, Config{})

	mentions := r.Recognize("Trump announces 25% tariff on China.")
	if len(mentions) != 3 {
		t.Fatalf("got %d mentions, want 3", len(mentions))
	}
	triples := r.Extract("post_x", "Trump announces 25% tariff on China.")
	if len(triples) != 1 || triples[0].PostID != "post_x" {
		t.Fatalf("got %+v, want one triple for post_x", triples)
	}
}
