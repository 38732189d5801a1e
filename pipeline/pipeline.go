// Package pipeline runs extraction over a batch of posts. Recognition and
// relation extraction are pure per-post functions, so posts fan out across a
// bounded worker pool; graph ingestion happens afterwards on one goroutine,
// in input order, so two runs over the same batch build identical graphs
// regardless of worker count.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/brunobiangulo/tradekg/graph"
	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/recognize"
	"github.com/brunobiangulo/tradekg/relate"
)

// Post is one input document plus the dataset metadata carried through to
// persistence. Only ID and Text drive extraction.
type Post struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Author    string  `json:"author,omitempty"`
	Link      string  `json:"link,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
	Upvotes   int     `json:"upvotes,omitempty"`
	Comments  int     `json:"comments,omitempty"`
}

// PostResult pairs one post with what was extracted from it.
type PostResult struct {
	Post     Post                `json:"post"`
	Mentions []recognize.Mention `json:"mentions"`
	Triples  []relate.Triple     `json:"triples"`
}

// Failure records a post whose extraction panicked. A failed post
// contributes nothing to the graph and never aborts the batch.
type Failure struct {
	PostID string `json:"post_id"`
	Reason string `json:"reason"`
}

// Stats aggregates one run.
type Stats struct {
	Posts              int            `json:"posts"`
	PostsWithMentions  int            `json:"posts_with_mentions"`
	PostsWithTriples   int            `json:"posts_with_triples"`
	Mentions           int            `json:"mentions"`
	Triples            int            `json:"triples"`
	PatternTriples     int            `json:"pattern_triples"`
	InferredTriples    int            `json:"inferred_triples"`
	Failed             int            `json:"failed"`
	MentionsByType     map[string]int `json:"mentions_by_type"`
	TriplesByPredicate map[string]int `json:"triples_by_predicate"`
}

// Result is one completed run.
type Result struct {
	Posts    []PostResult   `json:"posts"`
	Triples  []relate.Triple `json:"triples"`
	Graph    *graph.Graph   `json:"-"`
	Metrics  *graph.Metrics `json:"metrics"`
	Stats    Stats          `json:"stats"`
	Failures []Failure      `json:"failures,omitempty"`
}

// Config tunes a Runner.
type Config struct {
	// Concurrency caps the extraction workers. Zero or negative means
	// GOMAXPROCS.
	Concurrency int `json:"concurrency"`
	// Analysis bounds the centrality computation on the finished graph.
	Analysis graph.AnalyzeConfig `json:"analysis"`
}

// Runner owns the compiled rule machinery for one lexicon. It is safe for
// concurrent use.
type Runner struct {
	rec *recognize.Recognizer
	ext *relate.Extractor
	cfg Config

	// extract is swapped out by tests to exercise the failure path.
	extract func(Post) ([]recognize.Mention, []relate.Triple)
}

// New compiles the lexicon into a Runner.
func New(lex *lexicon.Lexicon, cfg Config) (*Runner, error) {
	rec, err := recognize.New(lex)
	if err != nil {
		return nil, err
	}
	ext, err := relate.New(lex)
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	r := &Runner{rec: rec, ext: ext, cfg: cfg}
	r.extract = r.extractPost
	return r, nil
}

// Recognize runs entity recognition over one text.
func (r *Runner) Recognize(text string) []recognize.Mention {
	return r.rec.Recognize(text)
}

// Extract runs recognition plus relation extraction over one post text.
func (r *Runner) Extract(postID, text string) []relate.Triple {
	mentions := r.rec.Recognize(text)
	for i := range mentions {
		mentions[i].PostID = postID
	}
	return r.ext.Extract(postID, text, mentions)
}

func (r *Runner) extractPost(p Post) ([]recognize.Mention, []relate.Triple) {
	mentions := r.rec.Recognize(p.Text)
	for i := range mentions {
		mentions[i].PostID = p.ID
	}
	return mentions, r.ext.Extract(p.ID, p.Text, mentions)
}

// Run extracts every post and folds the triples into a fresh graph. The
// only error is context cancellation; per-post panics are contained at the
// post boundary and reported in Result.Failures. An empty batch yields an
// empty result.
func (r *Runner) Run(ctx context.Context, posts []Post) (*Result, error) {
	results := make([]PostResult, len(posts))
	panics := make([]string, len(posts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Concurrency)
	for i := range posts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = PostResult{Post: posts[i]}
			defer func() {
				if rec := recover(); rec != nil {
					panics[i] = fmt.Sprint(rec)
				}
			}()
			mentions, triples := r.extract(posts[i])
			results[i].Mentions = mentions
			results[i].Triples = triples
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: run aborted: %w", err)
	}

	res := &Result{Posts: results, Graph: graph.New()}
	st := &res.Stats
	st.Posts = len(posts)
	st.MentionsByType = make(map[string]int)
	st.TriplesByPredicate = make(map[string]int)
	for i := range results {
		pr := &results[i]
		if msg := panics[i]; msg != "" {
			res.Failures = append(res.Failures, Failure{PostID: pr.Post.ID, Reason: msg})
			slog.Warn("pipeline: post failed", "post_id", pr.Post.ID, "reason", msg)
			continue
		}
		if len(pr.Mentions) > 0 {
			st.PostsWithMentions++
		}
		if len(pr.Triples) > 0 {
			st.PostsWithTriples++
		}
		st.Mentions += len(pr.Mentions)
		st.Triples += len(pr.Triples)
		for _, m := range pr.Mentions {
			st.MentionsByType[m.Type]++
		}
		for _, tr := range pr.Triples {
			st.TriplesByPredicate[tr.Predicate]++
			if tr.Method == relate.MethodPattern {
				st.PatternTriples++
			} else {
				st.InferredTriples++
			}
		}
		res.Triples = append(res.Triples, pr.Triples...)
		res.Graph.Ingest(pr.Triples)
	}
	st.Failed = len(res.Failures)
	res.Metrics = res.Graph.AnalyzeWith(r.cfg.Analysis)

	slog.Info("pipeline: run complete",
		"posts", st.Posts,
		"mentions", st.Mentions,
		"triples", st.Triples,
		"nodes", res.Graph.NodeCount(),
		"edges", res.Graph.EdgeCount(),
		"failed", st.Failed)
	return res, nil
}
