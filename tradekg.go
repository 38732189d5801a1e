package tradekg

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/brunobiangulo/tradekg/graph"
	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/loader"
	"github.com/brunobiangulo/tradekg/pipeline"
	"github.com/brunobiangulo/tradekg/recognize"
	"github.com/brunobiangulo/tradekg/relate"
	"github.com/brunobiangulo/tradekg/store"
)

// Engine is the main entry point for extraction and graph building.
type Engine interface {
	// Process extracts entities and relations from a batch of posts and
	// builds the knowledge graph. When a store is configured the run is
	// persisted; persistence failures are logged, never fatal.
	Process(ctx context.Context, posts []pipeline.Post) (*pipeline.Result, error)

	// ProcessFile loads a dataset file by extension and processes it.
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)

	// Recognize runs entity recognition over one text.
	Recognize(text string) []recognize.Mention

	// Extract runs recognition plus relation extraction over one text.
	Extract(postID, text string) []relate.Triple

	// Graph returns the graph from the most recent Process call, or nil
	// before the first run.
	Graph() *graph.Graph

	// Store returns the underlying run store, or nil when persistence
	// is disabled.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Option overrides engine construction defaults.
type Option func(*options)

type options struct {
	lex         *lexicon.Lexicon
	store       *store.Store
	concurrency int
}

// WithLexicon uses an already-built lexicon instead of LexiconPath or
// the built-in default.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(o *options) { o.lex = lex }
}

// WithStore uses an already-open store instead of opening one from the
// config paths. The engine takes ownership and closes it on Close.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithConcurrency overrides the extraction worker cap.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg     Config
	runner  *pipeline.Runner
	loaders *loader.Registry
	store   *store.Store

	mu     sync.RWMutex
	last   *pipeline.Result
	closed bool
}

// New creates an engine from the given configuration.
func New(cfg Config, opts ...Option) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	o := &options{concurrency: cfg.Concurrency}
	for _, opt := range opts {
		opt(o)
	}

	lex := o.lex
	if lex == nil {
		if cfg.LexiconPath != "" {
			loaded, err := lexicon.Load(cfg.LexiconPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
			}
			lex = loaded
		} else {
			lex = lexicon.Default()
		}
	}
	if len(lex.Dictionaries) == 0 {
		return nil, ErrEmptyLexicon
	}
	for _, r := range lex.Relations {
		if len(r.Connectors) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyConnectors, r.Predicate)
		}
	}

	runner, err := pipeline.New(lex, pipeline.Config{
		Concurrency: o.concurrency,
		Analysis:    cfg.analyzeConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}

	s := o.store
	if s == nil && cfg.KeepStore {
		s, err = store.New(cfg.resolveDBPath())
		if err != nil {
			return nil, fmt.Errorf("tradekg: opening store: %w", err)
		}
	}

	return &engine{
		cfg:     cfg,
		runner:  runner,
		loaders: loader.NewRegistry(),
		store:   s,
	}, nil
}

func (e *engine) Process(ctx context.Context, posts []pipeline.Post) (*pipeline.Result, error) {
	return e.process(ctx, posts, "batch", "")
}

func (e *engine) process(ctx context.Context, posts []pipeline.Post, label, dataset string) (*pipeline.Result, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrStoreClosed
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	res, err := e.runner.Run(ctx, posts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.last = res
	e.mu.Unlock()

	if e.store != nil {
		runID, err := e.store.SaveRun(ctx, label, dataset, res)
		if err != nil {
			slog.Warn("engine: persisting run failed", "label", label, "error", err)
		} else {
			slog.Info("engine: run persisted", "run_id", runID, "label", label)
		}
	}
	return res, nil
}

func (e *engine) ProcessFile(ctx context.Context, path string) (*pipeline.Result, error) {
	format := loader.FormatForPath(path)
	l, err := e.loaders.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	posts, err := l.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("tradekg: loading dataset: %w", err)
	}
	slog.Info("engine: dataset loaded", "path", path, "format", format, "posts", len(posts))

	return e.process(ctx, posts, filepath.Base(path), path)
}

func (e *engine) Recognize(text string) []recognize.Mention {
	return e.runner.Recognize(text)
}

func (e *engine) Extract(postID, text string) []relate.Triple {
	return e.runner.Extract(postID, text)
}

func (e *engine) Graph() *graph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return nil
	}
	return e.last.Graph
}

func (e *engine) Store() *store.Store {
	return e.store
}

func (e *engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}
