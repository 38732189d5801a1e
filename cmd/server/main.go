// Command server exposes a processed knowledge graph over HTTP: POST a
// dataset to build a run, then query runs, rankings, neighborhoods,
// subgraphs, triples and structurally similar entities.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brunobiangulo/tradekg"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := tradekg.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("TRADEKG_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TRADEKG_DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("TRADEKG_LEXICON"); v != "" {
		cfg.LexiconPath = v
	}
	if v := os.Getenv("TRADEKG_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("parsing TRADEKG_CONCURRENCY", "value", v, "error", err)
			os.Exit(1)
		}
		cfg.Concurrency = n
	}

	// The query service always persists: runs created over HTTP must
	// survive a restart.
	cfg.KeepStore = true

	apiKey := os.Getenv("TRADEKG_API_KEY")
	corsOrigins := os.Getenv("TRADEKG_CORS_ORIGINS")

	engine, err := tradekg.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	h := newHandler(engine)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := h.loadLatest(loadCtx); err != nil {
		slog.Warn("loading latest run", "error", err)
	}
	loadCancel()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /runs", h.handleCreateRun)
	mux.HandleFunc("GET /runs", h.handleListRuns)
	mux.HandleFunc("GET /runs/{id}/stats", h.handleRunStats)
	mux.HandleFunc("GET /runs/{id}/top", h.handleTopNodes)
	mux.HandleFunc("GET /graph/neighbors", h.handleNeighbors)
	mux.HandleFunc("GET /graph/subgraph", h.handleSubgraph)
	mux.HandleFunc("GET /graph/triples", h.handleTriples)
	mux.HandleFunc("GET /graph/communities", h.handleCommunities)
	mux.HandleFunc("GET /graph/similar", h.handleSimilar)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // dataset uploads can take a while to process
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
