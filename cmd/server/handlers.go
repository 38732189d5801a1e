package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brunobiangulo/tradekg"
	"github.com/brunobiangulo/tradekg/graph"
	"github.com/brunobiangulo/tradekg/store"
)

// handler serves one current knowledge graph: the newest persisted run at
// startup, replaced whenever POST /runs builds a new one. Graph endpoints
// read that snapshot; run endpoints read the store.
type handler struct {
	engine tradekg.Engine

	// createMu serialises run creation so the latest-run lookup after a
	// ProcessFile always pairs with the run this request produced.
	createMu sync.Mutex

	mu    sync.RWMutex
	runID int64
	graph *graph.Graph
}

func newHandler(e tradekg.Engine) *handler {
	return &handler{engine: e}
}

// loadLatest primes the served graph from the newest persisted run, if any.
func (h *handler) loadLatest(ctx context.Context) error {
	st := h.engine.Store()
	if st == nil {
		return nil
	}
	run, err := st.LatestRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Info("no persisted runs yet")
		return nil
	}
	if err != nil {
		return err
	}
	g, err := st.LoadGraph(ctx, run.ID)
	if err != nil {
		return err
	}
	h.setCurrent(run.ID, g)
	slog.Info("serving persisted run",
		"run_id", run.ID,
		"label", run.Label,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)
	return nil
}

func (h *handler) current() (int64, *graph.Graph) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.runID, h.graph
}

func (h *handler) setCurrent(runID int64, g *graph.Graph) {
	h.mu.Lock()
	h.runID = runID
	h.graph = g
	h.mu.Unlock()
}

// POST /runs
// Accepts a multipart dataset upload or JSON with a server-local path.
func (h *handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process upload")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save upload")
				slog.Error("saving uploaded dataset", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			h.createRun(ctx, w, tmpPath, safeName)
			return
		}
	}

	// Try JSON body with path
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path'")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	// Validate that path is a real file (prevents directory traversal probing).
	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	h.createRun(ctx, w, absPath, filepath.Base(absPath))
}

func (h *handler) createRun(ctx context.Context, w http.ResponseWriter, path, dataset string) {
	h.createMu.Lock()
	defer h.createMu.Unlock()

	res, err := h.engine.ProcessFile(ctx, path)
	if err != nil {
		if errors.Is(err, tradekg.ErrUnsupportedFormat) || errors.Is(err, tradekg.ErrNoPosts) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "run failed")
		slog.Error("run error", "dataset", dataset, "error", err)
		return
	}

	var runID int64
	if st := h.engine.Store(); st != nil {
		run, err := st.LatestRun(ctx)
		if err != nil {
			slog.Warn("looking up persisted run", "error", err)
		} else {
			runID = run.ID
		}
	}
	h.setCurrent(runID, res.Graph)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"dataset": dataset,
		"stats":   res.Stats,
		"nodes":   res.Graph.NodeCount(),
		"edges":   res.Graph.EdgeCount(),
	})
}

// GET /runs
func (h *handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.engine.Store().ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		slog.Error("list runs error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs": runs,
	})
}

// GET /runs/{id}/stats
func (h *handler) handleRunStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	stats, metrics, err := h.engine.Store().RunStats(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read run stats")
		slog.Error("run stats error", "run_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  id,
		"stats":   rawOrNull(stats),
		"metrics": rawOrNull(metrics),
	})
}

// GET /runs/{id}/top?metric=&n=
func (h *handler) handleTopNodes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "pagerank"
	}
	n := queryInt(r, "n", 10)
	// Bound parameters.
	if n < 1 || n > 100 {
		n = 10
	}

	st := h.engine.Store()
	if _, err := st.GetRun(r.Context(), id); errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read run")
		slog.Error("get run error", "run_id", id, "error", err)
		return
	}

	nodes, err := st.TopNodes(r.Context(), id, metric, n)
	if errors.Is(err, store.ErrUnknownMetric) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank nodes")
		slog.Error("top nodes error", "run_id", id, "metric", metric, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": id,
		"metric": metric,
		"nodes":  nodes,
	})
}

// GET /graph/neighbors?key=&direction=
func (h *handler) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	direction := r.URL.Query().Get("direction")
	switch direction {
	case "", graph.DirOut, graph.DirIn, graph.DirBoth:
	default:
		writeError(w, http.StatusBadRequest, "direction must be out, in or both")
		return
	}

	runID, g := h.current()
	if g == nil {
		writeError(w, http.StatusNotFound, "no run loaded: create one with POST /runs")
		return
	}
	if _, ok := g.Node(key); !ok {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":    runID,
		"key":       key,
		"neighbors": g.Neighbors(key, direction),
	})
}

// GET /graph/subgraph?seed=&depth=
func (h *handler) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	var seeds []string
	for _, v := range r.URL.Query()["seed"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				seeds = append(seeds, s)
			}
		}
	}
	if len(seeds) == 0 {
		writeError(w, http.StatusBadRequest, "at least one seed is required")
		return
	}
	depth := queryInt(r, "depth", 1)
	// Bound parameters.
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}

	runID, g := h.current()
	if g == nil {
		writeError(w, http.StatusNotFound, "no run loaded: create one with POST /runs")
		return
	}

	sub := g.Subgraph(seeds, depth)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":     runID,
		"seeds":      seeds,
		"depth":      depth,
		"node_count": sub.NodeCount(),
		"edge_count": sub.EdgeCount(),
		"nodes":      sub.Nodes(),
		"edges":      sub.Edges(),
	})
}

// GET /graph/triples?subject=&predicate=&object=
func (h *handler) handleTriples(w http.ResponseWriter, r *http.Request) {
	runID, g := h.current()
	if g == nil {
		writeError(w, http.StatusNotFound, "no run loaded: create one with POST /runs")
		return
	}

	q := r.URL.Query()
	edges := g.Triples(q.Get("subject"), q.Get("predicate"), q.Get("object"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"count":   len(edges),
		"triples": edges,
	})
}

// GET /graph/communities
func (h *handler) handleCommunities(w http.ResponseWriter, r *http.Request) {
	runID, g := h.current()
	if g == nil {
		writeError(w, http.StatusNotFound, "no run loaded: create one with POST /runs")
		return
	}

	comms := g.Communities()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      runID,
		"count":       len(comms),
		"communities": comms,
	})
}

// GET /graph/similar?key=&k=
func (h *handler) handleSimilar(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	k := queryInt(r, "k", 5)
	// Bound parameters.
	if k < 1 || k > 50 {
		k = 5
	}

	runID, _ := h.current()
	if runID == 0 {
		writeError(w, http.StatusNotFound, "no persisted run loaded: create one with POST /runs")
		return
	}

	similar, err := h.engine.Store().SimilarProfiles(r.Context(), runID, key, k)
	if errors.Is(err, store.ErrNodeNotFound) {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "similarity search failed")
		slog.Error("similar profiles error", "run_id", runID, "key", key, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"key":     key,
		"similar": similar,
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	runID, g := h.current()
	resp := map[string]interface{}{
		"status": "ok",
		"run_id": runID,
	}
	if g != nil {
		resp["nodes"] = g.NodeCount()
		resp["edges"] = g.EdgeCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// rawOrNull guards json.RawMessage columns that were never written.
func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
