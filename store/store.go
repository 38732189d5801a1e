// Package store persists completed pipeline runs to SQLite, including the
// graph nodes with their computed centralities and a sqlite-vec index of
// structural role profiles.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/tradekg/graph"
	"github.com/brunobiangulo/tradekg/pipeline"
)

func init() {
	sqlite_vec.Auto()
}

// ErrUnknownMetric is returned by TopNodes for a metric name outside the
// persisted column set.
var ErrUnknownMetric = errors.New("store: unknown metric")

// ErrNodeNotFound is returned by SimilarProfiles when the run has no node
// with the requested key.
var ErrNodeNotFound = errors.New("store: node not found")

// Run is a persisted pipeline run.
type Run struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Dataset   string `json:"dataset,omitempty"`
	Posts     int    `json:"posts"`
	Mentions  int    `json:"mentions"`
	Triples   int    `json:"triples"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Failed    int    `json:"failed"`
	CreatedAt string `json:"created_at"`
}

// NodeRow is a graph node with its persisted centralities.
type NodeRow struct {
	ID           int64   `json:"id"`
	RunID        int64   `json:"run_id"`
	Key          string  `json:"key"`
	Type         string  `json:"type"`
	MentionCount int     `json:"mention_count"`
	Degree       int     `json:"degree"`
	InDegree     int     `json:"in_degree"`
	OutDegree    int     `json:"out_degree"`
	PageRank     float64 `json:"pagerank"`
	Betweenness  float64 `json:"betweenness"`
	Closeness    float64 `json:"closeness"`
}

// SimilarNode is a KNN hit from the structural profile index.
type SimilarNode struct {
	Key      string  `json:"key"`
	Type     string  `json:"type"`
	Distance float64 `json:"distance"`
}

// Store wraps the SQLite database for all run persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the sqlite-vec virtual table.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Run persistence ---

// SaveRun persists a completed pipeline result: the run row, source posts,
// mentions, graph nodes with centralities, edges, and one structural
// profile per node. Returns the run ID.
func (s *Store) SaveRun(ctx context.Context, label, dataset string, res *pipeline.Result) (int64, error) {
	if res == nil || res.Graph == nil || res.Metrics == nil {
		return 0, fmt.Errorf("store: result is not complete")
	}

	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return 0, fmt.Errorf("store: encoding stats: %w", err)
	}
	metricsJSON, err := json.Marshal(res.Metrics)
	if err != nil {
		return 0, fmt.Errorf("store: encoding metrics: %w", err)
	}

	maxDeg := 0
	for _, d := range res.Metrics.Degree {
		if d > maxDeg {
			maxDeg = d
		}
	}

	var runID int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := tx.ExecContext(ctx, `
			INSERT INTO runs (label, dataset, posts, mentions, triples, nodes, edges, failed, stats, metrics)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, label, dataset, res.Stats.Posts, res.Stats.Mentions, res.Stats.Triples,
			res.Graph.NodeCount(), res.Graph.EdgeCount(), res.Stats.Failed,
			string(statsJSON), string(metricsJSON))
		if err != nil {
			return err
		}
		runID, err = r.LastInsertId()
		if err != nil {
			return err
		}

		postStmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO posts (run_id, post_id, author, link, posted_at, relevance, upvotes, comments, text_content)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer postStmt.Close()

		mentionStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO mentions (run_id, post_id, entity_type, surface, norm, start_rune, end_rune)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer mentionStmt.Close()

		for _, pr := range res.Posts {
			p := pr.Post
			if _, err := postStmt.ExecContext(ctx, runID, p.ID, p.Author, p.Link,
				p.CreatedAt, p.Relevance, p.Upvotes, p.Comments, p.Text); err != nil {
				return err
			}
			for _, m := range pr.Mentions {
				if _, err := mentionStmt.ExecContext(ctx, runID, m.PostID, m.Type,
					m.Surface, m.Norm, m.Start, m.End); err != nil {
					return err
				}
			}
		}

		nodeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO nodes (run_id, node_key, entity_type, mention_count, degree, in_degree, out_degree, pagerank, betweenness, closeness)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer nodeStmt.Close()

		profileStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO vec_profiles (node_id, profile) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer profileStmt.Close()

		m := res.Metrics
		for _, n := range res.Graph.Nodes() {
			r, err := nodeStmt.ExecContext(ctx, runID, n.Key, n.Type, n.Mentions,
				m.Degree[n.Key], m.InDegree[n.Key], m.OutDegree[n.Key],
				m.PageRank[n.Key], m.Betweenness[n.Key], m.Closeness[n.Key])
			if err != nil {
				return err
			}
			nodeID, err := r.LastInsertId()
			if err != nil {
				return err
			}
			if _, err := profileStmt.ExecContext(ctx, nodeID,
				serializeFloat32(profileVector(m, n.Key, maxDeg))); err != nil {
				return err
			}
		}

		edgeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO edges (run_id, subject, predicate, object, post_id, method)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer edgeStmt.Close()

		for _, e := range res.Graph.Edges() {
			if _, err := edgeStmt.ExecContext(ctx, runID, e.Subject, e.Predicate,
				e.Object, e.PostID, e.Method); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: saving run: %w", err)
	}
	return runID, nil
}

const runColumns = "id, label, dataset, posts, mentions, triples, nodes, edges, failed, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	r := &Run{}
	var dataset sql.NullString
	if err := row.Scan(&r.ID, &r.Label, &dataset, &r.Posts, &r.Mentions,
		&r.Triples, &r.Nodes, &r.Edges, &r.Failed, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Dataset = dataset.String
	return r, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	return scanRun(s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ?", id))
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	return scanRun(s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT 1"))
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// RunStats returns the persisted stats and metrics documents for a run.
func (s *Store) RunStats(ctx context.Context, runID int64) (stats, metrics json.RawMessage, err error) {
	var st, mt sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT stats, metrics FROM runs WHERE id = ?", runID).Scan(&st, &mt)
	if err != nil {
		return nil, nil, err
	}
	return json.RawMessage(st.String), json.RawMessage(mt.String), nil
}

// DeleteRun removes a run and all of its data.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		// vec_profiles is a virtual table without foreign keys; clear it
		// explicitly before the cascading delete.
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vec_profiles WHERE node_id IN (
				SELECT id FROM nodes WHERE run_id = ?
			)`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
		return err
	})
}

// --- Node and edge read-backs ---

const nodeColumns = "id, run_id, node_key, entity_type, mention_count, degree, in_degree, out_degree, pagerank, betweenness, closeness"

func scanNodeRows(rows *sql.Rows) ([]NodeRow, error) {
	defer rows.Close()
	var nodes []NodeRow
	for rows.Next() {
		var n NodeRow
		if err := rows.Scan(&n.ID, &n.RunID, &n.Key, &n.Type, &n.MentionCount,
			&n.Degree, &n.InDegree, &n.OutDegree,
			&n.PageRank, &n.Betweenness, &n.Closeness); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// NodesForRun returns a run's nodes in first-seen order.
func (s *Store) NodesForRun(ctx context.Context, runID int64) ([]NodeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, err
	}
	return scanNodeRows(rows)
}

// metricColumns whitelists the sortable node columns for TopNodes.
var metricColumns = map[string]string{
	"degree":      "degree",
	"in_degree":   "in_degree",
	"out_degree":  "out_degree",
	"pagerank":    "pagerank",
	"betweenness": "betweenness",
	"closeness":   "closeness",
	"mentions":    "mention_count",
}

// TopNodes returns a run's nodes ranked by one of the persisted metrics,
// ties broken by key.
func (s *Store) TopNodes(ctx context.Context, runID int64, metric string, n int) ([]NodeRow, error) {
	col, ok := metricColumns[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	query := fmt.Sprintf(
		"SELECT %s FROM nodes WHERE run_id = ? ORDER BY %s DESC, node_key ASC LIMIT ?",
		nodeColumns, col)
	rows, err := s.db.QueryContext(ctx, query, runID, n)
	if err != nil {
		return nil, err
	}
	return scanNodeRows(rows)
}

// EdgesForRun returns a run's edges in ingestion order.
func (s *Store) EdgesForRun(ctx context.Context, runID int64) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object, post_id, method
		FROM edges WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var postID, method sql.NullString
		if err := rows.Scan(&e.Subject, &e.Predicate, &e.Object, &postID, &method); err != nil {
			return nil, err
		}
		e.PostID = postID.String
		e.Method = method.String
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// LoadGraph rebuilds the in-memory graph for a run from the persisted
// nodes and edges.
func (s *Store) LoadGraph(ctx context.Context, runID int64) (*graph.Graph, error) {
	var metricsJSON sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT metrics FROM runs WHERE id = ?", runID).Scan(&metricsJSON); err != nil {
		return nil, err
	}
	conflicts := 0
	if metricsJSON.Valid && metricsJSON.String != "" {
		var m graph.Metrics
		if err := json.Unmarshal([]byte(metricsJSON.String), &m); err != nil {
			return nil, fmt.Errorf("store: decoding run metrics: %w", err)
		}
		conflicts = m.TypeConflicts
	}

	nodeRows, err := s.NodesForRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	nodes := make([]graph.Node, len(nodeRows))
	for i, r := range nodeRows {
		nodes[i] = graph.Node{Key: r.Key, Type: r.Type, Mentions: r.MentionCount}
	}

	edges, err := s.EdgesForRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	return graph.NewFromRecords(nodes, edges, conflicts), nil
}

// --- Structural similarity ---

// SimilarProfiles returns up to k nodes from the run whose structural
// profile is nearest to the named node's, nearest first. The node itself
// is excluded.
func (s *Store) SimilarProfiles(ctx context.Context, runID int64, key string, k int) ([]SimilarNode, error) {
	if k <= 0 {
		k = 5
	}

	var nodeID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM nodes WHERE run_id = ? AND node_key = ?", runID, key).Scan(&nodeID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q in run %d", ErrNodeNotFound, key, runID)
	}
	if err != nil {
		return nil, err
	}

	var profile []byte
	if err := s.db.QueryRowContext(ctx,
		"SELECT profile FROM vec_profiles WHERE node_id = ?", nodeID).Scan(&profile); err != nil {
		return nil, fmt.Errorf("store: reading profile for %q: %w", key, err)
	}

	// The KNN scan covers every run's profiles; over-fetch and keep only
	// hits from the requested run.
	fetch := k*4 + 1
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, distance FROM vec_profiles
		WHERE profile MATCH ? AND k = ?
		ORDER BY distance
	`, profile, fetch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type hit struct {
		id       int64
		distance float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.distance); err != nil {
			return nil, err
		}
		if h.id == nodeID {
			continue
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var similar []SimilarNode
	for _, h := range hits {
		var sn SimilarNode
		err := s.db.QueryRowContext(ctx,
			"SELECT node_key, entity_type FROM nodes WHERE id = ? AND run_id = ?",
			h.id, runID).Scan(&sn.Key, &sn.Type)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		sn.Distance = h.distance
		similar = append(similar, sn)
		if len(similar) == k {
			break
		}
	}
	return similar, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// profileVector builds the structural role vector for one node. Degrees
// are scaled by the run's maximum total degree so every component lies
// in [0, 1].
func profileVector(m *graph.Metrics, key string, maxDeg int) []float32 {
	v := make([]float32, ProfileDim)
	if maxDeg > 0 {
		v[0] = float32(m.Degree[key]) / float32(maxDeg)
		v[1] = float32(m.InDegree[key]) / float32(maxDeg)
		v[2] = float32(m.OutDegree[key]) / float32(maxDeg)
	}
	v[3] = float32(m.PageRank[key])
	v[4] = float32(m.Betweenness[key])
	v[5] = float32(m.Closeness[key])
	return v
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
