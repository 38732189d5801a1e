package store

import "fmt"

// ProfileDim is the dimension of the structural profile vectors held in
// vec_profiles: total, in, and out degree (normalized by the run's maximum
// total degree), PageRank, betweenness, closeness.
const ProfileDim = 6

// schemaSQL returns the DDL for all tables.
func schemaSQL() string {
	return fmt.Sprintf(`
-- Completed pipeline runs
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    label TEXT NOT NULL,
    dataset TEXT,
    posts INTEGER NOT NULL,
    mentions INTEGER NOT NULL,
    triples INTEGER NOT NULL,
    nodes INTEGER NOT NULL,
    edges INTEGER NOT NULL,
    failed INTEGER NOT NULL DEFAULT 0,
    stats JSON,
    metrics JSON,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Source posts per run
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    post_id TEXT NOT NULL,
    author TEXT,
    link TEXT,
    posted_at TEXT,
    relevance REAL DEFAULT 0,
    upvotes INTEGER DEFAULT 0,
    comments INTEGER DEFAULT 0,
    text_content TEXT NOT NULL,
    UNIQUE(run_id, post_id)
);

-- Entity mentions with rune offsets into the post text
CREATE TABLE IF NOT EXISTS mentions (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    post_id TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    surface TEXT NOT NULL,
    norm TEXT NOT NULL,
    start_rune INTEGER NOT NULL,
    end_rune INTEGER NOT NULL
);

-- Graph nodes with their computed centralities
CREATE TABLE IF NOT EXISTS nodes (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    node_key TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    mention_count INTEGER NOT NULL DEFAULT 0,
    degree INTEGER NOT NULL DEFAULT 0,
    in_degree INTEGER NOT NULL DEFAULT 0,
    out_degree INTEGER NOT NULL DEFAULT 0,
    pagerank REAL NOT NULL DEFAULT 0,
    betweenness REAL NOT NULL DEFAULT 0,
    closeness REAL NOT NULL DEFAULT 0,
    UNIQUE(run_id, node_key)
);

-- Graph edges (parallel edges kept, one row per assertion)
CREATE TABLE IF NOT EXISTS edges (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    subject TEXT NOT NULL,
    predicate TEXT NOT NULL,
    object TEXT NOT NULL,
    post_id TEXT,
    method TEXT
);

-- Structural role profiles via sqlite-vec
CREATE VIRTUAL TABLE IF NOT EXISTS vec_profiles USING vec0(
    node_id INTEGER PRIMARY KEY,
    profile float[%d]
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_posts_run ON posts(run_id);
CREATE INDEX IF NOT EXISTS idx_mentions_run ON mentions(run_id, post_id);
CREATE INDEX IF NOT EXISTS idx_nodes_run ON nodes(run_id);
CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
CREATE INDEX IF NOT EXISTS idx_edges_subject ON edges(run_id, subject);
CREATE INDEX IF NOT EXISTS idx_edges_object ON edges(run_id, object);
`, ProfileDim)
}
