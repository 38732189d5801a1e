package tradekg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brunobiangulo/tradekg/graph"
)

// Config holds all configuration for the tradekg engine.
type Config struct {
	// LexiconPath points to a JSON rule file. If empty, the built-in
	// default lexicon is used.
	LexiconPath string `json:"lexicon_path" yaml:"lexicon_path"`

	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.tradekg/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "tradekg". The file will be <DBName>.db inside the
	// storage directory (~/.tradekg/ or working dir).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.tradekg/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// KeepStore persists every processed run to the database. When
	// false no database is opened and Store() returns nil.
	KeepStore bool `json:"keep_store" yaml:"keep_store"`

	// Concurrency caps the extraction workers. Zero means GOMAXPROCS.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// PageRank bounds. Zero values take the graph package defaults.
	Damping           float64 `json:"damping" yaml:"damping"`
	PageRankTolerance float64 `json:"pagerank_tolerance" yaml:"pagerank_tolerance"`
	PageRankMaxIter   int     `json:"pagerank_max_iter" yaml:"pagerank_max_iter"`

	// Namespace is the URI prefix for RDF export. Empty means the
	// export package default.
	Namespace string `json:"namespace" yaml:"namespace"`
}

// DefaultConfig returns a Config with sensible defaults for local use.
// Runs are kept in memory only; set KeepStore to persist them under
// ~/.tradekg/tradekg.db.
func DefaultConfig() Config {
	return Config{
		DBName:            "tradekg",
		StorageDir:        "home",
		Damping:           graph.DefaultDamping,
		PageRankTolerance: graph.DefaultTolerance,
		PageRankMaxIter:   graph.DefaultMaxIterations,
	}
}

// Validate checks configuration values that would silently corrupt the
// analysis if let through. Zero values are legal and mean "use default".
func (c *Config) Validate() error {
	if c.Damping != 0 && (c.Damping <= 0 || c.Damping >= 1) {
		return fmt.Errorf("damping %v outside (0, 1)", c.Damping)
	}
	if c.PageRankTolerance < 0 {
		return fmt.Errorf("pagerank tolerance %v is negative", c.PageRankTolerance)
	}
	if c.PageRankMaxIter < 0 {
		return fmt.Errorf("pagerank max iterations %d is negative", c.PageRankMaxIter)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency %d is negative", c.Concurrency)
	}
	switch c.StorageDir {
	case "", "home", "local", "cwd":
	default:
		return fmt.Errorf("unknown storage dir %q", c.StorageDir)
	}
	return nil
}

// analyzeConfig maps the PageRank bounds onto the graph package config.
func (c *Config) analyzeConfig() graph.AnalyzeConfig {
	return graph.AnalyzeConfig{
		Damping:       c.Damping,
		Tolerance:     c.PageRankTolerance,
		MaxIterations: c.PageRankMaxIter,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "tradekg"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".tradekg")
		return filepath.Join(dir, name+".db")
	}
}
