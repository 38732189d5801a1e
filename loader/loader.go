// Package loader reads post archives in the formats the collection
// scripts produce and turns them into pipeline posts.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// Loader reads posts from one file format.
type Loader interface {
	Load(ctx context.Context, path string) ([]pipeline.Post, error)
	SupportedFormats() []string
}

// Registry maps file formats to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry returns a registry with the built-in loaders registered.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	csv := &CSVLoader{}
	jsonl := &JSONLLoader{}
	xlsx := &XLSXLoader{}
	pdf := &PDFLoader{}
	txt := &TextLoader{}

	for _, l := range []Loader{csv, jsonl, xlsx, pdf, txt} {
		for _, f := range l.SupportedFormats() {
			r.loaders[f] = l
		}
	}
	return r
}

func (r *Registry) Get(format string) (Loader, error) {
	l, ok := r.loaders[format]
	if !ok {
		return nil, fmt.Errorf("loader: no loader for format %q", format)
	}
	return l, nil
}

func (r *Registry) Register(format string, l Loader) {
	r.loaders[format] = l
}

// FormatForPath derives the loader format from a file extension.
func FormatForPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Column names of the post archive schema. Header matching is
// case-insensitive and only text_content is required.
const (
	colDatetime  = "datetime_utc"
	colUsername  = "username"
	colPostLink  = "post_link"
	colText      = "text_content"
	colRelevance = "relevance_score"
	colUpvotes   = "upvotes"
	colComments  = "comments_count"
)

// rowsToPosts converts header-driven rows into posts. The first row is the
// header; later rows may be ragged. Rows without text are skipped, but the
// ordinal used for generated IDs still counts them.
func rowsToPosts(rows [][]string) ([]pipeline.Post, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("loader: no rows")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colText]; !ok {
		return nil, fmt.Errorf("loader: missing required column %q", colText)
	}

	posts := make([]pipeline.Post, 0, len(rows)-1)
	for n, row := range rows[1:] {
		text := cell(row, cols, colText)
		if text == "" {
			continue
		}
		p := pipeline.Post{
			Text:      text,
			Author:    cell(row, cols, colUsername),
			Link:      cell(row, cols, colPostLink),
			CreatedAt: cell(row, cols, colDatetime),
		}
		if v := cell(row, cols, colRelevance); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				p.Relevance = f
			}
		}
		if v := cell(row, cols, colUpvotes); v != "" {
			if u, err := strconv.Atoi(v); err == nil {
				p.Upvotes = u
			}
		}
		if v := cell(row, cols, colComments); v != "" {
			if c, err := strconv.Atoi(v); err == nil {
				p.Comments = c
			}
		}
		p.ID = p.Link
		if p.ID == "" {
			p.ID = "post_" + strconv.Itoa(n+1)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// cell returns the named column of a possibly ragged row.
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
