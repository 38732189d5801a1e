package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// CSVLoader reads the post archive schema the collection scripts write:
// datetime_utc, username, post_link, text_content, relevance_score,
// upvotes, comments_count.
type CSVLoader struct{}

func (l *CSVLoader) SupportedFormats() []string { return []string{"csv"} }

func (l *CSVLoader) Load(ctx context.Context, path string) ([]pipeline.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: reading CSV: %w", err)
	}
	return rowsToPosts(rows)
}
