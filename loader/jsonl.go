package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// JSONLLoader reads one JSON object per line. Objects carry at least a
// "text" field; posts without an "id" get one from the line number.
type JSONLLoader struct{}

func (l *JSONLLoader) SupportedFormats() []string { return []string{"jsonl", "ndjson"} }

func (l *JSONLLoader) Load(ctx context.Context, path string) ([]pipeline.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening JSONL: %w", err)
	}
	defer f.Close()

	var posts []pipeline.Post
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var p pipeline.Post
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("loader: parsing JSONL line %d: %w", line, err)
		}
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if p.ID == "" {
			p.ID = "post_" + strconv.Itoa(line)
		}
		posts = append(posts, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: scanning JSONL: %w", err)
	}
	return posts, nil
}
