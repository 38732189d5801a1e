package loader

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// TextLoader reads plain text files, one post per non-blank line.
type TextLoader struct{}

func (l *TextLoader) SupportedFormats() []string { return []string{"txt"} }

func (l *TextLoader) Load(ctx context.Context, path string) ([]pipeline.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading text file: %w", err)
	}

	var posts []pipeline.Post
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		posts = append(posts, pipeline.Post{
			ID:   "post_" + strconv.Itoa(n+1),
			Text: line,
		})
	}
	return posts, nil
}
