package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// PDFLoader reads plain-text post archives: every non-blank line of every
// page becomes one post with ID page<p>_line<l>.
type PDFLoader struct{}

func (l *PDFLoader) SupportedFormats() []string { return []string{"pdf"} }

func (l *PDFLoader) Load(ctx context.Context, path string) ([]pipeline.Post, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening PDF: %w", err)
	}
	defer f.Close()

	var posts []pipeline.Post
	for p := 1; p <= reader.NumPage(); p++ {
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		for n, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			posts = append(posts, pipeline.Post{
				ID:   fmt.Sprintf("page%d_line%d", p, n+1),
				Text: line,
			})
		}
	}
	return posts, nil
}
