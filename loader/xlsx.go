package loader

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/brunobiangulo/tradekg/pipeline"
)

// XLSXLoader reads the first sheet of a workbook using the same
// header-driven schema as the CSV loader.
type XLSXLoader struct{}

func (l *XLSXLoader) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (l *XLSXLoader) Load(ctx context.Context, path string) ([]pipeline.Post, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("loader: no sheets in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("loader: reading sheet %s: %w", sheets[0], err)
	}
	return rowsToPosts(rows)
}
