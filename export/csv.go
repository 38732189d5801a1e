package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/brunobiangulo/tradekg/relate"
)

// WriteTriplesCSV writes one row per triple with full provenance.
func WriteTriplesCSV(w io.Writer, triples []relate.Triple) error {
	cw := csv.NewWriter(w)
	header := []string{"subject", "subject_type", "predicate", "object", "object_type", "post_id", "method"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: writing CSV header: %w", err)
	}
	for _, t := range triples {
		row := []string{t.Subject, t.SubjectType, t.Predicate, t.Object, t.ObjectType, t.PostID, t.Method}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flushing CSV: %w", err)
	}
	return nil
}
