// Package export writes finished graphs and triples in the formats the
// downstream analysis notebooks consume: JSON, CSV, N-Triples, and a
// plain-text report.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brunobiangulo/tradekg/graph"
)

type graphDoc struct {
	Nodes         []graph.Node `json:"nodes"`
	Edges         []graph.Edge `json:"edges"`
	TypeConflicts int          `json:"type_conflicts"`
}

// WriteJSON serializes the graph as a node and edge document.
func WriteJSON(w io.Writer, g *graph.Graph) error {
	doc := graphDoc{
		Nodes:         g.Nodes(),
		Edges:         g.Edges(),
		TypeConflicts: g.TypeConflicts(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encoding graph: %w", err)
	}
	return nil
}

// ReadJSON rebuilds a graph from a document written by WriteJSON.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("export: decoding graph: %w", err)
	}
	return graph.NewFromRecords(doc.Nodes, doc.Edges, doc.TypeConflicts), nil
}
