package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brunobiangulo/tradekg/graph"
)

// DefaultNamespace prefixes entity and predicate URIs in N-Triples output.
const DefaultNamespace = "http://tariffs.kg/"

// WriteNTriples writes one RDF statement per edge. An empty namespace
// selects DefaultNamespace.
func WriteNTriples(w io.Writer, g *graph.Graph, namespace string) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "<%s%s> <%s%s> <%s%s> .\n",
			namespace, localName(e.Subject),
			namespace, e.Predicate,
			namespace, localName(e.Object))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: writing N-Triples: %w", err)
	}
	return nil
}

// localName makes an entity usable as the local part of a URI.
func localName(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
