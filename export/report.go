package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/brunobiangulo/tradekg/graph"
	"github.com/brunobiangulo/tradekg/pipeline"
)

const (
	topEntities   = 20
	sampleTriples = 10
)

// WriteReport renders a finished run as the analysis report text:
// processing stats, graph stats, type and predicate histograms, entity
// rankings, and a triple sample.
func WriteReport(w io.Writer, res *pipeline.Result) error {
	if res == nil || res.Metrics == nil {
		return fmt.Errorf("export: report requires an analyzed result")
	}

	bw := bufio.NewWriter(w)
	banner := strings.Repeat("=", 60)
	rule := strings.Repeat("-", 60)

	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw, "KNOWLEDGE GRAPH ANALYSIS REPORT")
	fmt.Fprintln(bw, banner)

	st := res.Stats
	fmt.Fprintln(bw, "\n1. PROCESSING STATISTICS")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Total posts processed: %d\n", st.Posts)
	fmt.Fprintf(bw, "Posts with entities: %d\n", st.PostsWithMentions)
	fmt.Fprintf(bw, "Posts with relations: %d\n", st.PostsWithTriples)
	fmt.Fprintf(bw, "Total entities extracted: %d\n", st.Mentions)
	fmt.Fprintf(bw, "Total triples extracted: %d\n", st.Triples)
	fmt.Fprintf(bw, "Pattern triples: %d\n", st.PatternTriples)
	fmt.Fprintf(bw, "Inferred triples: %d\n", st.InferredTriples)
	if st.Failed > 0 {
		fmt.Fprintf(bw, "Failed posts: %d\n", st.Failed)
	}

	m := res.Metrics
	fmt.Fprintln(bw, "\n2. KNOWLEDGE GRAPH STATISTICS")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Number of nodes (entities): %d\n", m.Nodes)
	fmt.Fprintf(bw, "Number of edges (relationships): %d\n", m.Edges)
	fmt.Fprintf(bw, "Number of unique relation types: %d\n", m.Predicates)
	fmt.Fprintf(bw, "Graph density: %.4f\n", m.Density)
	fmt.Fprintf(bw, "Number of weakly connected components: %d\n", m.Components)
	fmt.Fprintf(bw, "Largest component size: %d\n", m.LargestComponent)
	fmt.Fprintf(bw, "Average degree: %.2f\n", m.AvgDegree)
	if m.TypeConflicts > 0 {
		fmt.Fprintf(bw, "Entity type conflicts: %d\n", m.TypeConflicts)
	}

	fmt.Fprintln(bw, "\n3. ENTITY TYPE DISTRIBUTION")
	fmt.Fprintln(bw, rule)
	for _, e := range sortedCounts(st.MentionsByType) {
		fmt.Fprintf(bw, "%-20s: %5d\n", e.name, e.count)
	}

	fmt.Fprintln(bw, "\n4. RELATION TYPE DISTRIBUTION")
	fmt.Fprintln(bw, rule)
	for _, e := range sortedCounts(st.TriplesByPredicate) {
		fmt.Fprintf(bw, "%-25s: %5d\n", e.name, e.count)
	}

	byDegree, err := m.Top(graph.MetricDegree, topEntities)
	if err != nil {
		return fmt.Errorf("export: ranking by degree: %w", err)
	}
	fmt.Fprintf(bw, "\n5. TOP %d ENTITIES BY DEGREE\n", topEntities)
	fmt.Fprintln(bw, rule)
	for _, ns := range byDegree {
		fmt.Fprintf(bw, "%-30s: %.0f\n", ns.Key, ns.Score)
	}

	byRank, err := m.Top(graph.MetricPageRank, topEntities)
	if err != nil {
		return fmt.Errorf("export: ranking by pagerank: %w", err)
	}
	fmt.Fprintf(bw, "\n6. TOP %d ENTITIES BY PAGERANK\n", topEntities)
	fmt.Fprintln(bw, rule)
	for _, ns := range byRank {
		fmt.Fprintf(bw, "%-30s: %.6f\n", ns.Key, ns.Score)
	}

	fmt.Fprintf(bw, "\n7. TOP %d ENTITIES BY FUSED RANK\n", topEntities)
	fmt.Fprintln(bw, rule)
	for _, ns := range m.TopFused(topEntities) {
		fmt.Fprintf(bw, "%-30s: %.6f\n", ns.Key, ns.Score)
	}

	fmt.Fprintln(bw, "\n8. SAMPLE TRIPLES")
	fmt.Fprintln(bw, rule)
	sample := res.Triples
	if len(sample) > sampleTriples {
		sample = sample[:sampleTriples]
	}
	for _, t := range sample {
		fmt.Fprintf(bw, "(%s, %s, %s) [%s, %s]\n", t.Subject, t.Predicate, t.Object, t.PostID, t.Method)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: writing report: %w", err)
	}
	return nil
}

type countEntry struct {
	name  string
	count int
}

// sortedCounts orders a histogram by count descending, name ascending.
func sortedCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, countEntry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	return entries
}
