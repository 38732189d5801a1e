package graph

import (
	"testing"

	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/relate"
)

func tr(subject, subjectType, predicate, object, objectType, postID string) relate.Triple {
	return relate.Triple{
		Subject:     subject,
		SubjectType: subjectType,
		Predicate:   predicate,
		Object:      object,
		ObjectType:  objectType,
		PostID:      postID,
		Method:      relate.MethodPattern,
	}
}

func TestIngestKeepsParallelEdges(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{tr("China", lexicon.EntityLocation, lexicon.RelExports, "Steel", lexicon.EntityProduct, "post_1")})
	g.Ingest([]relate.Triple{tr("China", lexicon.EntityLocation, lexicon.RelExports, "Steel", lexicon.EntityProduct, "post_2")})

	if got := g.NodeCount(); got != 2 {
		t.Errorf("got %d nodes, want 2", got)
	}
	if got := g.EdgeCount(); got != 2 {
		t.Errorf("got %d edges, want 2", got)
	}
	for _, key := range []string{"China", "Steel"} {
		n, ok := g.Node(key)
		if !ok {
			t.Fatalf("node %s missing", key)
		}
		if n.Mentions != 2 {
			t.Errorf("node %s: got %d mentions, want 2", key, n.Mentions)
		}
	}
	edges := g.Edges()
	if edges[0].PostID != "post_1" || edges[1].PostID != "post_2" {
		t.Errorf("edges out of ingestion order: %+v", edges)
	}
}

func TestIngestTypeConflict(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{tr("Steel", lexicon.EntitySector, lexicon.RelAffects, "Cars", lexicon.EntityProduct, "post_1")})
	g.Ingest([]relate.Triple{tr("China", lexicon.EntityLocation, lexicon.RelExports, "Steel", lexicon.EntityProduct, "post_2")})

	n, _ := g.Node("Steel")
	if n.Type != lexicon.EntitySector {
		t.Errorf("got type %s, want first-seen %s", n.Type, lexicon.EntitySector)
	}
	if n.Mentions != 2 {
		t.Errorf("got %d mentions, want 2", n.Mentions)
	}
	if got := g.TypeConflicts(); got != 1 {
		t.Errorf("got %d type conflicts, want 1", got)
	}
}

func TestTriplesWildcards(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{
		tr("China", lexicon.EntityLocation, lexicon.RelExports, "Steel", lexicon.EntityProduct, "post_1"),
		tr("USA", lexicon.EntityLocation, lexicon.RelImports, "Steel", lexicon.EntityProduct, "post_1"),
		tr("China", lexicon.EntityLocation, lexicon.RelTradesWith, "USA", lexicon.EntityLocation, "post_2"),
	})

	tests := []struct {
		name                       string
		subject, predicate, object string
		want                       int
	}{
		{"all wildcards", "", "", "", 3},
		{"by subject", "China", "", "", 2},
		{"subject ignores case", "china", "", "", 2},
		{"by predicate", "", lexicon.RelExports, "", 1},
		{"by object", "", "", "steel", 2},
		{"full triple", "China", lexicon.RelTradesWith, "USA", 1},
		{"no match", "Brazil", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Triples(tt.subject, tt.predicate, tt.object); len(got) != tt.want {
				t.Errorf("got %d edges, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{
		tr("China", lexicon.EntityLocation, lexicon.RelExports, "Steel", lexicon.EntityProduct, "post_1"),
		tr("USA", lexicon.EntityLocation, lexicon.RelTargets, "China", lexicon.EntityLocation, "post_2"),
	})

	out := g.Neighbors("China", DirOut)
	if len(out) != 1 || out[0].Key != "Steel" || out[0].Predicate != lexicon.RelExports {
		t.Errorf("out neighbors: got %+v", out)
	}
	in := g.Neighbors("China", DirIn)
	if len(in) != 1 || in[0].Key != "USA" || in[0].Direction != DirIn {
		t.Errorf("in neighbors: got %+v", in)
	}
	both := g.Neighbors("China", "")
	if len(both) != 2 {
		t.Errorf("both: got %+v, want 2 entries", both)
	}
	if got := g.Neighbors("Mars", DirBoth); len(got) != 0 {
		t.Errorf("unknown key: got %+v, want none", got)
	}
}

func TestSubgraph(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{
		tr("A", lexicon.EntityLocation, lexicon.RelTradesWith, "B", lexicon.EntityLocation, "post_1"),
		tr("B", lexicon.EntityLocation, lexicon.RelTradesWith, "C", lexicon.EntityLocation, "post_1"),
		tr("C", lexicon.EntityLocation, lexicon.RelTradesWith, "D", lexicon.EntityLocation, "post_1"),
	})

	tests := []struct {
		name      string
		seeds     []string
		depth     int
		wantNodes int
		wantEdges int
	}{
		{"depth zero keeps seeds only", []string{"A"}, 0, 1, 0},
		{"one hop", []string{"A"}, 1, 2, 1},
		{"two hops", []string{"A"}, 2, 3, 2},
		{"multiple seeds", []string{"A", "D"}, 1, 4, 3},
		{"unknown seed ignored", []string{"A", "Z"}, 1, 2, 1},
		{"all seeds unknown", []string{"Z"}, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := g.Subgraph(tt.seeds, tt.depth)
			if got := sub.NodeCount(); got != tt.wantNodes {
				t.Errorf("got %d nodes, want %d", got, tt.wantNodes)
			}
			if got := sub.EdgeCount(); got != tt.wantEdges {
				t.Errorf("got %d edges, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestSubgraphPreservesCounts(t *testing.T) {
	g := New()
	g.Ingest([]relate.Triple{
		tr("A", lexicon.EntityLocation, lexicon.RelTradesWith, "B", lexicon.EntityLocation, "post_1"),
		tr("A", lexicon.EntityLocation, lexicon.RelTradesWith, "B", lexicon.EntityLocation, "post_2"),
	})
	sub := g.Subgraph([]string{"A"}, 1)
	n, ok := sub.Node("A")
	if !ok || n.Mentions != 2 {
		t.Errorf("got %+v, want A with 2 mentions", n)
	}
	if got := sub.EdgeCount(); got != 2 {
		t.Errorf("got %d edges, want both parallel edges", got)
	}
}

func TestNewFromRecords(t *testing.T) {
	nodes := []Node{
		{Key: "China", Type: lexicon.EntityLocation, Mentions: 5},
		{Key: "Steel", Type: lexicon.EntitySector, Mentions: 3},
	}
	edges := []Edge{
		{Subject: "China", Predicate: lexicon.RelExports, Object: "Steel", PostID: "post_9", Method: relate.MethodPattern},
	}
	g := NewFromRecords(nodes, edges, 2)

	if got := g.NodeCount(); got != 2 {
		t.Errorf("got %d nodes, want 2", got)
	}
	n, _ := g.Node("China")
	if n.Mentions != 5 {
		t.Errorf("got %d mentions, want 5 preserved", n.Mentions)
	}
	if got := g.TypeConflicts(); got != 2 {
		t.Errorf("got %d conflicts, want 2 preserved", got)
	}
	if got := g.Edges(); len(got) != 1 || got[0].PostID != "post_9" {
		t.Errorf("edges not preserved: %+v", got)
	}
	order := g.Nodes()
	if order[0].Key != "China" || order[1].Key != "Steel" {
		t.Errorf("node order not preserved: %+v", order)
	}
}

func TestTopMentioned(t *testing.T) {
	g := NewFromRecords([]Node{
		{Key: "B", Type: lexicon.EntityLocation, Mentions: 2},
		{Key: "A", Type: lexicon.EntityLocation, Mentions: 2},
		{Key: "C", Type: lexicon.EntityLocation, Mentions: 7},
	}, nil, 0)

	top := g.TopMentioned(2)
	if len(top) != 2 || top[0].Key != "C" || top[1].Key != "A" {
		t.Errorf("got %+v, want [C A] (count desc, key asc)", top)
	}
	if got := g.TopMentioned(10); len(got) != 3 {
		t.Errorf("got %d, want clipped to 3", len(got))
	}
}
