// Package graph holds the multi-relational knowledge graph assembled from
// extracted triples: a node table keyed by canonical entity plus an
// append-only edge list. Parallel edges are kept on purpose — the same
// assertion made by two posts is evidence twice — so edge counts measure
// assertion volume, not distinct facts.
package graph

import (
	"sort"
	"strings"
	"sync"

	"github.com/brunobiangulo/tradekg/relate"
)

// Node is one canonical entity.
type Node struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Mentions int    `json:"mentions"`
}

// Edge is one directed, labeled assertion with its provenance.
type Edge struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	PostID    string `json:"post_id"`
	Method    string `json:"method"`
}

// Neighbor is one adjacency hit returned by Neighbors.
type Neighbor struct {
	Key       string `json:"key"`
	Predicate string `json:"predicate"`
	Direction string `json:"direction"`
}

// Traversal directions accepted by Neighbors.
const (
	DirOut  = "out"
	DirIn   = "in"
	DirBoth = "both"
)

// Graph is a directed multigraph. Ingest takes the write lock; queries take
// the read lock, so concurrent reads are safe while a run is ingesting.
type Graph struct {
	mu            sync.RWMutex
	nodes         map[string]*Node
	order         []string // keys in first-seen order
	edges         []Edge
	typeConflicts int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// NewFromRecords rebuilds a graph from persisted node and edge records,
// preserving mention counts, first-seen order and the conflict tally.
func NewFromRecords(nodes []Node, edges []Edge, typeConflicts int) *Graph {
	g := New()
	for _, n := range nodes {
		cp := n
		g.nodes[n.Key] = &cp
		g.order = append(g.order, n.Key)
	}
	g.edges = append(g.edges, edges...)
	g.typeConflicts = typeConflicts
	return g
}

// Ingest adds one post's triples. Each triple upserts its two endpoint
// nodes and appends exactly one edge. A key re-appearing with a different
// entity type keeps its first-seen type; the disagreement is tallied in
// TypeConflicts.
func (g *Graph) Ingest(triples []relate.Triple) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range triples {
		g.upsert(t.Subject, t.SubjectType)
		g.upsert(t.Object, t.ObjectType)
		g.edges = append(g.edges, Edge{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    t.Object,
			PostID:    t.PostID,
			Method:    t.Method,
		})
	}
}

func (g *Graph) upsert(key, entityType string) {
	if n, ok := g.nodes[key]; ok {
		n.Mentions++
		if n.Type != entityType {
			g.typeConflicts++
		}
		return
	}
	g.nodes[key] = &Node{Key: key, Type: entityType, Mentions: 1}
	g.order = append(g.order, key)
}

// NodeCount returns the number of distinct canonical entities.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// TypeConflicts returns how many upserts disagreed with a node's
// first-seen entity type.
func (g *Graph) TypeConflicts() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.typeConflicts
}

// Node returns the node for a canonical key.
func (g *Graph) Node(key string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[key]; ok {
		return *n, true
	}
	return Node{}, false
}

// Nodes returns all nodes in first-seen order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.nodes[k])
	}
	return out
}

// Edges returns all edges in ingestion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Triples returns the edges matching a subject/predicate/object query.
// Empty arguments are wildcards; comparisons ignore case.
func (g *Graph) Triples(subject, predicate, object string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	match := func(want, have string) bool {
		return want == "" || strings.EqualFold(want, have)
	}
	var out []Edge
	for _, e := range g.edges {
		if match(subject, e.Subject) && match(predicate, e.Predicate) && match(object, e.Object) {
			out = append(out, e)
		}
	}
	return out
}

// TopMentioned returns the n most-mentioned nodes, ties broken by key.
func (g *Graph) TopMentioned(n int) []Node {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Mentions != nodes[j].Mentions {
			return nodes[i].Mentions > nodes[j].Mentions
		}
		return nodes[i].Key < nodes[j].Key
	})
	if n < 0 {
		n = 0
	}
	if n > len(nodes) {
		n = len(nodes)
	}
	return nodes[:n]
}

// Neighbors returns the adjacent assertions of one node. Direction is
// DirOut, DirIn or DirBoth; the zero value means DirBoth. Parallel edges
// appear once each, in ingestion order.
func (g *Graph) Neighbors(key, direction string) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if direction == "" {
		direction = DirBoth
	}
	var out []Neighbor
	for _, e := range g.edges {
		if (direction == DirOut || direction == DirBoth) && e.Subject == key {
			out = append(out, Neighbor{Key: e.Object, Predicate: e.Predicate, Direction: DirOut})
		}
		if (direction == DirIn || direction == DirBoth) && e.Object == key {
			out = append(out, Neighbor{Key: e.Subject, Predicate: e.Predicate, Direction: DirIn})
		}
	}
	return out
}

// Subgraph returns the induced subgraph of every node within maxDepth
// undirected hops of any seed, plus all edges between kept nodes. Unknown
// seeds are skipped; no known seed yields an empty graph.
func (g *Graph) Subgraph(seeds []string, maxDepth int) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dist := make(map[string]int)
	var queue []string
	for _, s := range seeds {
		if _, ok := g.nodes[s]; !ok {
			continue
		}
		if _, ok := dist[s]; ok {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}

	adj := make(map[string][]string)
	for _, e := range g.edges {
		if e.Subject != e.Object {
			adj[e.Subject] = append(adj[e.Subject], e.Object)
			adj[e.Object] = append(adj[e.Object], e.Subject)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] == maxDepth {
			continue
		}
		for _, next := range adj[cur] {
			if _, ok := dist[next]; ok {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}

	sub := New()
	for _, k := range g.order {
		if _, ok := dist[k]; ok {
			cp := *g.nodes[k]
			sub.nodes[k] = &cp
			sub.order = append(sub.order, k)
		}
	}
	for _, e := range g.edges {
		_, si := dist[e.Subject]
		_, oi := dist[e.Object]
		if si && oi {
			sub.edges = append(sub.edges, e)
		}
	}
	return sub
}
