package graph

import (
	"math"
	"sort"
)

// Defaults for the iterative centrality computations.
const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// AnalyzeConfig bounds the PageRank power iteration. Zero values take the
// package defaults.
type AnalyzeConfig struct {
	Damping       float64 `json:"damping"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
}

func (c *AnalyzeConfig) applyDefaults() {
	if c.Damping == 0 {
		c.Damping = DefaultDamping
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
}

// Metrics is a point-in-time analytical snapshot of a graph. Degree counts
// include parallel edges. PageRank follows the directed multigraph with
// edge multiplicity as weight; betweenness and closeness are computed on
// the undirected simple collapse, where parallel and antiparallel edges
// become one link and self-loops are ignored.
type Metrics struct {
	Nodes            int     `json:"nodes"`
	Edges            int     `json:"edges"`
	Predicates       int     `json:"predicates"`
	Density          float64 `json:"density"`
	AvgDegree        float64 `json:"avg_degree"`
	MaxDegree        int     `json:"max_degree"`
	Components       int     `json:"components"`
	LargestComponent int     `json:"largest_component"`
	ComponentSizes   []int   `json:"component_sizes"`
	TypeConflicts    int     `json:"type_conflicts"`
	PageRankIters    int     `json:"pagerank_iterations"`

	Degree      map[string]int     `json:"degree"`
	InDegree    map[string]int     `json:"in_degree"`
	OutDegree   map[string]int     `json:"out_degree"`
	PageRank    map[string]float64 `json:"pagerank"`
	Betweenness map[string]float64 `json:"betweenness"`
	Closeness   map[string]float64 `json:"closeness"`
}

// Analyze computes Metrics with default iteration bounds.
func (g *Graph) Analyze() *Metrics {
	return g.AnalyzeWith(AnalyzeConfig{})
}

// AnalyzeWith computes a full metrics snapshot. Iteration over nodes and
// edges follows first-seen and ingestion order, so repeated calls on the
// same graph return identical values.
func (g *Graph) AnalyzeWith(cfg AnalyzeConfig) *Metrics {
	cfg.applyDefaults()
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := len(g.order)
	m := &Metrics{
		Nodes:         n,
		Edges:         len(g.edges),
		TypeConflicts: g.typeConflicts,
		Degree:        make(map[string]int, n),
		InDegree:      make(map[string]int, n),
		OutDegree:     make(map[string]int, n),
		PageRank:      make(map[string]float64, n),
		Betweenness:   make(map[string]float64, n),
		Closeness:     make(map[string]float64, n),
	}
	if n == 0 {
		return m
	}

	idx := make(map[string]int, n)
	for i, k := range g.order {
		idx[k] = i
	}

	in := make([]int, n)
	out := make([]int, n)
	preds := make(map[string]struct{})
	for _, e := range g.edges {
		out[idx[e.Subject]]++
		in[idx[e.Object]]++
		preds[e.Predicate] = struct{}{}
	}
	m.Predicates = len(preds)
	for i, k := range g.order {
		d := in[i] + out[i]
		m.Degree[k] = d
		m.InDegree[k] = in[i]
		m.OutDegree[k] = out[i]
		if d > m.MaxDegree {
			m.MaxDegree = d
		}
	}
	m.AvgDegree = 2 * float64(len(g.edges)) / float64(n)
	if n > 1 {
		m.Density = float64(len(g.edges)) / float64(n*(n-1))
	}

	und := g.undirectedSimple(idx, n)
	m.ComponentSizes = components(und, n)
	m.Components = len(m.ComponentSizes)
	if m.Components > 0 {
		m.LargestComponent = m.ComponentSizes[0]
	}

	rank, iters := g.pagerank(idx, out, n, cfg)
	m.PageRankIters = iters
	bet := betweenness(und, n)
	clo := closeness(und, n)
	for i, k := range g.order {
		m.PageRank[k] = rank[i]
		m.Betweenness[k] = bet[i]
		m.Closeness[k] = clo[i]
	}
	return m
}

// undirectedSimple collapses the multigraph to undirected simple adjacency
// lists. Self-loops are dropped; neighbor lists are sorted for stable
// traversal order.
func (g *Graph) undirectedSimple(idx map[string]int, n int) [][]int {
	sets := make([]map[int]struct{}, n)
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for _, e := range g.edges {
		si, oi := idx[e.Subject], idx[e.Object]
		if si == oi {
			continue
		}
		sets[si][oi] = struct{}{}
		sets[oi][si] = struct{}{}
	}
	adj := make([][]int, n)
	for i, s := range sets {
		adj[i] = make([]int, 0, len(s))
		for j := range s {
			adj[i] = append(adj[i], j)
		}
		sort.Ints(adj[i])
	}
	return adj
}

// components returns the weakly connected component sizes, largest first.
func components(adj [][]int, n int) []int {
	visited := make([]bool, n)
	var sizes []int
	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		size := 0
		queue := []int{s}
		visited[s] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			size++
			for _, v := range adj[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
		sizes = append(sizes, size)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// pagerank runs the power iteration with uniform teleportation. Dangling
// mass is redistributed uniformly each step, so the vector sums to one at
// every iteration; a single isolated node therefore scores exactly 1.
func (g *Graph) pagerank(idx map[string]int, outWeight []int, n int, cfg AnalyzeConfig) ([]float64, int) {
	type weighted struct{ to, weight int }
	counts := make([]map[int]int, n)
	for _, e := range g.edges {
		si, oi := idx[e.Subject], idx[e.Object]
		if counts[si] == nil {
			counts[si] = make(map[int]int)
		}
		counts[si][oi]++
	}
	succ := make([][]weighted, n)
	for i, c := range counts {
		if c == nil {
			continue
		}
		keys := make([]int, 0, len(c))
		for j := range c {
			keys = append(keys, j)
		}
		sort.Ints(keys)
		for _, j := range keys {
			succ[i] = append(succ[i], weighted{to: j, weight: c[j]})
		}
	}

	d := cfg.Damping
	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	iters := 0
	for it := 0; it < cfg.MaxIterations; it++ {
		iters = it + 1
		dangling := 0.0
		for i := range rank {
			if outWeight[i] == 0 {
				dangling += rank[i]
			}
		}
		base := (1-d)/float64(n) + d*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for i, edges := range succ {
			if len(edges) == 0 {
				continue
			}
			share := d * rank[i] / float64(outWeight[i])
			for _, w := range edges {
				next[w.to] += share * float64(w.weight)
			}
		}
		delta := 0.0
		for i := range rank {
			delta += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if delta < cfg.Tolerance {
			break
		}
	}
	return rank, iters
}

// betweenness is Brandes' algorithm over the undirected collapse. Raw
// accumulation counts each pair from both endpoints, so the undirected
// halving and the (n-1)(n-2)/2 normalization fold into a single factor.
func betweenness(adj [][]int, n int) []float64 {
	bet := make([]float64, n)
	if n < 3 {
		return bet
	}
	dist := make([]int, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	stack := make([]int, 0, n)
	queue := make([]int, 0, n)

	for s := 0; s < n; s++ {
		stack = stack[:0]
		queue = queue[:0]
		for i := 0; i < n; i++ {
			dist[i] = -1
			sigma[i] = 0
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		dist[s] = 0
		sigma[s] = 1
		queue = append(queue, s)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			stack = append(stack, u)
			for _, v := range adj[u] {
				if dist[v] < 0 {
					dist[v] = dist[u] + 1
					queue = append(queue, v)
				}
				if dist[v] == dist[u]+1 {
					sigma[v] += sigma[u]
					preds[v] = append(preds[v], u)
				}
			}
		}
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				bet[w] += delta[w]
			}
		}
	}

	scale := 1 / float64((n-1)*(n-2))
	for i := range bet {
		bet[i] *= scale
	}
	return bet
}

// closeness uses the reachable-share form, so nodes in small components are
// not rewarded for short distances to few peers: for r nodes reached at
// total distance t, closeness is (r/t) * (r/(n-1)).
func closeness(adj [][]int, n int) []float64 {
	clo := make([]float64, n)
	if n < 2 {
		return clo
	}
	dist := make([]int, n)
	queue := make([]int, 0, n)
	for s := 0; s < n; s++ {
		for i := range dist {
			dist[i] = -1
		}
		dist[s] = 0
		queue = queue[:0]
		queue = append(queue, s)
		total, reached := 0, 0
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				if dist[v] < 0 {
					dist[v] = dist[u] + 1
					total += dist[v]
					reached++
					queue = append(queue, v)
				}
			}
		}
		if total > 0 {
			r := float64(reached)
			clo[s] = (r / float64(total)) * (r / float64(n-1))
		}
	}
	return clo
}
