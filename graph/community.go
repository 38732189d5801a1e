package graph

import "sort"

// Community is one structurally connected group of entities. Level 0
// communities are the connected components of the undirected collapse;
// components of minCommunitySplit or more nodes are further divided by
// greedy modularity optimisation into level 1 communities.
type Community struct {
	Level int      `json:"level"`
	Keys  []string `json:"keys"`
}

// minCommunitySplit is the minimum component size eligible for
// modularity-based splitting.
const minCommunitySplit = 6

// maxModularityNodes caps the component size for the modularity
// optimisation. Larger components are kept as level-0 only.
const maxModularityNodes = 200

// wedge is a weighted adjacency entry. Parallel assertions between the same
// endpoints each contribute their own unit of weight.
type wedge struct {
	to     int
	weight float64
}

// Communities detects the graph's communities. Deterministic: nodes are
// visited in first-seen order, adjacency follows ingestion order, and
// modularity ties resolve to the lowest community label. Level 1 entries
// appear only where splitting a component improved modularity.
func (g *Graph) Communities() []Community {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := len(g.order)
	if n == 0 {
		return nil
	}

	idx := make(map[string]int, n)
	for i, k := range g.order {
		idx[k] = i
	}

	adj := make([][]wedge, n)
	totalWeight := 0.0
	for _, e := range g.edges {
		si, oi := idx[e.Subject], idx[e.Object]
		if si == oi {
			continue
		}
		adj[si] = append(adj[si], wedge{to: oi, weight: 1})
		adj[oi] = append(adj[oi], wedge{to: si, weight: 1})
		totalWeight++
	}

	// Level 0: connected components via BFS.
	visited := make([]bool, n)
	var comps [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		var comp []int
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, node)
			for _, e := range adj[node] {
				if !visited[e.to] {
					visited[e.to] = true
					queue = append(queue, e.to)
				}
			}
		}
		comps = append(comps, comp)
	}

	var out []Community
	for _, comp := range comps {
		out = append(out, Community{Level: 0, Keys: g.keysOf(comp)})

		// Level 1: modularity-based splitting for mid-sized components.
		if len(comp) < minCommunitySplit || len(comp) > maxModularityNodes || totalWeight == 0 {
			continue
		}
		subs := modularitySplit(comp, adj, totalWeight)
		if len(subs) <= 1 {
			continue
		}
		for _, sub := range subs {
			out = append(out, Community{Level: 1, Keys: g.keysOf(sub)})
		}
	}
	return out
}

func (g *Graph) keysOf(nodes []int) []string {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = g.order[n]
	}
	return keys
}

// modularitySplit applies a greedy modularity optimisation (simplified
// Louvain) to divide one connected component into sub-communities. If no
// move improves modularity the original component is returned whole.
func modularitySplit(comp []int, adj [][]wedge, totalWeight float64) [][]int {
	n := len(comp)
	localIdx := make(map[int]int, n)
	for i, node := range comp {
		localIdx[node] = i
	}

	// Each node starts in its own community.
	community := make([]int, n)
	for i := range community {
		community[i] = i
	}

	// Node strengths: sum of edge weights within the component.
	strength := make([]float64, n)
	for i, node := range comp {
		for _, e := range adj[node] {
			if _, ok := localIdx[e.to]; ok {
				strength[i] += e.weight
			}
		}
	}

	m2 := 2 * totalWeight
	if m2 == 0 {
		return [][]int{comp}
	}

	commStrength := make(map[int]float64, n)
	for i := range comp {
		commStrength[community[i]] += strength[i]
	}

	// Repeatedly move nodes to the neighbouring community with the best
	// modularity gain. Capped to avoid pathological oscillation.
	const maxPasses = 20
	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i, node := range comp {
			commWeights := make(map[int]float64)
			for _, e := range adj[node] {
				li, ok := localIdx[e.to]
				if !ok {
					continue
				}
				commWeights[community[li]] += e.weight
			}

			current := community[i]
			ki := strength[i]
			removeDelta := commWeights[current]/m2 - (commStrength[current]*ki)/(m2*m2)

			// Candidate labels ascending so gain ties resolve the same way
			// every run.
			cands := make([]int, 0, len(commWeights))
			for c := range commWeights {
				if c != current {
					cands = append(cands, c)
				}
			}
			sort.Ints(cands)

			bestComm, bestGain := current, 0.0
			for _, c := range cands {
				gain := (commWeights[c]/m2 - (commStrength[c]*ki)/(m2*m2)) - removeDelta
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			if bestComm != current {
				commStrength[current] -= ki
				commStrength[bestComm] += ki
				community[i] = bestComm
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	// Group nodes by label, groups ordered by their first member.
	groupOf := make(map[int]int)
	var groups [][]int
	for i, node := range comp {
		gi, ok := groupOf[community[i]]
		if !ok {
			gi = len(groups)
			groupOf[community[i]] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], node)
	}

	if len(groups) <= 1 {
		return [][]int{comp}
	}
	return groups
}
