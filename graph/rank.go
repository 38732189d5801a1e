package graph

import (
	"fmt"
	"sort"
)

// rrfK dampens the contribution of lower-ranked entries. 60 is the
// conventional constant from the reciprocal-rank-fusion literature.
const rrfK = 60

// NodeScore pairs a node key with a ranking score.
type NodeScore struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Metric names accepted by Top.
const (
	MetricDegree      = "degree"
	MetricInDegree    = "in_degree"
	MetricOutDegree   = "out_degree"
	MetricPageRank    = "pagerank"
	MetricBetweenness = "betweenness"
	MetricCloseness   = "closeness"
)

// Top returns the n highest nodes for one metric. Ties break by key
// ascending, so repeated calls return the same slice.
func (m *Metrics) Top(metric string, n int) ([]NodeScore, error) {
	var scores map[string]float64
	switch metric {
	case MetricDegree:
		scores = intScores(m.Degree)
	case MetricInDegree:
		scores = intScores(m.InDegree)
	case MetricOutDegree:
		scores = intScores(m.OutDegree)
	case MetricPageRank:
		scores = m.PageRank
	case MetricBetweenness:
		scores = m.Betweenness
	case MetricCloseness:
		scores = m.Closeness
	default:
		return nil, fmt.Errorf("graph: unknown metric %q", metric)
	}
	return clip(rankScores(scores), n), nil
}

// TopFused ranks nodes by reciprocal rank fusion over the degree, PageRank
// and betweenness orderings. A node leading a single metric cannot bury
// nodes that place well in all three.
func (m *Metrics) TopFused(n int) []NodeScore {
	fused := make(map[string]float64, len(m.Degree))
	for _, scores := range []map[string]float64{intScores(m.Degree), m.PageRank, m.Betweenness} {
		for i, ns := range rankScores(scores) {
			fused[ns.Key] += 1 / float64(rrfK+i+1)
		}
	}
	return clip(rankScores(fused), n)
}

// rankScores orders a score map descending with key-ascending tie-break.
func rankScores(scores map[string]float64) []NodeScore {
	out := make([]NodeScore, 0, len(scores))
	for k, v := range scores {
		out = append(out, NodeScore{Key: k, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func intScores(in map[string]int) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = float64(v)
	}
	return out
}

func clip(scores []NodeScore, n int) []NodeScore {
	if n < 0 {
		n = 0
	}
	if n > len(scores) {
		n = len(scores)
	}
	return scores[:n]
}
