package community

import (
	"sort"

	"github.com/openfoia/foiagraph/internal/core/model"
)

// LabelPropagationDetector clusters entities with label propagation over the
// link graph, weighting parallel links.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(graph model.GraphExport) []model.Community {
	if len(graph.Entities) == 0 {
		return nil
	}
	g := newUndirected(graph)

	// Each entity starts with its own id as label.
	labels := make(map[string]string, len(graph.Entities))
	for _, e := range graph.Entities {
		labels[e.ID] = e.ID
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0

		for _, e := range graph.Entities {
			u := e.ID
			neighbors := g.adj[u]
			if len(neighbors) == 0 {
				continue
			}

			labelWeights := make(map[string]int)
			maxWeight := 0
			for v, w := range neighbors {
				label := labels[v]
				labelWeights[label] += w
				if labelWeights[label] > maxWeight {
					maxWeight = labelWeights[label]
				}
			}

			// Keep the current label on a tie, otherwise take the
			// lexicographically largest for stable output.
			if labelWeights[labels[u]] == maxWeight {
				continue
			}
			var candidates []string
			for label, w := range labelWeights {
				if w == maxWeight {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			labels[u] = candidates[len(candidates)-1]
			changed++
		}

		if changed == 0 {
			break
		}
	}

	var order []string
	clusters := make(map[string][]string)
	for _, e := range graph.Entities {
		label := labels[e.ID]
		if _, ok := clusters[label]; !ok {
			order = append(order, label)
		}
		clusters[label] = append(clusters[label], e.ID)
	}

	var communities []model.Community
	for _, label := range order {
		if ids := clusters[label]; len(ids) >= 2 {
			communities = append(communities, g.community(ids))
		}
	}
	return communities
}
