// Package community groups linked canonical entities into clusters for
// reporting. Clusters are never written back into the graph export.
package community

import (
	"fmt"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/model"
)

const (
	AlgorithmLabelPropagation = "label_propagation"
	AlgorithmComponents       = "components"
)

type Detector interface {
	Detect(graph model.GraphExport) []model.Community
}

// NewDetector returns the detector for algorithm. An empty name selects
// label propagation.
func NewDetector(algorithm string) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmLabelPropagation:
		return NewLabelPropagationDetector(), nil
	case AlgorithmComponents:
		return NewComponentDetector(), nil
	default:
		return nil, fmt.Errorf("unsupported community algorithm: %q", algorithm)
	}
}

// ComponentDetector reports connected components of two or more entities.
type ComponentDetector struct{}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{}
}

func (d *ComponentDetector) Detect(graph model.GraphExport) []model.Community {
	g := newUndirected(graph)

	visited := make(map[string]bool)
	var communities []model.Community

	for _, e := range graph.Entities {
		if visited[e.ID] {
			continue
		}
		var component []string
		d.dfs(e.ID, g.adj, visited, &component)
		if len(component) >= 2 {
			communities = append(communities, g.community(component))
		}
	}

	return communities
}

func (d *ComponentDetector) dfs(u string, adj map[string]map[string]int, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range sortedNeighbors(adj[u]) {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}
