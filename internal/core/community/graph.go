package community

import (
	"sort"

	"github.com/openfoia/foiagraph/internal/core/model"
)

// undirected is a weighted view of a graph export. Parallel links add weight;
// links touching unknown ids and self links are ignored.
type undirected struct {
	order map[string]int
	nodes []model.ExportedEntity
	adj   map[string]map[string]int
}

func newUndirected(graph model.GraphExport) *undirected {
	g := &undirected{
		order: make(map[string]int, len(graph.Entities)),
		nodes: graph.Entities,
		adj:   make(map[string]map[string]int, len(graph.Entities)),
	}
	for i, e := range graph.Entities {
		g.order[e.ID] = i
		g.adj[e.ID] = make(map[string]int)
	}
	for _, l := range graph.Links {
		if l.Source == l.Target {
			continue
		}
		if _, ok := g.order[l.Source]; !ok {
			continue
		}
		if _, ok := g.order[l.Target]; !ok {
			continue
		}
		g.adj[l.Source][l.Target]++
		g.adj[l.Target][l.Source]++
	}
	return g
}

// community returns members in export order.
func (g *undirected) community(ids []string) model.Community {
	sort.Slice(ids, func(i, j int) bool { return g.order[ids[i]] < g.order[ids[j]] })
	members := make([]model.ExportedEntity, 0, len(ids))
	for _, id := range ids {
		members = append(members, g.nodes[g.order[id]])
	}
	return model.Community{Members: members}
}

func sortedNeighbors(neighbors map[string]int) []string {
	out := make([]string, 0, len(neighbors))
	for v := range neighbors {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
