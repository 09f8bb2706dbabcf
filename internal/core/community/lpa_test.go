package community

import (
	"fmt"
	"testing"

	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLPA_DisconnectedComponents(t *testing.T) {
	// [1-2-3-1] and [4-5-6-4], no links between them
	g := graphOf([]string{"1", "2", "3", "4", "5", "6"}, [][2]string{
		{"1", "2"}, {"2", "3"}, {"3", "1"},
		{"4", "5"}, {"5", "6"}, {"6", "4"},
	})

	communities := NewLabelPropagationDetector().Detect(g)

	require.Len(t, communities, 2)
	assert.Equal(t, []string{"1", "2", "3"}, memberIDs(communities[0]))
	assert.Equal(t, []string{"4", "5", "6"}, memberIDs(communities[1]))
}

func TestLPA_BridgeNode(t *testing.T) {
	// Two triangles joined by the single link 3-4. Intra-triangle weight
	// outweighs the bridge so they stay apart.
	g := graphOf([]string{"1", "2", "3", "4", "5", "6"}, [][2]string{
		{"1", "2"}, {"2", "3"}, {"3", "1"},
		{"3", "4"},
		{"4", "5"}, {"5", "6"}, {"6", "4"},
	})

	communities := NewLabelPropagationDetector().Detect(g)
	require.Len(t, communities, 2)
	assert.Equal(t, []string{"1", "2", "3"}, memberIDs(communities[0]))
	assert.Equal(t, []string{"4", "5", "6"}, memberIDs(communities[1]))
}

func TestLPA_LargeClique(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	var pairs [][2]string
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, [2]string{ids[i], ids[j]})
		}
	}

	communities := NewLabelPropagationDetector().Detect(graphOf(ids, pairs))
	require.Len(t, communities, 1)
	assert.Len(t, communities[0].Members, 5)
}

func TestLPA_ParallelLinksAddWeight(t *testing.T) {
	// 2 is pulled toward 3 by three repeated links rather than toward 1.
	g := graphOf([]string{"1", "2", "3"}, [][2]string{
		{"1", "2"},
		{"2", "3"}, {"2", "3"}, {"3", "2"},
	})

	communities := NewLabelPropagationDetector().Detect(g)
	require.NotEmpty(t, communities)
	found := false
	for _, c := range communities {
		ids := fmt.Sprint(memberIDs(c))
		if ids == "[2 3]" || ids == "[1 2 3]" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLPA_Empty(t *testing.T) {
	assert.Nil(t, NewLabelPropagationDetector().Detect(model.GraphExport{}))
}
