package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executedQuery struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	Queries []executedQuery
	Results map[string]neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func TestSaveGraph(t *testing.T) {
	md := &MockDriver{}
	store := NewGraphStore(md, nil)

	export := model.GraphExport{
		Entities: []model.ExportedEntity{
			{ID: "c1", Type: model.EntityPerson, Name: "John Smith", Aliases: []string{"John Smith", "J. Smith"}, Confidence: 0.9},
			{ID: "c2", Type: model.EntityOrganization, Name: "Acme Corp", Aliases: []string{"Acme Corp"}, Confidence: 0.85},
		},
		Links: []model.Link{
			{Source: "c1", Target: "c2", Relation: model.RelWorksFor, Confidence: model.ConfidenceProbable, Evidence: "works at"},
			{Source: "c1", Target: "c2", Relation: model.RelWorksFor, Confidence: model.ConfidenceProbable, Evidence: "works at"},
		},
	}

	require.NoError(t, store.SaveGraph(context.Background(), export))
	require.Len(t, md.Queries, 2)

	assert.Equal(t, SaveCanonicalNodesQuery, md.Queries[0].Query)
	entities := md.Queries[0].Params["entities"].([]map[string]interface{})
	require.Len(t, entities, 2)
	assert.Equal(t, "c1", entities[0]["id"])
	assert.Equal(t, "PERSON", entities[0]["type"])
	assert.Equal(t, []interface{}{"John Smith", "J. Smith"}, entities[0]["aliases"])
	assert.Equal(t, int64(0), entities[0]["seq"])
	assert.Equal(t, int64(1), entities[1]["seq"])

	assert.Equal(t, SaveLinksQuery, md.Queries[1].Query)
	links := md.Queries[1].Params["links"].([]map[string]interface{})
	require.Len(t, links, 2)
	assert.Equal(t, int64(0), links[0]["seq"])
	assert.Equal(t, int64(1), links[1]["seq"])
	assert.Equal(t, "probable", links[0]["confidence"])
}

func TestSaveGraph_EmptyAndErrors(t *testing.T) {
	md := &MockDriver{}
	require.NoError(t, NewGraphStore(md, nil).SaveGraph(context.Background(), model.GraphExport{}))
	assert.Empty(t, md.Queries)

	md = &MockDriver{Err: errors.New("bolt down")}
	err := NewGraphStore(md, nil).SaveGraph(context.Background(), model.GraphExport{
		Entities: []model.ExportedEntity{{ID: "c1"}},
	})
	assert.ErrorContains(t, err, "failed to save canonical entities")
}

func TestSaveDocumentMentions(t *testing.T) {
	md := &MockDriver{}
	linked := &model.ExtractedEntity{EntityType: model.EntityPerson, RawText: "John Smith", NormalizedText: "John Smith", Confidence: 0.9}
	linked.SetMeta(model.MetaCanonicalID, "c1")
	linked.SetMeta(model.MetaOccurrenceCount, 2)
	linked.SetMeta(model.MetaPages, []int{1, 3})
	unlinked := &model.ExtractedEntity{EntityType: model.EntityDate, RawText: "today"}

	rec := model.DocumentRecord{
		ID:          "doc-1",
		Context:     "FBI release",
		Mentions:    []*model.ExtractedEntity{linked, unlinked},
		ProcessedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewGraphStore(md, nil).SaveDocumentMentions(context.Background(), rec))

	require.Len(t, md.Queries, 1)
	p := md.Queries[0].Params
	assert.Equal(t, "doc-1", p["doc_id"])
	assert.Equal(t, "2024-01-15T12:00:00Z", p["processed_at"])
	mentions := p["mentions"].([]map[string]interface{})
	require.Len(t, mentions, 1)
	assert.Equal(t, "c1", mentions[0]["canonical_id"])
	assert.Equal(t, int64(2), mentions[0]["occurrence_count"])
	assert.Equal(t, []interface{}{int64(1), int64(3)}, mentions[0]["pages"])
}

func TestLoadGraph(t *testing.T) {
	md := &MockDriver{Results: map[string]neo4j.EagerResult{
		GetCanonicalNodesQuery: {Records: []*neo4j.Record{
			{
				Keys:   []string{"id", "type", "name", "aliases", "confidence"},
				Values: []any{"c1", "PERSON", "John Smith", []any{"John Smith"}, 0.9},
			},
		}},
		GetLinksQuery: {Records: []*neo4j.Record{
			{
				Keys:   []string{"source", "target", "relation", "confidence", "evidence"},
				Values: []any{"c1", "c2", "works_for", "confirmed", "badge"},
			},
		}},
	}}

	g, err := NewGraphStore(md, nil).LoadGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, g.Entities, 1)
	assert.Equal(t, model.ExportedEntity{ID: "c1", Type: model.EntityPerson, Name: "John Smith", Aliases: []string{"John Smith"}, Confidence: 0.9}, g.Entities[0])
	require.Len(t, g.Links, 1)
	assert.Equal(t, model.ConfidenceConfirmed, g.Links[0].Confidence)
}
