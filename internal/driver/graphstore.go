package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/openfoia/foiagraph/internal/core/model"
	"go.uber.org/zap"
)

// GraphStore persists graph exports into Memgraph.
type GraphStore struct {
	driver GraphDriver
	logger *zap.Logger
}

func NewGraphStore(d GraphDriver, logger *zap.Logger) *GraphStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphStore{driver: d, logger: logger}
}

// SaveGraph upserts every canonical entity, then writes one LINK relationship
// per link. Links whose endpoints are not in the store are skipped by the
// database.
func (s *GraphStore) SaveGraph(ctx context.Context, export model.GraphExport) error {
	if len(export.Entities) > 0 {
		entities := make([]map[string]interface{}, 0, len(export.Entities))
		for i, e := range export.Entities {
			aliases := make([]interface{}, len(e.Aliases))
			for i, a := range e.Aliases {
				aliases[i] = a
			}
			entities = append(entities, map[string]interface{}{
				"seq":        int64(i),
				"id":         e.ID,
				"type":       string(e.Type),
				"name":       e.Name,
				"aliases":    aliases,
				"confidence": e.Confidence,
			})
		}
		if _, err := s.driver.ExecuteQuery(ctx, SaveCanonicalNodesQuery, map[string]interface{}{"entities": entities}); err != nil {
			return fmt.Errorf("failed to save canonical entities: %w", err)
		}
	}

	if len(export.Links) > 0 {
		links := make([]map[string]interface{}, 0, len(export.Links))
		for i, l := range export.Links {
			links = append(links, map[string]interface{}{
				"seq":        int64(i),
				"source":     l.Source,
				"target":     l.Target,
				"relation":   l.Relation,
				"confidence": string(l.Confidence),
				"evidence":   l.Evidence,
			})
		}
		if _, err := s.driver.ExecuteQuery(ctx, SaveLinksQuery, map[string]interface{}{"links": links}); err != nil {
			return fmt.Errorf("failed to save links: %w", err)
		}
	}

	s.logger.Info("Saved graph",
		zap.Int("entities", len(export.Entities)),
		zap.Int("links", len(export.Links)))
	return nil
}

// SaveDocumentMentions records which canonical entities a document mentions.
// Mentions without a canonical_id are skipped.
func (s *GraphStore) SaveDocumentMentions(ctx context.Context, record model.DocumentRecord) error {
	mentions := make([]map[string]interface{}, 0, len(record.Mentions))
	for _, m := range record.Mentions {
		cid := m.MetaString(model.MetaCanonicalID)
		if cid == "" {
			continue
		}
		pages := make([]interface{}, 0)
		for _, p := range m.Pages() {
			pages = append(pages, int64(p))
		}
		mentions = append(mentions, map[string]interface{}{
			"canonical_id":     cid,
			"raw_text":         m.RawText,
			"confidence":       m.Confidence,
			"pages":            pages,
			"occurrence_count": int64(m.OccurrenceCount()),
		})
	}

	params := map[string]interface{}{
		"doc_id":       record.ID,
		"context":      record.Context,
		"processed_at": record.ProcessedAt.UTC().Format(time.RFC3339),
		"mentions":     mentions,
	}
	if _, err := s.driver.ExecuteQuery(ctx, SaveDocumentMentionsQuery, params); err != nil {
		return fmt.Errorf("failed to save mentions for document %s: %w", record.ID, err)
	}
	return nil
}

// LoadGraph reads back every canonical entity and link.
func (s *GraphStore) LoadGraph(ctx context.Context) (model.GraphExport, error) {
	out := model.GraphExport{Entities: []model.ExportedEntity{}, Links: []model.Link{}}

	res, err := s.driver.ExecuteQuery(ctx, GetCanonicalNodesQuery, nil)
	if err != nil {
		return out, fmt.Errorf("failed to load canonical entities: %w", err)
	}
	for _, r := range res.Records {
		out.Entities = append(out.Entities, model.ExportedEntity{
			ID:         recordString(r, "id"),
			Type:       model.EntityType(recordString(r, "type")),
			Name:       recordString(r, "name"),
			Aliases:    recordStrings(r, "aliases"),
			Confidence: recordFloat(r, "confidence"),
		})
	}

	res, err = s.driver.ExecuteQuery(ctx, GetLinksQuery, nil)
	if err != nil {
		return out, fmt.Errorf("failed to load links: %w", err)
	}
	for _, r := range res.Records {
		out.Links = append(out.Links, model.Link{
			Source:     recordString(r, "source"),
			Target:     recordString(r, "target"),
			Relation:   recordString(r, "relation"),
			Confidence: model.ConfidenceLevel(recordString(r, "confidence")),
			Evidence:   recordString(r, "evidence"),
		})
	}
	return out, nil
}

func recordString(r *neo4j.Record, key string) string {
	v, _ := r.Get(key)
	s, _ := v.(string)
	return s
}

func recordFloat(r *neo4j.Record, key string) float64 {
	v, _ := r.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func recordStrings(r *neo4j.Record, key string) []string {
	v, _ := r.Get(key)
	out := []string{}
	switch vals := v.(type) {
	case []interface{}:
		for _, a := range vals {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, vals...)
	}
	return out
}
