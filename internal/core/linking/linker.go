// Package linking resolves entity mentions from many documents to canonical
// entities and records directed links between them.
package linking

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/metrics"
	"go.uber.org/zap"
)

// ErrNotEmpty is returned when restoring into a linker that already holds
// canonical entities or links.
var ErrNotEmpty = errors.New("linker already holds entities")

// minFuzzyLen is the rune length both strings must exceed before a
// containment match is accepted.
const minFuzzyLen = 3

type Options struct {
	// IDGenerator returns fresh canonical ids. Defaults to uuid v4 strings.
	IDGenerator func() string
	Logger      *zap.Logger
}

// Linker owns the canonical entity registry. All mutating calls are
// serialized; canonicals are scanned in creation order.
type Linker struct {
	mu         sync.Mutex
	canonicals []*model.CanonicalEntity
	byID       map[string]*model.CanonicalEntity
	links      []model.Link
	newID      func() string
	logger     *zap.Logger
}

func New(opts Options) *Linker {
	newID := opts.IDGenerator
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linker{
		byID:   make(map[string]*model.CanonicalEntity),
		newID:  newID,
		logger: logger,
	}
}

// AddEntities resolves each mention in order, stamping source_doc and
// canonical_id into its metadata. It returns the canonical ids in input order.
func (l *Linker) AddEntities(entities []*model.ExtractedEntity, sourceDocID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		e.SetMeta(model.MetaSourceDoc, sourceDocID)
		id := l.findOrCreate(e)
		e.SetMeta(model.MetaCanonicalID, id)
		ids = append(ids, id)
	}
	metrics.CanonicalEntities.Set(float64(len(l.canonicals)))
	return ids
}

// FindOrCreate resolves a single mention and returns its canonical id.
func (l *Linker) FindOrCreate(e *model.ExtractedEntity) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.findOrCreate(e)
	metrics.CanonicalEntities.Set(float64(len(l.canonicals)))
	return id
}

func (l *Linker) findOrCreate(e *model.ExtractedEntity) string {
	candidate := strings.ToLower(strings.TrimSpace(e.NormalizedText))

	// Mentions outside the vocabulary never join an existing group.
	if e.EntityType.IsValid() {
		if c := l.exactMatch(e.EntityType, candidate); c != nil {
			c.AddAlias(e.RawText)
			if e.Confidence > c.Confidence {
				c.Confidence = e.Confidence
			}
			return c.ID
		}
		if c := l.fuzzyMatch(e.EntityType, candidate); c != nil {
			c.AddAlias(e.RawText)
			l.logger.Debug("Fuzzy-linked mention",
				zap.String("mention", e.NormalizedText),
				zap.String("canonical", c.NormalizedName),
				zap.String("canonical_id", c.ID))
			return c.ID
		}
	} else {
		l.logger.Warn("Mention with unrecognised type gets its own canonical",
			zap.String("type", string(e.EntityType)),
			zap.String("mention", e.NormalizedText))
	}

	c := &model.CanonicalEntity{
		ID:             l.newID(),
		Type:           e.EntityType,
		NormalizedName: e.NormalizedText,
		Aliases:        []string{e.RawText},
		Confidence:     e.Confidence,
		FirstSeen:      e.MetaString(model.MetaSourceDoc),
	}
	l.canonicals = append(l.canonicals, c)
	l.byID[c.ID] = c
	return c.ID
}

func (l *Linker) exactMatch(t model.EntityType, candidate string) *model.CanonicalEntity {
	for _, c := range l.canonicals {
		if c.Type != t {
			continue
		}
		if canonicalKey(c) == candidate {
			return c
		}
	}
	return nil
}

func (l *Linker) fuzzyMatch(t model.EntityType, candidate string) *model.CanonicalEntity {
	if utf8.RuneCountInString(candidate) <= minFuzzyLen {
		return nil
	}
	for _, c := range l.canonicals {
		if c.Type != t {
			continue
		}
		key := canonicalKey(c)
		if utf8.RuneCountInString(key) <= minFuzzyLen {
			continue
		}
		if strings.Contains(key, candidate) || strings.Contains(candidate, key) {
			return c
		}
	}
	return nil
}

func canonicalKey(c *model.CanonicalEntity) string {
	return strings.ToLower(strings.TrimSpace(c.NormalizedName))
}

// LinkEntities appends a directed link. Ids are not checked and duplicate
// links are kept.
func (l *Linker) LinkEntities(sourceID, targetID, relation string, level model.ConfidenceLevel, evidence string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.links = append(l.links, model.Link{
		Source:     sourceID,
		Target:     targetID,
		Relation:   relation,
		Confidence: level,
		Evidence:   evidence,
	})
	metrics.LinksTotal.Inc()
}

// ExportGraph returns a snapshot that shares no memory with the registry.
func (l *Linker) ExportGraph() model.GraphExport {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := model.GraphExport{
		Entities: make([]model.ExportedEntity, 0, len(l.canonicals)),
		Links:    make([]model.Link, len(l.links)),
	}
	for _, c := range l.canonicals {
		aliases := make([]string, len(c.Aliases))
		copy(aliases, c.Aliases)
		out.Entities = append(out.Entities, model.ExportedEntity{
			ID:         c.ID,
			Type:       c.Type,
			Name:       c.NormalizedName,
			Aliases:    aliases,
			Confidence: c.Confidence,
		})
	}
	copy(out.Links, l.links)
	return out
}

// Restore seeds an empty linker from a previously exported graph. Entity
// order in graph becomes the scan order for later matching. Entities with a
// missing or repeated id are skipped.
func (l *Linker) Restore(graph model.GraphExport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.canonicals) > 0 || len(l.links) > 0 {
		return ErrNotEmpty
	}
	for _, e := range graph.Entities {
		if e.ID == "" || l.byID[e.ID] != nil {
			l.logger.Warn("Skipping restored entity with missing or duplicate id", zap.String("id", e.ID))
			continue
		}
		c := &model.CanonicalEntity{
			ID:             e.ID,
			Type:           e.Type,
			NormalizedName: e.Name,
			Aliases:        append([]string{}, e.Aliases...),
			Confidence:     e.Confidence,
		}
		l.canonicals = append(l.canonicals, c)
		l.byID[c.ID] = c
	}
	l.links = append(l.links, graph.Links...)

	metrics.CanonicalEntities.Set(float64(len(l.canonicals)))
	l.logger.Info("Restored graph",
		zap.Int("entities", len(l.canonicals)),
		zap.Int("links", len(l.links)))
	return nil
}

// Canonical returns a copy of the canonical entity with the given id.
func (l *Linker) Canonical(id string) (model.CanonicalEntity, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.byID[id]
	if !ok {
		return model.CanonicalEntity{}, false
	}
	cp := *c
	cp.Aliases = append([]string(nil), c.Aliases...)
	return cp, true
}

// Len returns the number of canonical entities.
func (l *Linker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.canonicals)
}
