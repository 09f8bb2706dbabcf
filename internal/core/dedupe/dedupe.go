// Package dedupe collapses repeated mentions found across the chunks of one
// document into a single representative per (type, normalized text).
package dedupe

import (
	"sort"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/model"
)

type groupKey struct {
	entityType model.EntityType
	text       string
}

// MergeEntities groups entities by type and lowercased normalized text and
// keeps the highest-confidence member of each group, earliest on ties.
// The representative is a copy carrying the group's occurrence_count and the
// sorted set of pages it was seen on. Groups appear in first-seen order.
// Merging an already merged list returns an equivalent list.
func MergeEntities(entities []*model.ExtractedEntity) []*model.ExtractedEntity {
	var order []groupKey
	groups := make(map[groupKey][]*model.ExtractedEntity)

	for _, e := range entities {
		if e == nil {
			continue
		}
		key := groupKey{entityType: e.EntityType, text: strings.ToLower(e.NormalizedText)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	merged := make([]*model.ExtractedEntity, 0, len(order))
	for _, key := range order {
		group := groups[key]

		best := group[0]
		count := 0
		pageSet := make(map[int]struct{})
		for _, e := range group {
			if e.Confidence > best.Confidence {
				best = e
			}
			count += e.OccurrenceCount()
			for _, p := range e.Pages() {
				pageSet[p] = struct{}{}
			}
			if e.PageNumber != nil {
				pageSet[*e.PageNumber] = struct{}{}
			}
		}

		pages := make([]int, 0, len(pageSet))
		for p := range pageSet {
			pages = append(pages, p)
		}
		sort.Ints(pages)

		rep := cloneEntity(best)
		rep.SetMeta(model.MetaOccurrenceCount, count)
		rep.SetMeta(model.MetaPages, pages)
		merged = append(merged, rep)
	}

	return merged
}

func cloneEntity(e *model.ExtractedEntity) *model.ExtractedEntity {
	c := *e
	if e.PageNumber != nil {
		p := *e.PageNumber
		c.PageNumber = &p
	}
	c.Metadata = make(map[string]any, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
