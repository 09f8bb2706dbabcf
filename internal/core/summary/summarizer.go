// Package summary renders the human-readable digest of one extraction run.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/model"
)

const (
	maxPerType        = 10
	maxRelationships  = 20
	summaryHeaderLine = "## Entity Extraction Summary\n"
)

// Summarize groups entities by type in first-appearance order and lists the
// top entities of each type by descending confidence, followed by up to
// twenty relationship assertions.
func Summarize(entities []*model.ExtractedEntity, relationships []model.RelationshipAssertion) string {
	var order []model.EntityType
	byType := make(map[model.EntityType][]*model.ExtractedEntity)
	for _, e := range entities {
		if e == nil {
			continue
		}
		if _, ok := byType[e.EntityType]; !ok {
			order = append(order, e.EntityType)
		}
		byType[e.EntityType] = append(byType[e.EntityType], e)
	}

	lines := []string{summaryHeaderLine}

	for _, t := range order {
		group := byType[t]
		lines = append(lines, fmt.Sprintf("### %ss (%d)", typeTitle(t), len(group)))

		sorted := make([]*model.ExtractedEntity, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Confidence > sorted[j].Confidence
		})

		for i, e := range sorted {
			if i == maxPerType {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s [%.0f%%]", e.NormalizedText, e.Confidence*100))
		}
		if len(group) > maxPerType {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(group)-maxPerType))
		}
		lines = append(lines, "")
	}

	if len(relationships) > 0 {
		lines = append(lines, fmt.Sprintf("### Relationships (%d)", len(relationships)))
		for i, r := range relationships {
			if i == maxRelationships {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s → %s → %s", r.Source, r.Relation, r.Target))
		}
	}

	return strings.Join(lines, "\n")
}

// typeTitle turns "PHONE" into "Phone" and "DOCUMENT_ID" into "Document_Id".
func typeTitle(t model.EntityType) string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, "_")
}
