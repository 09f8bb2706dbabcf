package extraction

import (
	"encoding/json"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/common"
	"github.com/openfoia/foiagraph/internal/core/model"
)

// chunkResponse is the JSON shape requested from the backend. Elements are
// decoded one at a time so a malformed entry only costs itself.
type chunkResponse struct {
	Entities      []json.RawMessage `json:"entities"`
	Relationships []json.RawMessage `json:"relationships"`
}

type rawEntity struct {
	RawText        common.FlexibleString `json:"raw_text"`
	Normalized     common.FlexibleString `json:"normalized"`
	NormalizedText common.FlexibleString `json:"normalized_text"`
	Type           common.FlexibleString `json:"type"`
	Confidence     common.FlexibleFloat  `json:"confidence"`
	Context        common.FlexibleString `json:"context"`
}

type rawRelationship struct {
	Source   common.FlexibleString `json:"source"`
	Target   common.FlexibleString `json:"target"`
	Relation common.FlexibleString `json:"relation"`
	Evidence common.FlexibleString `json:"evidence"`
}

// toEntity normalises one backend entity. It reports false for types outside
// the vocabulary and for entries with no text at all.
func (r rawEntity) toEntity(page *int) (*model.ExtractedEntity, bool) {
	t, ok := model.ParseEntityType(string(r.Type))
	if !ok {
		return nil, false
	}

	raw := strings.TrimSpace(string(r.RawText))
	norm := common.CollapseWhitespace(string(r.Normalized))
	if norm == "" {
		norm = common.CollapseWhitespace(string(r.NormalizedText))
	}
	if norm == "" {
		norm = common.CollapseWhitespace(raw)
	}
	if raw == "" {
		raw = norm
	}
	if norm == "" {
		return nil, false
	}

	conf := defaultConfidence
	if r.Confidence.Set {
		conf = clamp01(r.Confidence.Value)
	}

	return &model.ExtractedEntity{
		EntityType:     t,
		RawText:        raw,
		NormalizedText: norm,
		Confidence:     conf,
		Context:        strings.TrimSpace(string(r.Context)),
		PageNumber:     copyPage(page),
	}, true
}

func (r rawRelationship) toAssertion(page *int) (model.RelationshipAssertion, bool) {
	src := common.CollapseWhitespace(string(r.Source))
	tgt := common.CollapseWhitespace(string(r.Target))
	rel := strings.TrimSpace(string(r.Relation))
	if src == "" || tgt == "" || rel == "" {
		return model.RelationshipAssertion{}, false
	}
	return model.RelationshipAssertion{
		Source:     src,
		Target:     tgt,
		Relation:   rel,
		Evidence:   strings.TrimSpace(string(r.Evidence)),
		PageNumber: copyPage(page),
	}, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func copyPage(page *int) *int {
	if page == nil {
		return nil
	}
	p := *page
	return &p
}
