package model

import "strings"

// EntityType is the closed vocabulary of entity kinds the extractor accepts.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityDate         EntityType = "DATE"
	EntityMoney        EntityType = "MONEY"
	EntityDocumentID   EntityType = "DOCUMENT_ID"
	EntityPhone        EntityType = "PHONE"
	EntityEmail        EntityType = "EMAIL"
	EntityAddress      EntityType = "ADDRESS"
)

// AllEntityTypes lists the vocabulary in prompt order.
var AllEntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityLocation,
	EntityDate,
	EntityMoney,
	EntityDocumentID,
	EntityPhone,
	EntityEmail,
	EntityAddress,
}

// IsValid reports whether t is part of the recognized vocabulary.
func (t EntityType) IsValid() bool {
	for _, v := range AllEntityTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseEntityType matches s against the vocabulary case-insensitively.
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// ExtractedEntity is one mention observed in one document chunk.
type ExtractedEntity struct {
	EntityType     EntityType     `json:"entity_type"`
	RawText        string         `json:"raw_text"`
	NormalizedText string         `json:"normalized_text"`
	Confidence     float64        `json:"confidence"`
	Context        string         `json:"context"`
	PageNumber     *int           `json:"page_number,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// SetMeta writes a metadata key, allocating the map on first use.
func (e *ExtractedEntity) SetMeta(key string, value any) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}

// MetaString returns a string metadata value, or "" when absent.
func (e *ExtractedEntity) MetaString(key string) string {
	if s, ok := e.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// RelationshipAssertion is a directed claim between two mentions, identified
// by surface text. Relation labels outside the suggested vocabulary are kept
// as emitted.
type RelationshipAssertion struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Relation   string `json:"relation"`
	Evidence   string `json:"evidence"`
	PageNumber *int   `json:"page_number,omitempty"`
}

// Suggested relation labels included in the extraction prompt.
const (
	RelWorksFor         = "works_for"
	RelLocatedAt        = "located_at"
	RelCommunicatedWith = "communicated_with"
	RelMentionedIn      = "mentioned_in"
	RelDated            = "dated"
	RelCost             = "cost"
)

// Relations lists the suggested relation vocabulary.
var Relations = []string{RelWorksFor, RelLocatedAt, RelCommunicatedWith, RelMentionedIn, RelDated, RelCost}

// ExtractionResult bundles the merged entities of one document.
type ExtractionResult struct {
	Entities      []*ExtractedEntity      `json:"entities"`
	Relationships []RelationshipAssertion `json:"relationships"`
	Summary       string                  `json:"summary"`
	Metadata      ExtractionMetadata      `json:"metadata"`
}

type ExtractionMetadata struct {
	ChunksProcessed int    `json:"chunks_processed"`
	ChunksFailed    int    `json:"chunks_failed"`
	TotalChars      int    `json:"total_chars"`
	Model           string `json:"model"`
}
