package model

// Metadata keys attached to ExtractedEntity during merge and linking.
const (
	MetaOccurrenceCount = "occurrence_count"
	MetaPages           = "pages"
	MetaCanonicalID     = "canonical_id"
	MetaSourceDoc       = "source_doc"
)

// OccurrenceCount returns the merged occurrence count, 1 for an unmerged mention.
func (e *ExtractedEntity) OccurrenceCount() int {
	switch v := e.Metadata[MetaOccurrenceCount].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}

// Pages returns the merged page list, or nil when none was recorded.
func (e *ExtractedEntity) Pages() []int {
	switch v := e.Metadata[MetaPages].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, p := range v {
			if f, ok := p.(float64); ok {
				out = append(out, int(f))
			}
		}
		return out
	}
	return nil
}
