package model

// ExemptionCitation counts occurrences of one statutory exemption code.
type ExemptionCitation struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// RedactionSummary is attached to a document record.
// VisualRedactionCount is nil when no page imagery was analyzed.
type RedactionSummary struct {
	ExemptionsCited         []ExemptionCitation `json:"exemptions_cited"`
	TotalExemptionCitations int                 `json:"total_exemption_citations"`
	VisualRedactionCount    *int                `json:"visual_redaction_count"`
}

// Codes lists the cited exemption codes in table order.
func (s RedactionSummary) Codes() []string {
	codes := make([]string, 0, len(s.ExemptionsCited))
	for _, c := range s.ExemptionsCited {
		codes = append(codes, c.Code)
	}
	return codes
}
