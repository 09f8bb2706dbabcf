package extraction

import (
	"fmt"
	"strings"

	"github.com/openfoia/foiagraph/internal/core/model"
)

// DefaultPromptTemplate takes, in order: document context, page label, chunk text.
var DefaultPromptTemplate = strings.Replace(promptBody, relationsMarker, relationList(), 1)

const relationsMarker = "{{relations}}"

var relationHints = map[string]string{
	model.RelWorksFor:         "person -> organization",
	model.RelLocatedAt:        "entity -> location",
	model.RelCommunicatedWith: "person <-> person",
	model.RelMentionedIn:      "entity -> document",
	model.RelDated:            "event -> date",
	model.RelCost:             "item -> money",
}

func relationList() string {
	var b strings.Builder
	for _, rel := range model.Relations {
		fmt.Fprintf(&b, "- %q", rel)
		if hint, ok := relationHints[rel]; ok {
			fmt.Fprintf(&b, " (%s)", hint)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

const promptBody = `Analyze this FOIA document excerpt and extract all entities and relationships.

CONTEXT: %s
PAGE: %s

DOCUMENT TEXT:
%s

Extract the following entity types:
- PERSON: Names of individuals (include titles/roles if mentioned)
- ORGANIZATION: Companies, agencies, departments, groups
- LOCATION: Cities, countries, facilities, regions
- DATE: Specific dates or date ranges
- MONEY: Dollar amounts, budgets, costs
- DOCUMENT_ID: Case numbers, file numbers, reference IDs
- PHONE: Phone numbers
- EMAIL: Email addresses
- ADDRESS: Street or postal addresses

For each entity, provide:
1. raw_text: Exactly as it appears
2. normalized: Cleaned/standardized version
3. type: Entity type from above
4. confidence: 0.0-1.0 based on clarity
5. context: Surrounding sentence for verification

Also identify RELATIONSHIPS between entities:
{{relations}}

Return JSON only:
{
  "entities": [
    {"raw_text": "...", "normalized": "...", "type": "PERSON", "confidence": 0.9, "context": "..."}
  ],
  "relationships": [
    {"source": "...", "target": "...", "relation": "works_for", "evidence": "..."}
  ]
}
`

const (
	defaultDocContext = "FOIA response document"
	unknownPage       = "Unknown"
)
