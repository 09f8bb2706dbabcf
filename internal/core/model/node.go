package model

// CanonicalEntity is the deduplicated real-world referent behind one or more
// mentions. Aliases keep first-observed order.
type CanonicalEntity struct {
	ID             string     `json:"id"`
	Type           EntityType `json:"type"`
	NormalizedName string     `json:"normalized_name"`
	Aliases        []string   `json:"aliases"`
	Confidence     float64    `json:"confidence"`
	FirstSeen      string     `json:"first_seen"`
}

// HasAlias reports whether alias was already recorded.
func (c *CanonicalEntity) HasAlias(alias string) bool {
	for _, a := range c.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// AddAlias records alias once.
func (c *CanonicalEntity) AddAlias(alias string) {
	if !c.HasAlias(alias) {
		c.Aliases = append(c.Aliases, alias)
	}
}

// ExportedEntity is the serialized form of a canonical entity.
type ExportedEntity struct {
	ID         string     `json:"id"`
	Type       EntityType `json:"type"`
	Name       string     `json:"name"`
	Aliases    []string   `json:"aliases"`
	Confidence float64    `json:"confidence"`
}
