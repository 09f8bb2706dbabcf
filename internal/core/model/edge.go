package model

import (
	"fmt"
	"strings"
)

// ConfidenceLevel grades the evidence behind a link.
type ConfidenceLevel string

const (
	ConfidenceConfirmed  ConfidenceLevel = "confirmed"  // direct evidence
	ConfidenceProbable   ConfidenceLevel = "probable"   // strong circumstantial
	ConfidencePossible   ConfidenceLevel = "possible"   // weak link
	ConfidenceUnresolved ConfidenceLevel = "unresolved"
)

// Rank orders levels: confirmed > probable > possible > unresolved.
// Unknown levels rank below unresolved.
func (l ConfidenceLevel) Rank() int {
	switch l {
	case ConfidenceConfirmed:
		return 4
	case ConfidenceProbable:
		return 3
	case ConfidencePossible:
		return 2
	case ConfidenceUnresolved:
		return 1
	}
	return 0
}

// ParseConfidenceLevel accepts any casing of the four level names.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	l := ConfidenceLevel(strings.ToLower(strings.TrimSpace(s)))
	if l.Rank() == 0 {
		return "", fmt.Errorf("unknown confidence level %q", s)
	}
	return l, nil
}

// Link is a directed edge between two canonical entities.
type Link struct {
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	Relation   string          `json:"relation"`
	Confidence ConfidenceLevel `json:"confidence"`
	Evidence   string          `json:"evidence"`
}
