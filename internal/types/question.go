// Package types provides type definitions for structured data used throughout the interview prep system.
package types

import (
	"fmt"
	"strings"
)

// Category is the interview question category tag.
type Category string

// Category values produced by question generation.
const (
	CategoryBehavioral   Category = "Behavioral"
	CategoryTechnical    Category = "Technical"
	CategorySystemDesign Category = "System Design"
	CategoryCulturalFit  Category = "Cultural Fit"
)

// Valid reports whether the category is one of the known tags.
func (c Category) Valid() bool {
	switch c {
	case CategoryBehavioral, CategoryTechnical, CategorySystemDesign, CategoryCulturalFit:
		return true
	}
	return false
}

// Provenance records where a generated question is modeled from.
type Provenance string

// Provenance values produced by question generation.
const (
	ProvenanceCommunity       Provenance = "Community"
	ProvenanceResumeProbe     Provenance = "Resume Probe"
	ProvenanceRoleRequirement Provenance = "Role Requirement"
)

// Valid reports whether the provenance is one of the known tags.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceCommunity, ProvenanceResumeProbe, ProvenanceRoleRequirement:
		return true
	}
	return false
}

// QuestionItem is a single entry of a question bank.
// Type and Source are advisory: values outside the known set are kept as returned.
type QuestionItem struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Type       Category   `json:"type"`
	Source     Provenance `json:"source"`
	Hint       string     `json:"hint"`
	Bookmarked bool       `json:"isBookmarked,omitempty"`
	UserAnswer string     `json:"userAnswer,omitempty"`
	AIFeedback string     `json:"aiFeedback,omitempty"`
}

// HasAnswer reports whether the user drafted a non-empty answer.
func (q QuestionItem) HasAnswer() bool {
	return q.UserAnswer != ""
}

// QuestionDescriptor is one element of a question generation response.
type QuestionDescriptor struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Hint     string `json:"hint"`
}

// ToItem converts the descriptor into a bank item with the given id.
func (d QuestionDescriptor) ToItem(id string) QuestionItem {
	return QuestionItem{
		ID:       id,
		Question: d.Question,
		Type:     Category(d.Type),
		Source:   Provenance(d.Source),
		Hint:     d.Hint,
	}
}

// ContextKey identifies a question bank and interview framing.
// Matching is exact: case and whitespace are significant.
type ContextKey struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

// IsZero reports whether no context has been selected.
func (k ContextKey) IsZero() bool {
	return k.Company == "" && k.Role == ""
}

// Complete reports whether both company and role are set.
func (k ContextKey) Complete() bool {
	return k.Company != "" && k.Role != ""
}

// keyEscaper escapes the separator so that distinct pairs never share a key.
var keyEscaper = strings.NewReplacer(`\`, `\\`, "_", `\_`)

// StorageKey returns the persisted key under which the bank is stored.
// Underscores and backslashes inside company and role are backslash-escaped.
func (k ContextKey) StorageKey() string {
	return fmt.Sprintf("prep_questions_%s_%s", keyEscaper.Replace(k.Company), keyEscaper.Replace(k.Role))
}

func (k ContextKey) String() string {
	return fmt.Sprintf("%s / %s", k.Company, k.Role)
}
