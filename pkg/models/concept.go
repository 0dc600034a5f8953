// Package models defines the domain types shared across topicforge.
package models

import (
	"math"
	"strings"
	"time"
)

// Judgment is the sentiment polarity of an extracted opinion.
type Judgment string

// Valid judgment values.
const (
	JudgmentPositive Judgment = "positive"
	JudgmentNegative Judgment = "negative"
	JudgmentNeutral  Judgment = "neutral"
)

// StructuredOpinion is the extraction payload attached to a concept.
// Normalize applies defaults once at load time so downstream code never
// re-checks these fields.
type StructuredOpinion struct {
	Summary  string   `json:"summary"`
	Entity   string   `json:"entity,omitempty"`
	Aspect   string   `json:"aspect,omitempty"`
	Category string   `json:"category,omitempty"`
	Judgment Judgment `json:"judgment"`
}

// Normalize fills load-time defaults: a blank summary falls back to the
// concept label, and anything other than positive/negative becomes neutral.
func (s *StructuredOpinion) Normalize(label string) {
	s.Summary = strings.TrimSpace(s.Summary)
	if s.Summary == "" {
		s.Summary = strings.TrimSpace(label)
	}
	switch s.Judgment {
	case JudgmentPositive, JudgmentNegative, JudgmentNeutral:
	default:
		s.Judgment = JudgmentNeutral
	}
}

// Concept is an atomic opinion unit extracted from one review. The upstream
// extraction pipeline owns every field except TopicID/AssignedAt, which this
// service sets exactly once per run, and always together.
type Concept struct {
	ID         string
	ReviewID   string
	LocationID string
	Label      string
	Structured StructuredOpinion
	Rating     *float64
	TopicID    *string
	AssignedAt *time.Time
}

// Assigned reports whether the concept already belongs to a topic.
func (c *Concept) Assigned() bool {
	return c.TopicID != nil
}

// CleanRating rejects non-finite rating values at the ingestion boundary.
// Returns nil for NaN or infinities so they never propagate into averages.
func CleanRating(r *float64) *float64 {
	if r == nil {
		return nil
	}
	if math.IsNaN(*r) || math.IsInf(*r, 0) {
		return nil
	}
	return r
}
