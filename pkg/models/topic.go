package models

import "time"

// Topic is a persisted, named grouping of semantically related concepts for
// one location. ConceptCount and AvgRating are snapshots taken at creation
// time and are never recomputed. Topics are never deleted, merged away, or
// renamed; "merging" a candidate only redirects its concepts to a surviving
// topic's id.
type Topic struct {
	ID           string
	LocationID   string
	Label        string
	Description  string
	Model        string
	ConceptCount int
	AvgRating    *float64
	IsStable     bool
	Embedding    []float32
	CreatedAt    time.Time
}
