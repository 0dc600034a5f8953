package gorm

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	pgvec "github.com/pgvector/pgvector-go"

	"github.com/reviewlens/topicforge/pkg/models"
)

// Structured stores the extraction payload as a JSON text column.
type Structured models.StructuredOpinion

// Value implements driver.Valuer.
func (s Structured) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner. Malformed payloads scan as the zero value;
// load-time normalization then applies the defaults.
func (s *Structured) Scan(src interface{}) error {
	if src == nil {
		*s = Structured{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if err := json.Unmarshal(data, s); err != nil {
			*s = Structured{}
		}
		return nil
	case string:
		if err := json.Unmarshal([]byte(data), s); err != nil {
			*s = Structured{}
		}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Structured", src)
	}
}

// Concept is the row for an extracted opinion unit. Rows are created by the
// upstream extraction pipeline; this service only updates the
// topic_id/assigned_at pair, always together.
type Concept struct {
	ID         string `gorm:"primaryKey;type:text"`
	ReviewID   string `gorm:"index:idx_concepts_review;not null"`
	LocationID string `gorm:"index:idx_concepts_location;index:idx_concepts_pending,priority:1;not null"`
	Label      string `gorm:"type:text;not null"`
	Structured Structured `gorm:"type:text"`
	Rating     sql.NullFloat64
	TopicID    sql.NullString `gorm:"index:idx_concepts_topic;index:idx_concepts_pending,priority:2"`
	AssignedAt sql.NullTime
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_concepts_created"`
}

// TableName returns the table name for Concept.
func (Concept) TableName() string { return "concepts" }

// toDomain maps a row to the domain type, applying load-time defaults once
// so downstream code never re-validates the structured payload or rating.
func (c *Concept) toDomain() *models.Concept {
	out := &models.Concept{
		ID:         c.ID,
		ReviewID:   c.ReviewID,
		LocationID: c.LocationID,
		Label:      c.Label,
		Structured: models.StructuredOpinion(c.Structured),
	}
	out.Structured.Normalize(c.Label)

	if c.Rating.Valid {
		r := c.Rating.Float64
		out.Rating = models.CleanRating(&r)
	}
	if c.TopicID.Valid {
		id := c.TopicID.String
		out.TopicID = &id
	}
	if c.AssignedAt.Valid {
		at := c.AssignedAt.Time
		out.AssignedAt = &at
	}
	return out
}

// Topic is the row for a persisted topic. ConceptCount and AvgRating are
// creation-time snapshots and are never updated. Label is indexed but
// deliberately not unique per location: overlapping runs may create
// near-duplicate topics, and the embedding-based historical merge reconciles
// them on a later run.
type Topic struct {
	ID           string `gorm:"primaryKey;type:text"`
	LocationID   string `gorm:"index:idx_topics_location;not null"`
	Label        string `gorm:"type:text;index:idx_topics_label;not null"`
	Description  sql.NullString
	Model        string `gorm:"type:text;not null"`
	ConceptCount int    `gorm:"not null"`
	AvgRating    sql.NullFloat64
	IsStable     bool `gorm:"default:false"`
	// Embedding persists the creation-time vector so later runs can seed
	// the merge pool. NULL for topics whose candidate had no vector;
	// those can never be merged into.
	Embedding *pgvec.Vector `gorm:"type:vector"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index:idx_topics_created"`
}

// TableName returns the table name for Topic.
func (Topic) TableName() string { return "topics" }

func (t *Topic) toDomain() *models.Topic {
	out := &models.Topic{
		ID:           t.ID,
		LocationID:   t.LocationID,
		Label:        t.Label,
		Model:        t.Model,
		ConceptCount: t.ConceptCount,
		IsStable:     t.IsStable,
		CreatedAt:    t.CreatedAt,
	}
	if t.Embedding != nil {
		out.Embedding = t.Embedding.Slice()
	}
	if t.Description.Valid {
		out.Description = t.Description.String
	}
	if t.AvgRating.Valid {
		r := t.AvgRating.Float64
		out.AvgRating = models.CleanRating(&r)
	}
	return out
}

func topicRow(t *models.Topic) *Topic {
	row := &Topic{
		ID:           t.ID,
		LocationID:   t.LocationID,
		Label:        t.Label,
		Model:        t.Model,
		ConceptCount: t.ConceptCount,
		IsStable:     t.IsStable,
		CreatedAt:    t.CreatedAt,
	}
	if len(t.Embedding) > 0 {
		v := pgvec.NewVector(t.Embedding)
		row.Embedding = &v
	}
	if t.Description != "" {
		row.Description = sql.NullString{String: t.Description, Valid: true}
	}
	if r := models.CleanRating(t.AvgRating); r != nil {
		row.AvgRating = sql.NullFloat64{Float64: *r, Valid: true}
	}
	return row
}
