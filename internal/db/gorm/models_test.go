package gorm

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/topicforge/pkg/models"
)

func TestStructuredMalformedScansToZero(t *testing.T) {
	s := Structured{Summary: "stale"}
	require.NoError(t, s.Scan([]byte(`{not json`)))
	assert.Equal(t, Structured{}, s)
}

func TestStructuredRoundTrip(t *testing.T) {
	s := Structured{
		Summary:  "Atención lenta en caja",
		Entity:   "caja",
		Aspect:   "velocidad",
		Category: "servicio",
		Judgment: models.JudgmentNegative,
	}
	raw, err := s.Value()
	require.NoError(t, err)

	var got Structured
	require.NoError(t, got.Scan(raw))
	assert.Equal(t, s, got)
}

func TestConceptToDomainNormalizes(t *testing.T) {
	row := &Concept{
		ID:         "c-1",
		ReviewID:   "r-1",
		LocationID: "loc-1",
		Label:      "Atención lenta",
		Structured: Structured{Judgment: "meh"},
		Rating:     sql.NullFloat64{Float64: math.NaN(), Valid: true},
	}

	c := row.toDomain()
	assert.Equal(t, "Atención lenta", c.Structured.Summary)
	assert.Equal(t, models.JudgmentNeutral, c.Structured.Judgment)
	assert.Nil(t, c.Rating, "non-finite ratings are dropped at load time")
	assert.Nil(t, c.TopicID)
	assert.False(t, c.Assigned())
}

func TestConceptToDomainAssigned(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &Concept{
		ID:         "c-2",
		LocationID: "loc-1",
		Label:      "Wifi lento",
		Rating:     sql.NullFloat64{Float64: 2.5, Valid: true},
		TopicID:    sql.NullString{String: "t-1", Valid: true},
		AssignedAt: sql.NullTime{Time: at, Valid: true},
	}

	c := row.toDomain()
	require.NotNil(t, c.TopicID)
	assert.Equal(t, "t-1", *c.TopicID)
	require.NotNil(t, c.AssignedAt)
	assert.Equal(t, at, *c.AssignedAt)
	require.NotNil(t, c.Rating)
	assert.Equal(t, 2.5, *c.Rating)
	assert.True(t, c.Assigned())
}

func TestTopicRowRoundTrip(t *testing.T) {
	rating := 3.8
	topic := &models.Topic{
		ID:           "t-1",
		LocationID:   "loc-1",
		Label:        "Atención en caja",
		Description:  "Quejas sobre la velocidad de atención",
		Model:        "text-embedding-3-small",
		ConceptCount: 5,
		AvgRating:    &rating,
		IsStable:     true,
		Embedding:    []float32{0.1, 0.2},
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	got := topicRow(topic).toDomain()
	assert.Equal(t, topic, got)
}

func TestTopicRowEmbeddingMapsToPgvector(t *testing.T) {
	topic := &models.Topic{
		ID:         "t-3",
		LocationID: "loc-1",
		Label:      "Wifi",
		Model:      "text-embedding-3-small",
		Embedding:  []float32{0.25, -1.5, 3},
	}

	row := topicRow(topic)
	require.NotNil(t, row.Embedding)
	assert.Equal(t, []float32{0.25, -1.5, 3}, row.Embedding.Slice())

	got := row.toDomain()
	assert.Equal(t, topic.Embedding, got.Embedding)
}

func TestTopicRowEmptyOptionals(t *testing.T) {
	topic := &models.Topic{
		ID:         "t-2",
		LocationID: "loc-1",
		Label:      "Parking",
		Model:      "text-embedding-3-small",
	}

	row := topicRow(topic)
	assert.False(t, row.Description.Valid)
	assert.False(t, row.AvgRating.Valid)
	assert.Nil(t, row.Embedding)

	got := row.toDomain()
	assert.Equal(t, topic, got)
}
