package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewlens/topicforge/internal/topics"
	"github.com/reviewlens/topicforge/pkg/models"
)

// ConceptStore provides concept reads and assignment writes.
type ConceptStore struct {
	store *Store
}

// Compile-time check that ConceptStore satisfies the engine's interface.
var _ topics.ConceptStore = (*ConceptStore)(nil)

// NewConceptStore creates a concept store wrapper.
func NewConceptStore(store *Store) *ConceptStore {
	return &ConceptStore{store: store}
}

// FetchUnassigned returns up to limit pending concepts for the location,
// oldest first so long-waiting concepts are considered before new arrivals.
func (s *ConceptStore) FetchUnassigned(ctx context.Context, locationID string, limit int) ([]*models.Concept, error) {
	var rows []Concept
	err := s.store.DB.WithContext(ctx).
		Where("location_id = ? AND topic_id IS NULL", locationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch unassigned concepts: %w", err)
	}

	out := make([]*models.Concept, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// CountByLocation returns the all-time concept count for the location,
// assigned or not.
func (s *ConceptStore) CountByLocation(ctx context.Context, locationID string) (int64, error) {
	var count int64
	err := s.store.DB.WithContext(ctx).
		Model(&Concept{}).
		Where("location_id = ?", locationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count concepts: %w", err)
	}
	return count, nil
}

// AssignTopic links the given concepts to a topic. topic_id and assigned_at
// are always written together; this is the only mutation this service makes
// to concept rows.
func (s *ConceptStore) AssignTopic(ctx context.Context, conceptIDs []string, topicID string, assignedAt time.Time) error {
	if len(conceptIDs) == 0 {
		return nil
	}
	err := s.store.DB.WithContext(ctx).
		Model(&Concept{}).
		Where("id IN ?", conceptIDs).
		Updates(map[string]interface{}{
			"topic_id":    topicID,
			"assigned_at": assignedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("assign %d concepts to topic %s: %w", len(conceptIDs), topicID, err)
	}
	return nil
}
