package gorm

import (
	"context"
	"fmt"

	"github.com/reviewlens/topicforge/internal/topics"
	"github.com/reviewlens/topicforge/pkg/models"
)

// TopicStore provides topic reads and creation. Topics are never updated,
// merged away, or deleted by this service.
type TopicStore struct {
	store *Store
}

// Compile-time check that TopicStore satisfies the engine's interface.
var _ topics.TopicStore = (*TopicStore)(nil)

// NewTopicStore creates a topic store wrapper.
func NewTopicStore(store *Store) *TopicStore {
	return &TopicStore{store: store}
}

// ListByLocation returns every persisted topic for the location, including
// stored embeddings, oldest first.
func (s *TopicStore) ListByLocation(ctx context.Context, locationID string) ([]*models.Topic, error) {
	var rows []Topic
	err := s.store.DB.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	out := make([]*models.Topic, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Create inserts a new topic row.
func (s *TopicStore) Create(ctx context.Context, topic *models.Topic) error {
	if err := s.store.DB.WithContext(ctx).Create(topicRow(topic)).Error; err != nil {
		return fmt.Errorf("create topic %s: %w", topic.ID, err)
	}
	return nil
}
