package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicPool_BestMatch_EmptyPool(t *testing.T) {
	pool := NewTopicPool(nil)

	_, score := pool.BestMatch([]float32{1, 0})
	assert.Zero(t, score)
}

func TestTopicPool_BestMatch_NilEmbedding(t *testing.T) {
	pool := NewTopicPool([]PoolEntry{{ID: "t1", Label: "x", Embedding: []float32{1, 0}}})

	_, score := pool.BestMatch(nil)
	assert.Zero(t, score)
}

func TestTopicPool_BestMatch_PicksHighestScore(t *testing.T) {
	pool := NewTopicPool([]PoolEntry{
		{ID: "far", Label: "far", Embedding: []float32{0, 1}},
		{ID: "near", Label: "near", Embedding: []float32{1, 0.1}},
	})

	best, score := pool.BestMatch([]float32{1, 0})

	assert.Equal(t, "near", best.ID)
	assert.Greater(t, score, 0.9)
}

func TestTopicPool_EntriesWithoutEmbeddingNeverMatch(t *testing.T) {
	pool := NewTopicPool([]PoolEntry{{ID: "t1", Label: "no-vector", Embedding: nil}})

	_, score := pool.BestMatch([]float32{1, 0})
	assert.Zero(t, score)
}

func TestTopicPool_GrowsDuringRun(t *testing.T) {
	pool := NewTopicPool(nil)
	pool.Add(PoolEntry{ID: "new", Label: "created this run", Embedding: []float32{1, 0}})

	best, score := pool.BestMatch([]float32{1, 0})

	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, "new", best.ID)
	assert.InDelta(t, 1.0, score, 1e-9)
}
