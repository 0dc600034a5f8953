package topics

import "github.com/reviewlens/topicforge/pkg/similarity"

// DefaultHistMergeThreshold is the cosine cutoff above which a candidate is
// folded into an already-persisted topic instead of creating a new one.
const DefaultHistMergeThreshold = 0.88

// PoolEntry is one topic a candidate may merge into. Embedding is nil for
// topics persisted without a vector; those can never be matched into.
type PoolEntry struct {
	ID        string
	Label     string
	Embedding []float32
}

// TopicPool is the set of merge targets for a run. It is an explicit value
// threaded through the historical merge loop — seeded from the location's
// persisted topics and grown as the run creates new ones, so a later, smaller
// candidate can still merge into a topic the same run just created.
type TopicPool struct {
	entries []PoolEntry
}

// NewTopicPool seeds a pool from persisted topics.
func NewTopicPool(entries []PoolEntry) *TopicPool {
	return &TopicPool{entries: entries}
}

// Add appends a newly created topic to the pool.
func (p *TopicPool) Add(e PoolEntry) {
	p.entries = append(p.entries, e)
}

// Len returns the number of merge targets.
func (p *TopicPool) Len() int { return len(p.entries) }

// BestMatch returns the pool entry with the highest cosine similarity to the
// embedding, with its score. The score is 0 when the embedding is nil or the
// pool is empty.
func (p *TopicPool) BestMatch(embedding []float32) (PoolEntry, float64) {
	var best PoolEntry
	bestScore := 0.0

	if len(embedding) == 0 {
		return best, 0
	}

	for _, e := range p.entries {
		score := similarity.Cosine(embedding, e.Embedding)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	return best, bestScore
}
