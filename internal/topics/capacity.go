package topics

// Capacity ceilings by all-time concept volume for a location.
const (
	smallLocationMaxTopics  = 10
	mediumLocationMaxTopics = 12
	largeLocationMaxTopics  = 15

	smallLocationConcepts  = 50
	mediumLocationConcepts = 150
)

// Capacity is the soft topic budget for a location. Merging into an existing
// topic never consumes a slot; only creating a brand-new topic does.
type Capacity struct {
	MaxTopics      int
	AvailableSlots int
}

// PlanCapacity derives the topic ceiling from the location's all-time concept
// count (not just the pending batch) and the number of already-persisted
// topics.
func PlanCapacity(existingTopics int, totalConcepts int64) Capacity {
	maxTopics := smallLocationMaxTopics
	switch {
	case totalConcepts > mediumLocationConcepts:
		maxTopics = largeLocationMaxTopics
	case totalConcepts > smallLocationConcepts:
		maxTopics = mediumLocationMaxTopics
	}

	slots := maxTopics - existingTopics
	if slots < 0 {
		slots = 0
	}

	return Capacity{MaxTopics: maxTopics, AvailableSlots: slots}
}
