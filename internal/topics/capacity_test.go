package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanCapacity_Boundaries(t *testing.T) {
	cases := []struct {
		name          string
		totalConcepts int64
		wantMax       int
	}{
		{"zero concepts", 0, 10},
		{"at small boundary", 50, 10},
		{"just over small boundary", 51, 12},
		{"at medium boundary", 150, 12},
		{"just over medium boundary", 151, 15},
		{"large location", 10000, 15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PlanCapacity(0, tc.totalConcepts)
			assert.Equal(t, tc.wantMax, got.MaxTopics)
			assert.Equal(t, tc.wantMax, got.AvailableSlots)
		})
	}
}

func TestPlanCapacity_SlotsNeverNegative(t *testing.T) {
	got := PlanCapacity(14, 40) // ceiling 10, already over it

	assert.Equal(t, 10, got.MaxTopics)
	assert.Zero(t, got.AvailableSlots)
}

func TestPlanCapacity_SubtractsExistingTopics(t *testing.T) {
	got := PlanCapacity(7, 200)

	assert.Equal(t, 15, got.MaxTopics)
	assert.Equal(t, 8, got.AvailableSlots)
}
