package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

func allocRegion() region.Region {
	return region.Region{Cities: map[string]region.City{
		"Jaipur":  {Name: "Jaipur", TypicalDays: 3, DailyCost: map[string]int{"mid-range": 4000}},
		"Udaipur": {Name: "Udaipur", TypicalDays: 2, DailyCost: map[string]int{"mid-range": 4500}},
		"Jodhpur": {Name: "Jodhpur", TypicalDays: 2, DailyCost: map[string]int{"mid-range": 3500}},
	}}
}

func TestAllocateDaysSumsExactly(t *testing.T) {
	p := DefaultPolicy()
	r := allocRegion()

	cases := []struct {
		name      string
		cities    []string
		totalDays int
	}{
		{"three cities week", []string{"Jaipur", "Udaipur", "Jodhpur"}, 7},
		{"two cities short", []string{"Jaipur", "Udaipur"}, 4},
		{"two cities long", []string{"Jaipur", "Jodhpur"}, 10},
		{"single city", []string{"Udaipur"}, 5},
		{"three cities five days", []string{"Jaipur", "Udaipur", "Jodhpur"}, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			allocation := p.AllocateDays(c.cities, c.totalDays, r)
			require.Len(t, allocation, len(c.cities))

			sum := 0
			for _, city := range c.cities {
				days := allocation[city]
				assert.GreaterOrEqual(t, days, 1, "%s must get at least one day", city)
				sum += days
			}
			assert.Equal(t, c.totalDays, sum, "allocation must sum to the trip duration")
		})
	}
}

func TestAllocateDaysProportional(t *testing.T) {
	p := DefaultPolicy()
	allocation := p.AllocateDays([]string{"Jaipur", "Udaipur", "Jodhpur"}, 7, allocRegion())

	// Jaipur's typical-days weight (3 of 7) earns it the largest share
	assert.GreaterOrEqual(t, allocation["Jaipur"], allocation["Udaipur"])
}

func TestAllocateDaysLowDurationDegrades(t *testing.T) {
	p := DefaultPolicy()
	allocation := p.AllocateDays([]string{"Jaipur", "Udaipur", "Jodhpur"}, 1, allocRegion())

	for city, days := range allocation {
		assert.Equal(t, 1, days, "degenerate path gives %s a flat day", city)
	}
}

func TestAllocateDaysEmpty(t *testing.T) {
	p := DefaultPolicy()
	assert.Empty(t, p.AllocateDays(nil, 5, allocRegion()))
}

func TestEstimateCost(t *testing.T) {
	p := DefaultPolicy()
	r := allocRegion()
	users := []session.Preference{{Name: "asha", Accommodation: region.TierMidRange}}
	allocation := map[string]int{"Jaipur": 2, "Udaipur": 1}

	// (4000+2000)*2 + (4500+2000)*1 + one transition at 2000
	got := p.EstimateCost(users, []string{"Jaipur", "Udaipur"}, allocation, r)
	assert.Equal(t, 20500, got)
}

func TestEstimateCostLookupMiss(t *testing.T) {
	p := DefaultPolicy()
	users := []session.Preference{{Name: "asha", Accommodation: region.TierMidRange}}
	allocation := map[string]int{"Atlantis": 2}

	// unknown city falls back to the default daily cost
	got := p.EstimateCost(users, []string{"Atlantis"}, allocation, allocRegion())
	assert.Equal(t, (region.DefaultDailyCost+2000)*2, got)
}
