package consensus

import (
	"math"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/scoring"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

// AllocateDays distributes the trip duration across the routed cities in
// proportion to each city's typical-days weight. Half a day per transition
// is reserved for travel before computing the proportional shares; the final
// city absorbs the rounding remainder so the mapping always sums to exactly
// totalDays. Every city gets at least one day. When the reservation leaves
// less than one day, the allocation degrades to a flat day per city.
func (p Policy) AllocateDays(cities []string, totalDays int, r region.Region) map[string]int {
	if len(cities) == 0 {
		return map[string]int{}
	}

	transitions := len(cities) - 1
	travelDays := float64(transitions) * p.TravelDayPerTransition
	available := float64(totalDays) - travelDays

	allocation := make(map[string]int, len(cities))
	if available < 1 {
		for _, city := range cities {
			allocation[city] = 1
		}
		return allocation
	}

	var totalTypical int
	weights := make([]int, len(cities))
	for i, city := range cities {
		weights[i] = r.TypicalDaysFor(city)
		totalTypical += weights[i]
	}

	allocated := 0
	for i, city := range cities[:len(cities)-1] {
		days := int(math.Round(float64(weights[i]) / float64(totalTypical) * available))
		if days < 1 {
			days = 1
		}
		allocation[city] = days
		allocated += days
	}

	last := totalDays - allocated
	if last < 1 {
		last = 1
	}
	allocation[cities[len(cities)-1]] = last
	return allocation
}

// EstimateCost totals the per-person trip cost: for every city the daily
// accommodation cost at the group's dominant tier plus fixed food and
// miscellaneous per-diems, multiplied by the allocated days, plus a flat
// inter-city cost per transition.
func (p Policy) EstimateCost(users []session.Preference, cities []string, allocation map[string]int, r region.Region) int {
	tier := scoring.DominantTier(users)

	total := 0
	for _, city := range cities {
		days := allocation[city]
		if days < 1 {
			days = 1
		}
		daily := region.DefaultDailyCost
		if c, ok := r.City(city); ok {
			daily = c.DailyCostFor(tier)
		}
		total += (daily + p.FoodPerDiem + p.MiscPerDiem) * days
	}
	if len(cities) > 1 {
		total += (len(cities) - 1) * p.TransitionCost
	}
	return total
}
