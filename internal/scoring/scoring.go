// Package scoring ranks candidate cities against a group of travelers and
// measures how compatible the group itself is.
package scoring

import (
	"math"
	"sort"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

// NeutralScore is returned for degenerate inputs (empty groups, zero
// vectors, unrecognized selections) instead of dividing by zero.
const NeutralScore = 50.0

// Policy holds the budget-fit ladder and the compatibility blend weights.
// The breakpoints have no derivation beyond product judgment, so they stay
// overridable for review and tuning.
type Policy struct {
	FitInRange      float64 `json:"fit_in_range"`
	FitBelowRange   float64 `json:"fit_below_range"`
	FitSlightlyOver float64 `json:"fit_slightly_over"`
	FitStretch      float64 `json:"fit_stretch"`
	FitFar          float64 `json:"fit_far"`
	SlightOverAt    float64 `json:"slight_over_at"`
	StretchAt       float64 `json:"stretch_at"`

	ActivityWeight float64 `json:"activity_weight"`
	BudgetWeight   float64 `json:"budget_weight"`
	DateWeight     float64 `json:"date_weight"`
}

// DefaultPolicy returns the baseline ladder (1.0 / 0.95 / 0.8 / 0.6 / 0.4,
// breakpoints at 1.2x and 1.5x of the group max) and the 50/30/20
// compatibility blend.
func DefaultPolicy() Policy {
	return Policy{
		FitInRange:      1.0,
		FitBelowRange:   0.95,
		FitSlightlyOver: 0.8,
		FitStretch:      0.6,
		FitFar:          0.4,
		SlightOverAt:    1.2,
		StretchAt:       1.5,
		ActivityWeight:  0.5,
		BudgetWeight:    0.3,
		DateWeight:      0.2,
	}
}

// Engine scores cities and groups under one policy.
type Engine struct {
	policy Policy
}

func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

// ActivitySimilarity is the cosine similarity of two activity vectors scaled
// to 0-100. A zero vector on either side yields 0: there is no preference
// direction to compare against.
func ActivitySimilarity(a, b region.ActivityVector) float64 {
	av, bv := a.Floats(), b.Floats()

	var dot, normA, normB float64
	for i := range av {
		dot += av[i] * bv[i]
		normA += av[i] * av[i]
		normB += bv[i] * bv[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)) * 100
}

// GroupBudgetRange intersects every member's budget: the highest minimum and
// the lowest maximum. The range is empty (min > max) when budgets disagree.
func GroupBudgetRange(users []session.Preference) (int, int) {
	if len(users) == 0 {
		return 0, 0
	}
	groupMin, groupMax := users[0].Budget.Min, users[0].Budget.Max
	for _, u := range users[1:] {
		if u.Budget.Min > groupMin {
			groupMin = u.Budget.Min
		}
		if u.Budget.Max < groupMax {
			groupMax = u.Budget.Max
		}
	}
	return groupMin, groupMax
}

// DominantTier is the accommodation tier preferred by a plurality of the
// group. Ties resolve to the tier that reached the winning count first in
// submission order.
func DominantTier(users []session.Preference) string {
	counts := map[string]int{}
	best, bestCount := region.TierMidRange, 0
	for _, u := range users {
		tier := u.Accommodation
		if tier == "" {
			tier = region.TierMidRange
		}
		counts[tier]++
		if counts[tier] > bestCount {
			best, bestCount = tier, counts[tier]
		}
	}
	return best
}

// BudgetFit maps a city's total cost onto a score multiplier given the group
// budget range. A disagreeing (empty) range still yields a reduced, nonzero
// multiplier rather than an error.
func (e *Engine) BudgetFit(groupMin, groupMax, cityTotalCost int) float64 {
	cost := float64(cityTotalCost)
	switch {
	case cityTotalCost >= groupMin && cityTotalCost <= groupMax:
		return e.policy.FitInRange
	case cityTotalCost < groupMin:
		return e.policy.FitBelowRange
	case cost <= float64(groupMax)*e.policy.SlightOverAt:
		return e.policy.FitSlightlyOver
	case cost <= float64(groupMax)*e.policy.StretchAt:
		return e.policy.FitStretch
	default:
		return e.policy.FitFar
	}
}

// GroupCityScore averages every member's activity similarity with the city,
// then applies the budget-fit multiplier for the city's typical stay at the
// group's dominant accommodation tier.
func (e *Engine) GroupCityScore(users []session.Preference, city region.City) float64 {
	if len(users) == 0 {
		return 0
	}

	var total float64
	for _, u := range users {
		total += ActivitySimilarity(u.Activities, city.Activities)
	}
	avg := total / float64(len(users))

	typicalDays := city.TypicalDays
	if typicalDays <= 0 {
		typicalDays = region.DefaultTypicalDays
	}
	cityTotal := city.DailyCostFor(DominantTier(users)) * typicalDays

	groupMin, groupMax := GroupBudgetRange(users)
	return avg * e.BudgetFit(groupMin, groupMax, cityTotal)
}

// RankedCity is one entry of a ranking, best first.
type RankedCity struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// RankCities scores every city in the region for the group and returns them
// sorted by descending score. Cities are visited in name order before the
// sort, so equal scores order deterministically and re-runs are idempotent.
func (e *Engine) RankCities(users []session.Preference, r region.Region) []RankedCity {
	names := make([]string, 0, len(r.Cities))
	for name := range r.Cities {
		names = append(names, name)
	}
	sort.Strings(names)

	ranked := make([]RankedCity, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, RankedCity{
			Name:  name,
			Score: e.GroupCityScore(users, r.Cities[name]),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// GroupCompatibility blends pairwise activity similarity, budget overlap
// health, and date flexibility into one 0-100 score.
func (e *Engine) GroupCompatibility(users []session.Preference) float64 {
	if len(users) == 0 {
		return NeutralScore
	}

	activity := NeutralScore
	if len(users) > 1 {
		var total float64
		var pairs int
		for i := 0; i < len(users); i++ {
			for j := i + 1; j < len(users); j++ {
				total += ActivitySimilarity(users[i].Activities, users[j].Activities)
				pairs++
			}
		}
		activity = total / float64(pairs)
	}

	groupMin, groupMax := GroupBudgetRange(users)
	budget := 100.0
	if groupMax < groupMin {
		gapPercent := float64(groupMin-groupMax) / float64(groupMin) * 100
		budget = math.Max(0, 100-gapPercent)
	}

	flexible := 0
	for _, u := range users {
		if u.Dates.Flexible {
			flexible++
		}
	}
	dates := float64(flexible) / float64(len(users)) * 100

	blended := activity*e.policy.ActivityWeight +
		budget*e.policy.BudgetWeight +
		dates*e.policy.DateWeight
	return math.Round(blended*10) / 10
}

// IndividualSatisfaction is the mean similarity between one member's
// preferences and each selected city. Empty or fully unrecognized selections
// score neutral.
func IndividualSatisfaction(user session.Preference, selected []string, r region.Region) float64 {
	var total float64
	var counted int
	for _, name := range selected {
		city, ok := r.City(name)
		if !ok {
			continue
		}
		total += ActivitySimilarity(user.Activities, city.Activities)
		counted++
	}
	if counted == 0 {
		return NeutralScore
	}
	return math.Round(total/float64(counted)*10) / 10
}
