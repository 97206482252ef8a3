package consensus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shreeshk9/group-trip-planner/internal/route"
	"github.com/shreeshk9/group-trip-planner/internal/scoring"
	"github.com/shreeshk9/group-trip-planner/internal/shared/geo"
)

// Policy gathers every tunable constant of the planning pipeline. The region
// vote bonuses and quality thresholds carry no derivation beyond product
// judgment; they are flagged for review and kept overridable instead of
// hardcoded.
type Policy struct {
	// region vote weighting
	FlexibleDatesBonus  float64 `json:"flexible_dates_bonus"`
	HighBudgetBonus     float64 `json:"high_budget_bonus"`
	HighBudgetThreshold int     `json:"high_budget_threshold"`

	// city selection
	MinQualityScore  float64 `json:"min_quality_score"`
	MidBandStartRank int     `json:"mid_band_start_rank"`
	MidBandEndRank   int     `json:"mid_band_end_rank"`

	// day and cost allocation
	TravelDayPerTransition float64 `json:"travel_day_per_transition"`
	FoodPerDiem            int     `json:"food_per_diem"`
	MiscPerDiem            int     `json:"misc_per_diem"`
	TransitionCost         int     `json:"transition_cost"`

	Geo       geo.Policy       `json:"geo"`
	Scoring   scoring.Policy   `json:"scoring"`
	RouteCost route.CostPolicy `json:"route_cost"`
}

// DefaultPolicy returns the baseline constants.
func DefaultPolicy() Policy {
	return Policy{
		FlexibleDatesBonus:     0.2,
		HighBudgetBonus:        0.3,
		HighBudgetThreshold:    40000,
		MinQualityScore:        60,
		MidBandStartRank:       4,
		MidBandEndRank:         8,
		TravelDayPerTransition: 0.5,
		FoodPerDiem:            1500,
		MiscPerDiem:            500,
		TransitionCost:         2000,
		Geo:                    geo.DefaultPolicy(),
		Scoring:                scoring.DefaultPolicy(),
		RouteCost:              route.DefaultCostPolicy(),
	}
}

// LoadPolicyFromFile overlays a JSON override file onto the defaults,
// falling back to defaults on read errors.
func LoadPolicyFromFile(path string) (Policy, error) {
	p := DefaultPolicy()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return DefaultPolicy(), fmt.Errorf("unmarshal policy: %w", err)
	}
	return p, nil
}
