package region

// Accommodation tiers recognized in city cost tables and user preferences.
const (
	TierBudget   = "budget"
	TierMidRange = "mid-range"
	TierLuxury   = "luxury"
)

// Defaults substituted when a city lookup misses or reference data is
// incomplete.
const (
	DefaultDailyCost   = 3000
	DefaultTypicalDays = 2
)

// ActivityVector holds interest intensities over the seven activity
// dimensions the matcher scores on. User preferences rate 1-5, cities 0-5.
type ActivityVector struct {
	Adventure int `json:"adventure" validate:"min=0,max=5"`
	Culture   int `json:"culture" validate:"min=0,max=5"`
	Food      int `json:"food" validate:"min=0,max=5"`
	Nightlife int `json:"nightlife" validate:"min=0,max=5"`
	Beach     int `json:"beach" validate:"min=0,max=5"`
	Nature    int `json:"nature" validate:"min=0,max=5"`
	Shopping  int `json:"shopping" validate:"min=0,max=5"`
}

// Floats returns the vector in the fixed dimension order used by every
// similarity computation.
func (v ActivityVector) Floats() [7]float64 {
	return [7]float64{
		float64(v.Adventure),
		float64(v.Culture),
		float64(v.Food),
		float64(v.Nightlife),
		float64(v.Beach),
		float64(v.Nature),
		float64(v.Shopping),
	}
}

// IsZero reports whether every dimension is zero. Zero vectors are the
// degenerate case similarity scoring must handle explicitly.
func (v ActivityVector) IsZero() bool {
	return v == ActivityVector{}
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City is read-only reference data describing one destination.
type City struct {
	Name        string         `json:"name"`
	Location    Location       `json:"location"`
	Activities  ActivityVector `json:"activities"`
	DailyCost   map[string]int `json:"avg_daily_cost"`
	TypicalDays int            `json:"typical_days"`
	Description string         `json:"description"`
}

// DailyCostFor returns the average daily cost for a tier, falling back to
// mid-range and then to the global default when the table is incomplete.
func (c City) DailyCostFor(tier string) int {
	if cost, ok := c.DailyCost[tier]; ok {
		return cost
	}
	if cost, ok := c.DailyCost[TierMidRange]; ok {
		return cost
	}
	return DefaultDailyCost
}

// Region is a named set of cities.
type Region struct {
	Cities map[string]City `json:"cities"`
}
