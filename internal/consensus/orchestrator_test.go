package consensus

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreeshk9/group-trip-planner/internal/narrative"
	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/scoring"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

type stubGenerator struct {
	err error
}

func (s stubGenerator) Itinerary(_ context.Context, req narrative.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "generated prose for " + req.City, nil
}

// fixtureDB builds a region with eight culture-heavy cities so ranked scores
// land above the quality threshold and the adventurous mid band is populated.
func fixtureDB() region.Database {
	cities := map[string]region.City{}
	names := []string{"Jaipur", "Udaipur", "Jodhpur", "Pushkar", "Bikaner", "Jaisalmer", "Mount Abu", "Chittorgarh"}
	for i, name := range names {
		cities[name] = region.City{
			Name:     name,
			Location: region.Location{Lat: 24 + float64(i)*0.7, Lon: 72 + float64(i)*0.9},
			Activities: region.ActivityVector{
				Adventure: 3, Culture: 5, Food: 4, Nightlife: 2, Nature: 2 + i%3, Shopping: 3,
			},
			DailyCost:   map[string]int{"budget": 1500 + i*200, "mid-range": 3000 + i*400, "luxury": 8000 + i*500},
			TypicalDays: 2,
		}
	}
	return region.Database{Regions: map[string]region.Region{
		"Rajasthan": {Cities: cities},
	}}
}

func groupOfTwo() []session.Preference {
	v := region.ActivityVector{Adventure: 3, Culture: 5, Food: 4, Nightlife: 2, Nature: 3, Shopping: 3}
	return []session.Preference{
		{Name: "Asha", Region: "Rajasthan", Budget: session.Budget{Min: 20000, Max: 50000},
			DurationDays: 6, Dates: session.Dates{Flexible: true}, Activities: v, Accommodation: "mid-range", Pace: "moderate"},
		{Name: "Ravi", Region: "Rajasthan", Budget: session.Budget{Min: 25000, Max: 45000},
			DurationDays: 6, Activities: v, Accommodation: "mid-range", Pace: "moderate"},
	}
}

func newTestPlanner(gen narrative.Generator) *Planner {
	return NewPlanner(fixtureDB(), gen, DefaultPolicy(), rand.New(rand.NewSource(42)))
}

func TestSelectRegionWeightedVote(t *testing.T) {
	p := newTestPlanner(stubGenerator{})

	users := []session.Preference{
		{Name: "a", Region: "Rajasthan", Budget: session.Budget{Max: 30000}},
		{Name: "b", Region: "Rajasthan", Budget: session.Budget{Max: 30000}},
		// flexible + high budget: 1.5 votes, still short of 2.0
		{Name: "c", Region: "Goa", Budget: session.Budget{Max: 60000}, Dates: session.Dates{Flexible: true}},
	}
	name, _, err := p.SelectRegion(users)
	require.NoError(t, err)
	assert.Equal(t, "Rajasthan", name)
}

func TestSelectRegionTieBreak(t *testing.T) {
	p := newTestPlanner(stubGenerator{})

	users := []session.Preference{
		{Name: "a", Region: "Goa", Budget: session.Budget{Max: 30000}},
		{Name: "b", Region: "Rajasthan", Budget: session.Budget{Max: 30000}},
	}
	name, _, err := p.SelectRegion(users)
	// Goa wins the tie as first encountered, but has no reference data
	require.Error(t, err)
	assert.Equal(t, "Goa", name)
}

func TestSelectRegionEmptyGroup(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	_, _, err := p.SelectRegion(nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestCityCountTiers(t *testing.T) {
	cases := []struct {
		durations []int
		want      int
	}{
		{[]int{3}, 2},
		{[]int{4}, 2},
		{[]int{5}, 3},
		{[]int{7}, 3},
		{[]int{10}, 4},
		{[]int{3, 10, 6}, 3},  // median 6
		{[]int{2, 4, 8, 12}, 3}, // even count: median (4+8)/2 = 6
	}
	for _, c := range cases {
		users := make([]session.Preference, len(c.durations))
		for i, d := range c.durations {
			users[i] = session.Preference{DurationDays: d}
		}
		got, _ := cityCount(users)
		assert.Equal(t, c.want, got, "durations %v", c.durations)
	}
}

func TestBuildOptionsFullRun(t *testing.T) {
	p := newTestPlanner(stubGenerator{})

	result, err := p.BuildOptions(context.Background(), groupOfTwo())
	require.NoError(t, err)

	assert.Equal(t, "Rajasthan", result.SelectedRegion)
	assert.Equal(t, StageDone, result.Stage)
	assert.Greater(t, result.GroupCompatibility, 50.0)
	require.Len(t, result.Options, 3)

	for _, opt := range result.Options {
		// median duration 6 -> 3 cities
		assert.Len(t, opt.Cities, 3, "option %q", opt.Name)
		assert.Len(t, opt.TravelPlan, 2)
		assert.Equal(t, 6, opt.TotalDays)
		assert.Positive(t, opt.EstimatedCostPerPerson)
		assert.Positive(t, opt.GroupScore)
		require.Len(t, opt.IndividualScores, 2)

		sum := 0
		for _, city := range opt.Cities {
			days := opt.DayAllocation[city]
			assert.GreaterOrEqual(t, days, 1)
			sum += days
		}
		assert.Equal(t, opt.TotalDays, sum)
	}

	optimal := result.Options[0]
	assert.True(t, optimal.NarrativeRequested)
	assert.True(t, optimal.Narrative.Generated)
	assert.Contains(t, optimal.Narrative.Text, "generated prose")

	for _, opt := range result.Options[1:] {
		assert.False(t, opt.NarrativeRequested)
		assert.NotEmpty(t, opt.Narrative.Note)
		assert.Empty(t, opt.Narrative.Text)
	}
}

func TestBuildOptionsNarrativeFailureDoesNotAbort(t *testing.T) {
	p := newTestPlanner(stubGenerator{err: errors.New("service down")})

	result, err := p.BuildOptions(context.Background(), groupOfTwo())
	require.NoError(t, err, "narrative failure must not fail the pipeline")

	optimal := result.Options[0]
	assert.False(t, optimal.Narrative.Generated)
	assert.Equal(t, "service down", optimal.Narrative.FailureReason)
	assert.NotEmpty(t, optimal.Narrative.Text, "fallback prose still attached")

	// the numeric parts of the failed option stay fully populated
	assert.NotEmpty(t, optimal.Cities)
	assert.Positive(t, optimal.EstimatedCostPerPerson)
	assert.NotEmpty(t, optimal.TravelPlan)
}

func TestBuildOptionsSingleParticipantShortTrip(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	solo := []session.Preference{{
		Name: "Solo", Region: "Rajasthan", Budget: session.Budget{Min: 10000, Max: 30000},
		DurationDays: 3, Activities: region.ActivityVector{Culture: 5, Food: 4}, Accommodation: "budget",
	}}

	result, err := p.BuildOptions(context.Background(), solo)
	require.NoError(t, err)
	for _, opt := range result.Options {
		assert.Len(t, opt.Cities, 2, "duration 3 sits in the two-city tier")
	}
}

func TestSelectAdventurousMix(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	e := scoring.NewEngine(scoring.DefaultPolicy())
	r, _ := fixtureDB().Region("Rajasthan")
	ranked := e.RankCities(groupOfTwo(), r)
	require.Len(t, ranked, 8)

	for trial := 0; trial < 20; trial++ {
		mix := p.selectAdventurousMix(ranked, 4)
		require.Len(t, mix, 4, "must return exactly the requested count")
		assert.Equal(t, ranked[0].Name, mix[0], "top city always included")

		seen := map[string]bool{}
		for _, name := range mix {
			assert.False(t, seen[name], "duplicate city %s", name)
			seen[name] = true
		}
	}
}

func TestSelectAdventurousMixSmallPool(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	ranked := []scoring.RankedCity{{Name: "Jaipur", Score: 90}, {Name: "Udaipur", Score: 80}}

	mix := p.selectAdventurousMix(ranked, 4)
	assert.Equal(t, []string{"Jaipur", "Udaipur"}, mix, "pool smaller than request returns the pool")
	assert.Nil(t, p.selectAdventurousMix(nil, 3))
}

func TestSelectBudgetFriendly(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	r, _ := fixtureDB().Region("Rajasthan")

	ranked := []scoring.RankedCity{
		{Name: "Jaisalmer", Score: 85}, // mid-range 5000/day
		{Name: "Jaipur", Score: 82},    // mid-range 3000/day, cheapest qualifier
		{Name: "Udaipur", Score: 75},   // mid-range 3400/day
		{Name: "Pushkar", Score: 40},   // below the quality bar
	}
	selected := p.selectBudgetFriendly(ranked, 2, r)
	assert.Equal(t, []string{"Jaipur", "Udaipur"}, selected)
}

func TestSelectBudgetFriendlyPadsFromRanking(t *testing.T) {
	p := newTestPlanner(stubGenerator{})
	r, _ := fixtureDB().Region("Rajasthan")

	// only one city clears the bar; the rest pad in rank order
	ranked := []scoring.RankedCity{
		{Name: "Jaipur", Score: 90},
		{Name: "Udaipur", Score: 30},
		{Name: "Jodhpur", Score: 20},
	}
	selected := p.selectBudgetFriendly(ranked, 3, r)
	assert.Equal(t, []string{"Jaipur", "Udaipur", "Jodhpur"}, selected)
}

func TestMeanRankScore(t *testing.T) {
	ranked := []scoring.RankedCity{
		{Name: "A", Score: 90}, {Name: "B", Score: 80}, {Name: "C", Score: 70},
	}
	assert.Equal(t, 85.0, meanRankScore(ranked, []string{"A", "B"}))
	assert.Zero(t, meanRankScore(ranked, nil))
}

func TestPolicyOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	content := `{"high_budget_threshold": 55000, "min_quality_score": 70}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadPolicyFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 55000, p.HighBudgetThreshold)
	assert.Equal(t, 70.0, p.MinQualityScore)
	// untouched fields keep their defaults
	assert.Equal(t, 0.2, p.FlexibleDatesBonus)

	_, err = LoadPolicyFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
