// Package consensus turns a set of submitted preferences and the region
// reference data into three ranked, costed, and sequenced itinerary options.
package consensus

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/shreeshk9/group-trip-planner/internal/narrative"
	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/route"
	"github.com/shreeshk9/group-trip-planner/internal/scoring"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

// ErrNoParticipants rejects a run with nothing to plan from.
var ErrNoParticipants = errors.New("consensus: no participants")

// Stage marks how far a planning run has progressed. Transitions are
// strictly sequential.
type Stage string

const (
	StageCollectingVotes   Stage = "collecting_votes"
	StageRegionSelected    Stage = "region_selected"
	StageCitiesRanked      Stage = "cities_ranked"
	StageOptionsBuilt      Stage = "options_built"
	StageNarrativeAttached Stage = "narrative_attached"
	StageDone              Stage = "done"
)

// MemberScore is one participant's satisfaction with an option.
type MemberScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Option is one fully built itinerary candidate.
type Option struct {
	ID                     int              `json:"option_id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Cities                 []string         `json:"cities"`
	DayAllocation          map[string]int   `json:"day_allocation"`
	TotalDays              int              `json:"total_days"`
	TotalDistanceKm        float64          `json:"total_distance_km"`
	TravelPlan             []route.Segment  `json:"travel_plan"`
	EstimatedCostPerPerson int              `json:"estimated_cost_per_person"`
	GroupScore             float64          `json:"group_score"`
	IndividualScores       []MemberScore    `json:"individual_scores"`
	NarrativeRequested     bool             `json:"narrative_requested"`
	Narrative              narrative.Result `json:"detailed_itinerary"`
	Votes                  int              `json:"votes"`
}

// Result is the immutable output of one planning run.
type Result struct {
	SelectedRegion     string   `json:"selected_region"`
	GroupCompatibility float64  `json:"group_compatibility"`
	Options            []Option `json:"options"`
	Stage              Stage    `json:"stage"`
}

// Planner drives the full consensus pipeline. The region database is
// injected and immutable; the random source behind the adventurous mix is
// injected so runs can be made deterministic under test.
type Planner struct {
	db     region.Database
	engine *scoring.Engine
	gen    narrative.Generator
	policy Policy
	rng    *rand.Rand
}

func NewPlanner(db region.Database, gen narrative.Generator, policy Policy, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{
		db:     db,
		engine: scoring.NewEngine(policy.Scoring),
		gen:    gen,
		policy: policy,
		rng:    rng,
	}
}

// SelectRegion tallies one weighted vote per participant for their preferred
// region. Flexible dates and a high personal budget ceiling add weight. Ties
// resolve to the region first encountered during the tally.
func (p *Planner) SelectRegion(users []session.Preference) (string, region.Region, error) {
	if len(users) == 0 {
		return "", region.Region{}, ErrNoParticipants
	}

	weights := map[string]float64{}
	var order []string
	for _, u := range users {
		weight := 1.0
		if u.Dates.Flexible {
			weight += p.policy.FlexibleDatesBonus
		}
		if u.Budget.Max > p.policy.HighBudgetThreshold {
			weight += p.policy.HighBudgetBonus
		}
		if _, seen := weights[u.Region]; !seen {
			order = append(order, u.Region)
		}
		weights[u.Region] += weight
	}

	selected := order[0]
	for _, name := range order[1:] {
		if weights[name] > weights[selected] {
			selected = name
		}
	}

	r, err := p.db.Region(selected)
	if err != nil {
		return selected, region.Region{}, err
	}
	return selected, r, nil
}

// cityCount derives the target number of cities from the median requested
// duration.
func cityCount(users []session.Preference) (int, int) {
	durations := make([]int, 0, len(users))
	for _, u := range users {
		durations = append(durations, u.DurationDays)
	}
	sort.Ints(durations)

	var median int
	mid := len(durations) / 2
	if len(durations)%2 == 1 {
		median = durations[mid]
	} else {
		median = (durations[mid-1] + durations[mid]) / 2
	}

	switch {
	case median <= 4:
		return 2, median
	case median <= 7:
		return 3, median
	default:
		return 4, median
	}
}

// BuildOptions runs the whole pipeline: region vote, ranking, three
// selection strategies, route optimization, day/cost allocation, scoring,
// and narrative attachment for the designated option.
func (p *Planner) BuildOptions(ctx context.Context, users []session.Preference) (Result, error) {
	stage := StageCollectingVotes

	selectedRegion, r, err := p.SelectRegion(users)
	if err != nil {
		return Result{Stage: stage}, err
	}
	stage = advance(stage, StageRegionSelected)

	ranked := p.engine.RankCities(users, r)
	stage = advance(stage, StageCitiesRanked)

	compatibility := p.engine.GroupCompatibility(users)

	numCities, totalDays := cityCount(users)
	if numCities > len(ranked) {
		numCities = len(ranked)
	}

	selections := []struct {
		name        string
		description string
		cities      []string
		narrate     bool
	}{
		{
			name:        "Optimal Match",
			description: "Best overall match for the group's preferences",
			cities:      selectTop(ranked, numCities),
			narrate:     true,
		},
		{
			name:        "Budget-Friendly",
			description: "Great experience at a lower cost",
			cities:      p.selectBudgetFriendly(ranked, numCities, r),
		},
		{
			name:        "Adventurous Mix",
			description: "Popular spots plus off-beat experiences",
			cities:      p.selectAdventurousMix(ranked, numCities),
		},
	}

	options := make([]Option, 0, len(selections))
	for i, sel := range selections {
		opt, err := p.buildOption(i+1, sel.name, sel.description, sel.cities, sel.narrate, users, r, ranked, totalDays)
		if err != nil {
			return Result{Stage: stage}, err
		}
		options = append(options, opt)
	}
	stage = advance(stage, StageOptionsBuilt)

	combined := narrative.CombineGroupPreferences(users)
	tier := scoring.DominantTier(users)
	for i := range options {
		if !options[i].NarrativeRequested {
			options[i].Narrative = narrative.NotRequested("Detailed itinerary generated for the Optimal Match option only.")
			continue
		}
		options[i].Narrative = narrative.Attach(ctx, p.gen, narrative.Trip{
			Cities:           options[i].Cities,
			DayAllocation:    options[i].DayAllocation,
			Plan:             options[i].TravelPlan,
			Region:           r,
			GroupPreferences: combined,
			BudgetTier:       tier,
		})
		if !options[i].Narrative.Generated {
			log.Printf("narrative generation failed for option %d: %s", options[i].ID, options[i].Narrative.FailureReason)
		}
	}
	stage = advance(stage, StageNarrativeAttached)
	stage = advance(stage, StageDone)

	return Result{
		SelectedRegion:     selectedRegion,
		GroupCompatibility: compatibility,
		Options:            options,
		Stage:              stage,
	}, nil
}

func (p *Planner) buildOption(id int, name, description string, cities []string, narrate bool,
	users []session.Preference, r region.Region, ranked []scoring.RankedCity, totalDays int) (Option, error) {

	ordered, distance, _, err := route.Optimize(cities, r)
	if err != nil {
		return Option{}, err
	}
	plan := route.BuildTravelPlan(ordered, r, p.policy.Geo, p.policy.RouteCost)
	allocation := p.policy.AllocateDays(ordered, totalDays, r)
	cost := p.policy.EstimateCost(users, ordered, allocation, r)

	scores := make([]MemberScore, 0, len(users))
	for _, u := range users {
		scores = append(scores, MemberScore{
			Name:  u.Name,
			Score: scoring.IndividualSatisfaction(u, ordered, r),
		})
	}

	return Option{
		ID:                     id,
		Name:                   name,
		Description:            description,
		Cities:                 ordered,
		DayAllocation:          allocation,
		TotalDays:              totalDays,
		TotalDistanceKm:        distance,
		TravelPlan:             plan,
		EstimatedCostPerPerson: cost,
		GroupScore:             meanRankScore(ranked, ordered),
		IndividualScores:       scores,
		NarrativeRequested:     narrate,
	}, nil
}

// meanRankScore averages the rank scores of the selected cities, rounded to
// one decimal.
func meanRankScore(ranked []scoring.RankedCity, selected []string) float64 {
	if len(selected) == 0 {
		return 0
	}
	byName := make(map[string]float64, len(ranked))
	for _, rc := range ranked {
		byName[rc.Name] = rc.Score
	}
	var total float64
	for _, name := range selected {
		total += byName[name]
	}
	return math.Round(total/float64(len(selected))*10) / 10
}

func advance(from, to Stage) Stage {
	log.Printf("consensus: %s -> %s", from, to)
	return to
}
