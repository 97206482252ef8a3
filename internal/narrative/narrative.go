// Package narrative decorates a finished itinerary option with day-by-day
// prose from an external text-generation service, degrading to a templated
// fallback when the service is unavailable.
package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/route"
	"github.com/shreeshk9/group-trip-planner/internal/session"
)

// Request is one per-city generation call to the external service.
type Request struct {
	City          string   `json:"city"`
	Days          int      `json:"days"`
	TopActivities []string `json:"top_activities"`
	BudgetTier    string   `json:"budget_tier"`
	Description   string   `json:"description"`
}

// Generator produces free-text itinerary prose for one city. Implementations
// may fail; callers must treat failure as a per-option condition, never a
// pipeline abort.
type Generator interface {
	Itinerary(ctx context.Context, req Request) (string, error)
}

// Result is the narrative outcome attached to an itinerary option. Exactly
// one of Text/Note is the main payload; FailureReason is set when the
// service failed and Text holds fallback prose instead.
type Result struct {
	Text          string `json:"text,omitempty"`
	Note          string `json:"note,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	Generated     bool   `json:"generated"`
}

// NotRequested is the result carried by options the orchestrator did not
// request prose for.
func NotRequested(note string) Result {
	return Result{Note: note}
}

// Trip is everything Attach needs to narrate one option.
type Trip struct {
	Cities           []string
	DayAllocation    map[string]int
	Plan             []route.Segment
	Region           region.Region
	GroupPreferences map[string]float64
	BudgetTier       string
}

// Attach builds the full-trip narrative: a generated (or fallback) section
// per city, with travel-day interludes between them. A generator failure is
// recorded on the result and replaced by fallback prose for that city.
func Attach(ctx context.Context, gen Generator, trip Trip) Result {
	top := TopActivities(trip.GroupPreferences, 3)

	var b strings.Builder
	var failure string
	currentDay := 1

	for i, cityName := range trip.Cities {
		days := trip.DayAllocation[cityName]
		if days < 1 {
			days = 1
		}
		city, _ := trip.Region.City(cityName)
		description := city.Description
		if description == "" {
			description = cityName + " - a destination worth exploring"
		}

		req := Request{
			City:          cityName,
			Days:          days,
			TopActivities: top,
			BudgetTier:    trip.BudgetTier,
			Description:   description,
		}

		text, err := gen.Itinerary(ctx, req)
		if err != nil {
			if failure == "" {
				failure = err.Error()
			}
			text = Fallback(req)
		}

		fmt.Fprintf(&b, "# %s (Day %d-%d)\n\n%s\n", cityName, currentDay, currentDay+days-1, text)
		currentDay += days

		if i < len(trip.Cities)-1 && i < len(trip.Plan) {
			b.WriteString(travelDay(trip.Plan[i]))
			currentDay++
		}
	}

	return Result{
		Text:          b.String(),
		FailureReason: failure,
		Generated:     failure == "",
	}
}

func travelDay(seg route.Segment) string {
	return fmt.Sprintf(`
## Travel Day: %s → %s

**Transport:** %s
**Distance:** %.1f km
**Duration:** %.1f hours
**Estimated Cost:** %d per person

**Morning:** Check out from %s accommodation
**Travel:** %s to %s
**Evening:** Check in at %s, rest and explore nearby

`, seg.From, seg.To, seg.Transport, seg.DistanceKm, seg.TravelTimeHours,
		seg.CostEstimate, seg.From, seg.Transport, seg.To, seg.To)
}

// Fallback is the minimal templated itinerary used when the external service
// cannot produce one.
func Fallback(req Request) string {
	first, second := "local highlights", "local experiences"
	if len(req.TopActivities) > 0 {
		first = req.TopActivities[0]
	}
	if len(req.TopActivities) > 1 {
		second = req.TopActivities[1]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s - %d Day Itinerary\n\n", req.City, req.Days)
	for day := 1; day <= req.Days; day++ {
		focus := first
		if day%2 == 0 {
			focus = second
		}
		fmt.Fprintf(&b, "### Day %d\n", day)
		fmt.Fprintf(&b, "**Morning:** Explore main attractions focusing on %s\n", focus)
		b.WriteString("**Afternoon:** Visit local markets and cultural sites\n")
		b.WriteString("**Evening:** Experience local cuisine\n\n")
	}
	return b.String()
}

// CombineGroupPreferences averages activity interest across the group,
// producing the single preference profile the generator prompt works from.
func CombineGroupPreferences(users []session.Preference) map[string]float64 {
	combined := map[string]float64{
		"adventure": 0, "culture": 0, "food": 0,
		"nightlife": 0, "beach": 0, "nature": 0, "shopping": 0,
	}
	if len(users) == 0 {
		return combined
	}
	for _, u := range users {
		combined["adventure"] += float64(u.Activities.Adventure)
		combined["culture"] += float64(u.Activities.Culture)
		combined["food"] += float64(u.Activities.Food)
		combined["nightlife"] += float64(u.Activities.Nightlife)
		combined["beach"] += float64(u.Activities.Beach)
		combined["nature"] += float64(u.Activities.Nature)
		combined["shopping"] += float64(u.Activities.Shopping)
	}
	for k := range combined {
		combined[k] /= float64(len(users))
	}
	return combined
}

// TopActivities returns the n highest-interest activity names, highest
// first. Equal interests order alphabetically so output is deterministic.
func TopActivities(prefs map[string]float64, n int) []string {
	names := make([]string, 0, len(prefs))
	for name := range prefs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if prefs[names[i]] != prefs[names[j]] {
			return prefs[names[i]] > prefs[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
