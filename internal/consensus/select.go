package consensus

import (
	"sort"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/scoring"
)

// selectTop takes the n best-ranked cities.
func selectTop(ranked []scoring.RankedCity, n int) []string {
	if n > len(ranked) {
		n = len(ranked)
	}
	cities := make([]string, 0, n)
	for _, rc := range ranked[:n] {
		cities = append(cities, rc.Name)
	}
	return cities
}

// selectBudgetFriendly picks the n cheapest cities (daily cost at mid-range
// times typical days) among those above the minimum quality score, padding
// with the next-highest-ranked cities when too few qualify.
func (p *Planner) selectBudgetFriendly(ranked []scoring.RankedCity, n int, r region.Region) []string {
	type costed struct {
		name string
		cost int
	}
	var candidates []costed
	for _, rc := range ranked {
		if rc.Score <= p.policy.MinQualityScore {
			continue
		}
		daily := region.DefaultDailyCost
		if city, ok := r.City(rc.Name); ok {
			daily = city.DailyCostFor(region.TierMidRange)
		}
		candidates = append(candidates, costed{
			name: rc.Name,
			cost: daily * r.TypicalDaysFor(rc.Name),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].cost < candidates[j].cost })

	selected := make([]string, 0, n)
	chosen := map[string]bool{}
	for _, c := range candidates {
		if len(selected) >= n {
			break
		}
		selected = append(selected, c.name)
		chosen[c.name] = true
	}
	for _, rc := range ranked {
		if len(selected) >= n {
			break
		}
		if !chosen[rc.Name] {
			selected = append(selected, rc.Name)
			chosen[rc.Name] = true
		}
	}
	return selected
}

// selectAdventurousMix always keeps the top-ranked city and fills the
// remaining slots from a shuffled mid-ranked band, padding from the rest of
// the ranking when the band runs dry. Never returns duplicates; returns
// fewer than n only when the ranked pool itself is smaller.
func (p *Planner) selectAdventurousMix(ranked []scoring.RankedCity, n int) []string {
	if len(ranked) == 0 || n <= 0 {
		return nil
	}

	selected := []string{ranked[0].Name}
	chosen := map[string]bool{ranked[0].Name: true}

	start := p.policy.MidBandStartRank - 1
	end := p.policy.MidBandEndRank
	if end > len(ranked) {
		end = len(ranked)
	}
	if start < len(ranked) && start < end {
		band := make([]string, 0, end-start)
		for _, rc := range ranked[start:end] {
			band = append(band, rc.Name)
		}
		p.rng.Shuffle(len(band), func(i, j int) { band[i], band[j] = band[j], band[i] })

		for _, name := range band {
			if len(selected) >= n {
				break
			}
			if !chosen[name] {
				selected = append(selected, name)
				chosen[name] = true
			}
		}
	}

	for _, rc := range ranked[1:] {
		if len(selected) >= n {
			break
		}
		if !chosen[rc.Name] {
			selected = append(selected, rc.Name)
			chosen[rc.Name] = true
		}
	}
	return selected
}
