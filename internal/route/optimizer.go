// Package route orders a small set of cities into the shortest open path and
// turns the winning order into a concrete travel plan.
package route

import (
	"errors"
	"math"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/shared/geo"
)

// MaxCities caps the permutation search. The solver is exact but factorial;
// callers must trim candidate sets before asking for a route.
const MaxCities = 7

// ErrTooManyCities rejects oversized inputs instead of running an unbounded
// permutation search.
var ErrTooManyCities = errors.New("route: too many cities for exhaustive optimization")

// Optimize finds the visiting order with the minimum total great-circle
// distance. Permutations are enumerated in lexicographic order over the
// input indices and a strictly-smaller total replaces the incumbent, so ties
// resolve to the earliest permutation in that order and results are
// reproducible for any fixed input slice.
//
// Returns the ordered cities, the total distance (1 decimal), and the
// consecutive-pair distances of the winning route keyed "From-To".
func Optimize(cities []string, r region.Region) ([]string, float64, map[string]float64, error) {
	if len(cities) > MaxCities {
		return nil, 0, nil, ErrTooManyCities
	}
	if len(cities) <= 1 {
		return cities, 0, map[string]float64{}, nil
	}
	if len(cities) == 2 {
		d := pathDistance(cities, r)
		pairs := map[string]float64{
			cities[0] + "-" + cities[1]: geo.Round1(d),
		}
		return cities, geo.Round1(d), pairs, nil
	}

	best := make([]string, len(cities))
	copy(best, cities)
	bestDistance := math.Inf(1)

	perm := make([]string, len(cities))
	used := make([]bool, len(cities))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(cities) {
			if d := pathDistance(perm, r); d < bestDistance {
				bestDistance = d
				copy(best, perm)
			}
			return
		}
		for i, city := range cities {
			if used[i] {
				continue
			}
			used[i] = true
			perm[depth] = city
			walk(depth + 1)
			used[i] = false
		}
	}
	walk(0)

	pairs := make(map[string]float64, len(best)-1)
	for i := 0; i < len(best)-1; i++ {
		pairs[best[i]+"-"+best[i+1]] = geo.Round1(legDistance(best[i], best[i+1], r))
	}
	return best, geo.Round1(bestDistance), pairs, nil
}

// pathDistance sums the consecutive-leg distances of one visiting order.
func pathDistance(order []string, r region.Region) float64 {
	var total float64
	for i := 0; i < len(order)-1; i++ {
		total += legDistance(order[i], order[i+1], r)
	}
	return total
}

// legDistance is the great-circle distance between two named cities. A
// lookup miss contributes zero rather than failing the whole route.
func legDistance(from, to string, r region.Region) float64 {
	a, okA := r.City(from)
	b, okB := r.City(to)
	if !okA || !okB {
		return 0
	}
	return geo.HaversineKm(a.Location.Lat, a.Location.Lon, b.Location.Lat, b.Location.Lon)
}
