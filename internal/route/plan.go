package route

import (
	"math"

	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/shared/geo"
)

// Segment is one inter-city leg of a travel plan.
type Segment struct {
	From            string        `json:"from"`
	To              string        `json:"to"`
	DistanceKm      float64       `json:"distance_km"`
	TravelTimeHours float64       `json:"travel_time_hours"`
	Transport       geo.Transport `json:"transport"`
	CostEstimate    int           `json:"cost_estimate"`
}

// CostPolicy prices a leg by its recommended transport. Flat fares for
// flights and anything rail-capable, per-km otherwise; same currency unit as
// city daily costs.
type CostPolicy struct {
	FlightCost int     `json:"flight_cost"`
	TrainCost  int     `json:"train_cost"`
	CostPerKm  float64 `json:"cost_per_km"`
}

// DefaultCostPolicy returns the baseline fares: 4000 per flight, 1500 per
// train-capable leg, 10 per km by road.
func DefaultCostPolicy() CostPolicy {
	return CostPolicy{FlightCost: 4000, TrainCost: 1500, CostPerKm: 10}
}

// SegmentCost prices one leg. Legs where a train is an option (including
// "Car or Train") use the flat train fare.
func (p CostPolicy) SegmentCost(distanceKm float64, transport geo.Transport) int {
	switch transport {
	case geo.TransportFlight:
		return p.FlightCost
	case geo.TransportTrain, geo.TransportCarOrTrain:
		return p.TrainCost
	default:
		return int(math.Round(distanceKm * p.CostPerKm))
	}
}

// BuildTravelPlan bundles distance, time, transport, and cost for each
// consecutive pair of an ordered route.
func BuildTravelPlan(order []string, r region.Region, gp geo.Policy, cp CostPolicy) []Segment {
	if len(order) < 2 {
		return nil
	}
	plan := make([]Segment, 0, len(order)-1)
	for i := 0; i < len(order)-1; i++ {
		distance := legDistance(order[i], order[i+1], r)
		transport := gp.RecommendedTransport(distance)
		plan = append(plan, Segment{
			From:            order[i],
			To:              order[i+1],
			DistanceKm:      geo.Round1(distance),
			TravelTimeHours: gp.TravelTimeHours(distance),
			Transport:       transport,
			CostEstimate:    cp.SegmentCost(distance, transport),
		})
	}
	return plan
}
