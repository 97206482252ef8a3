package geo

import "math"

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Transport is a recommended mode for one inter-city leg.
type Transport string

const (
	TransportCarTaxi    Transport = "Car/Taxi"
	TransportCarOrTrain Transport = "Car or Train"
	TransportTrain      Transport = "Train"
	TransportFlight     Transport = "Flight"
)

// Policy holds the distance thresholds and average speeds behind travel-time
// and transport recommendations. These are product policy, not physics, so
// they are kept overridable rather than buried as literals.
type Policy struct {
	FlightDistanceKm float64 `json:"flight_distance_km"`
	TrainDistanceKm  float64 `json:"train_distance_km"`
	FlightHours      float64 `json:"flight_hours"`
	TrainSpeedKmh    float64 `json:"train_speed_kmh"`
	CarSpeedKmh      float64 `json:"car_speed_kmh"`
	CarTaxiMaxKm     float64 `json:"car_taxi_max_km"`
	CarOrTrainMaxKm  float64 `json:"car_or_train_max_km"`
	TrainOnlyMaxKm   float64 `json:"train_only_max_km"`
}

// DefaultPolicy returns the baseline thresholds: flights beyond 500 km at a
// fixed 2 h door-to-door, trains in the 200-500 km band at 80 km/h, cars
// below at 60 km/h.
func DefaultPolicy() Policy {
	return Policy{
		FlightDistanceKm: 500,
		TrainDistanceKm:  200,
		FlightHours:      2.0,
		TrainSpeedKmh:    80,
		CarSpeedKmh:      60,
		CarTaxiMaxKm:     100,
		CarOrTrainMaxKm:  300,
		TrainOnlyMaxKm:   500,
	}
}

// TravelTimeHours estimates door-to-door travel time for a leg of the given
// distance, rounded to one decimal.
func (p Policy) TravelTimeHours(distanceKm float64) float64 {
	switch {
	case distanceKm > p.FlightDistanceKm:
		return p.FlightHours
	case distanceKm > p.TrainDistanceKm:
		return round1(distanceKm / p.TrainSpeedKmh)
	default:
		return round1(distanceKm / p.CarSpeedKmh)
	}
}

// RecommendedTransport maps a leg distance onto a transport mode.
func (p Policy) RecommendedTransport(distanceKm float64) Transport {
	switch {
	case distanceKm < p.CarTaxiMaxKm:
		return TransportCarTaxi
	case distanceKm < p.CarOrTrainMaxKm:
		return TransportCarOrTrain
	case distanceKm < p.TrainOnlyMaxKm:
		return TransportTrain
	default:
		return TransportFlight
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round1 rounds to one decimal. Exported for the packages that report
// distances in kilometers with the same precision.
func Round1(v float64) float64 {
	return round1(v)
}
