package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Jaipur (26.9124, 75.7873) to Udaipur (24.5854, 73.7125) ~ 330-340 km
	d := HaversineKm(26.9124, 75.7873, 24.5854, 73.7125)
	if d < 300 || d > 360 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineKmZero(t *testing.T) {
	if d := HaversineKm(26.9, 75.8, 26.9, 75.8); d != 0 {
		t.Fatalf("expected 0 for identical points, got %v", d)
	}
}

func TestTravelTimeTiers(t *testing.T) {
	p := DefaultPolicy()

	if h := p.TravelTimeHours(600); h != 2.0 {
		t.Fatalf("flight leg: expected 2.0, got %v", h)
	}
	if h := p.TravelTimeHours(400); h != 5.0 {
		t.Fatalf("train leg: expected 400/80=5.0, got %v", h)
	}
	if h := p.TravelTimeHours(150); h != 2.5 {
		t.Fatalf("car leg: expected 150/60=2.5, got %v", h)
	}
	// boundary: exactly 500 km is still a train-speed leg
	if h := p.TravelTimeHours(500); h != 6.3 {
		t.Fatalf("500km leg: expected 6.3, got %v", h)
	}
}

func TestRecommendedTransport(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		km   float64
		want Transport
	}{
		{50, TransportCarTaxi},
		{99.9, TransportCarTaxi},
		{100, TransportCarOrTrain},
		{299, TransportCarOrTrain},
		{300, TransportTrain},
		{499, TransportTrain},
		{500, TransportFlight},
		{1200, TransportFlight},
	}
	for _, c := range cases {
		if got := p.RecommendedTransport(c.km); got != c.want {
			t.Fatalf("%.1f km: expected %s, got %s", c.km, c.want, got)
		}
	}
}

func TestPolicyOverride(t *testing.T) {
	p := DefaultPolicy()
	p.CarTaxiMaxKm = 200

	if got := p.RecommendedTransport(150); got != TransportCarTaxi {
		t.Fatalf("expected override to widen car band, got %s", got)
	}
}
