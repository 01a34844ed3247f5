package services

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", 48.8566, 2.3522, 48.8566, 2.3522, 0, 0.01},
		{"one degree latitude", 0, 0, 1, 0, 111195, 200},
		{"paris to london", 48.8566, 2.3522, 51.5074, -0.1278, 343500, 1500},
		{"antipodal-ish", 0, 0, 0, 180, math.Pi * earthRadiusMeters, 1000},
	}

	for _, tc := range cases {
		got := HaversineMeters(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > tc.tolerance {
			t.Errorf("%s: got %.1f m, want %.1f ± %.1f", tc.name, got, tc.want, tc.tolerance)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	ab := HaversineMeters(40.4168, -3.7038, 41.3874, 2.1686)
	ba := HaversineMeters(41.3874, 2.1686, 40.4168, -3.7038)
	if math.Abs(ab-ba) > 0.001 {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
}
