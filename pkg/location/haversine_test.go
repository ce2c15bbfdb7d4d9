package location

import (
	"math"
	"testing"
)

func TestHaversineKmIdenticalPoints(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-6.2088, 106.8456},
		{89.9, 179.9},
		{-45.0, -170.5},
	}
	for _, p := range points {
		if d := HaversineKm(p[0], p[1], p[0], p[1]); d > 1e-9 {
			t.Fatalf("distance from (%v,%v) to itself = %v, want ~0", p[0], p[1], d)
		}
	}
}

func TestHaversineKmCommutative(t *testing.T) {
	pairs := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{name: "jakarta-bandung", lat1: -6.2088, lng1: 106.8456, lat2: -6.9175, lng2: 107.6191},
		{name: "cross-equator", lat1: 10, lng1: 20, lat2: -10, lng2: -20},
		{name: "cross-dateline", lat1: 30, lng1: 179.5, lat2: 30, lng2: -179.5},
	}
	for _, tc := range pairs {
		t.Run(tc.name, func(t *testing.T) {
			ab := HaversineKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			ba := HaversineKm(tc.lat2, tc.lng2, tc.lat1, tc.lng1)
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("not commutative: %v vs %v", ab, ba)
			}
		})
	}
}

func TestHaversineKmJakartaBandung(t *testing.T) {
	d := HaversineKm(-6.2088, 106.8456, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("Jakarta-Bandung = %v km, want between 100 and 140", d)
	}
}

func TestRoundKm(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.234, 1.23},
		{1.235, 1.24},
		{0, 0},
		{117.999, 118.0},
	}
	for _, tc := range tests {
		if got := RoundKm(tc.in); got != tc.want {
			t.Fatalf("RoundKm(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
