package utils

import (
	"math"

	"bora-alugar-backend/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometres
func HaversineKm(a, b domain.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceKm is HaversineKm rounded to the nearest whole kilometre
func DistanceKm(a, b domain.GeoPoint) int {
	return int(math.Round(HaversineKm(a, b)))
}
