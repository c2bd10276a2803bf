package calculator

import (
	"math"

	"coverage-sim/internal/models"
)

// EarthRadiusKM is the mean sphere radius used by the haversine formula.
const EarthRadiusKM = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// HaversineKM computes the great-circle distance between two points in kilometers.
func HaversineKM(a, b models.Coordinate) float64 {
	if a == b {
		return 0
	}
	lat1Rad := toRadians(a.Lat)
	lat2Rad := toRadians(b.Lat)

	dLat := lat2Rad - lat1Rad
	dLon := toRadians(b.Lon) - toRadians(a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}

	return EarthRadiusKM * 2 * math.Asin(math.Sqrt(h))
}
