package calculator

import (
	"strings"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/models"
)

// DistanceFunc returns the distance between two points in kilometers.
type DistanceFunc func(a, b models.Coordinate) float64

// Method names a distance implementation.
type Method string

const (
	MethodHaversine Method = "haversine"
	MethodVincenty  Method = "vincenty"
)

// ParseMethod resolves a method name. The empty string selects haversine.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodHaversine:
		return MethodHaversine, nil
	case MethodVincenty:
		return MethodVincenty, nil
	default:
		return "", eris.Errorf("calculator: unknown distance method %q", s)
	}
}

// Func returns the DistanceFunc for m, defaulting to haversine.
func (m Method) Func() DistanceFunc {
	if m == MethodVincenty {
		return VincentyKM
	}
	return HaversineKM
}

// DistancesFrom evaluates fn from ref to every point.
func DistancesFrom(ref models.Coordinate, points []models.Coordinate, fn DistanceFunc) []float64 {
	if fn == nil {
		fn = HaversineKM
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = fn(ref, p)
	}
	return out
}
