package calculator

import (
	"math"

	"github.com/twpayne/go-geom"

	"coverage-sim/internal/models"
)

// radiusMargin widens the prefilter so ellipsoidal distances, which can be
// shorter than spherical ones, are never cut by the box.
const radiusMargin = 1.01

// Centroid returns the arithmetic mean of latitude and of longitude.
// ok is false when points is empty.
func Centroid(points []models.Coordinate) (c models.Coordinate, ok bool) {
	if len(points) == 0 {
		return models.Coordinate{}, false
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return models.Coordinate{Lat: lat / n, Lon: lon / n}, true
}

// SearchBounds returns a lon/lat box containing every point within radiusKM
// of ref, or nil when no useful box exists (pole or antimeridian overlap).
func SearchBounds(ref models.Coordinate, radiusKM float64) *geom.Bounds {
	c := radiusKM * radiusMargin / EarthRadiusKM
	latPad := c * 180 / math.Pi
	maxAbsLat := math.Abs(ref.Lat) + latPad
	if maxAbsLat >= 90 {
		return nil
	}
	s := math.Sin(c/2) / math.Cos(toRadians(maxAbsLat))
	if s >= 1 {
		return nil
	}
	lonPad := 2 * math.Asin(s) * 180 / math.Pi
	if ref.Lon-lonPad < -180 || ref.Lon+lonPad > 180 {
		return nil
	}
	return geom.NewBounds(geom.XY).Set(
		ref.Lon-lonPad, ref.Lat-latPad,
		ref.Lon+lonPad, ref.Lat+latPad,
	)
}

// WithinRadius returns the indices of points whose distance to ref is at most
// radiusKM, in input order. The boundary is inclusive.
func WithinRadius(points []models.Coordinate, ref models.Coordinate, radiusKM float64, fn DistanceFunc) []int {
	if len(points) == 0 || !(radiusKM > 0) {
		return nil
	}
	if fn == nil {
		fn = HaversineKM
	}
	box := SearchBounds(ref, radiusKM)

	var idx []int
	for i, p := range points {
		if box != nil && !box.OverlapsPoint(geom.XY, geom.Coord{p.Lon, p.Lat}) {
			continue
		}
		if fn(ref, p) <= radiusKM {
			idx = append(idx, i)
		}
	}
	return idx
}
