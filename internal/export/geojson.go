package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"coverage-sim/internal/models"
	"coverage-sim/internal/simulator"
)

// Layer names carried in the "layer" property of every feature.
const (
	LayerCentroid   = "centroid"
	LayerPrincipal  = "principal"
	LayerCompetitor = "competitor"
	LayerCustomer   = "customer"
)

func point(c models.Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat})
}

// Layers builds the map layers of a run: the radius centroid, principals,
// active competitors and in-radius customers. maxCustomers > 0 keeps an
// evenly strided sample of customers so heat maps stay renderable.
func Layers(res *simulator.Result, maxCustomers int) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	if res == nil || res.Empty {
		return fc
	}

	if res.Centroid != nil {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: point(*res.Centroid),
			Properties: map[string]interface{}{
				"layer":     LayerCentroid,
				"radius_km": res.Params.RadiusKM,
			},
		})
	}

	counts := make(map[string]int, len(res.PerProvider))
	for _, pc := range res.PerProvider {
		counts[pc.Name] = pc.Customers
	}
	addProviders := func(layer string, ps []models.Provider) {
		for _, p := range ps {
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       p.Name,
				Geometry: point(p.Loc),
				Properties: map[string]interface{}{
					"layer":       layer,
					"name":        p.Name,
					"segments":    p.Segments.Sorted(),
					"category_l1": p.CategoryL1,
					"customers":   counts[p.Name],
				},
			})
		}
	}
	addProviders(LayerPrincipal, res.Principals)
	addProviders(LayerCompetitor, res.Active)

	stride := 1
	if maxCustomers > 0 && len(res.Customers) > maxCustomers {
		stride = (len(res.Customers) + maxCustomers - 1) / maxCustomers
	}
	for i := 0; i < len(res.Customers) && i < len(res.Assignments); i += stride {
		c, a := res.Customers[i], res.Assignments[i]
		props := map[string]interface{}{
			"layer":       LayerCustomer,
			"segment":     c.Segment,
			"category_l1": c.CategoryL1,
			"provider":    a.ProviderLabel(),
		}
		if a.Served() {
			props["distance_km"] = a.DistanceKM
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         c.ID,
			Geometry:   point(c.Loc),
			Properties: props,
		})
	}
	return fc
}

// WriteGeoJSON writes the layers of a run as one FeatureCollection.
func WriteGeoJSON(w io.Writer, res *simulator.Result, maxCustomers int) error {
	if err := json.NewEncoder(w).Encode(Layers(res, maxCustomers)); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}
