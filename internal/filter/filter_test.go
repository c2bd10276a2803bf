package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coverage-sim/internal/models"
)

var customers = []models.Customer{
	{ID: "1", Segment: "A", Zone: "Norte", Neighborhood: "Santana", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo"},
	{ID: "2", Segment: "A", Zone: "Sul", Neighborhood: "Moema", CategoryL1: "Freios", CategoryL2: "Pastilhas de Freio"},
	{ID: "3", Segment: "B", Zone: "Sul", Neighborhood: "Jabaquara", CategoryL1: "Mecânica", CategoryL2: "Embreagem"},
	{ID: "4", Segment: "C", Zone: "Leste", Neighborhood: "Tatuapé", CategoryL1: "Vidros", CategoryL2: "Para-brisa"},
}

var providers = []models.Provider{
	{Name: "Norte Auto", Zone: "Norte", Neighborhood: "Santana", Segments: models.NewSegmentSet("A"), CategoryL1: "Mecânica"},
	{Name: "Sul Freios", Zone: "Sul", Neighborhood: "Moema", Segments: models.NewSegmentSet("A", "B"), CategoryL1: "Freios"},
	{Name: "Leste Vidros", Zone: "Leste", Neighborhood: "Tatuapé", Segments: models.NewSegmentSet("C"), CategoryL1: "Vidros"},
}

func ids(cs []models.Customer) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func names(ps []models.Provider) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFiltersCustomers(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "no filters", filters: Filters{}, want: []string{"1", "2", "3", "4"}},
		{name: "segment", filters: Filters{Segments: Set{"A"}}, want: []string{"1", "2"}},
		{name: "segment and zone", filters: Filters{Segments: Set{"A", "B"}, Zones: Set{"Sul"}}, want: []string{"2", "3"}},
		{name: "category", filters: Filters{CategoryL1: Set{"Mecânica"}, CategoryL2: Set{"Embreagem"}}, want: []string{"3"}},
		{name: "nothing matches", filters: Filters{Neighborhoods: Set{"Pinheiros"}}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filters.Customers(customers)))
		})
	}
}

func TestBuildOptionsCascade(t *testing.T) {
	f := Filters{Segments: Set{"A"}, Zones: Set{"Sul"}}

	cascade := BuildOptions(customers, f, true)
	assert.Equal(t, []string{"A", "B", "C"}, cascade.Segments, "first level is never narrowed")
	assert.Equal(t, []string{"Norte", "Sul"}, cascade.Zones)
	assert.Equal(t, []string{"Moema"}, cascade.Neighborhoods)
	assert.Equal(t, []string{"Freios"}, cascade.CategoryL1)
	assert.Equal(t, []string{"Pastilhas de Freio"}, cascade.CategoryL2)

	independent := BuildOptions(customers, f, false)
	assert.Equal(t, []string{"Leste", "Norte", "Sul"}, independent.Zones)
	assert.Equal(t, []string{"Jabaquara", "Moema", "Santana", "Tatuapé"}, independent.Neighborhoods)
	assert.Equal(t, []string{"Freios", "Mecânica", "Vidros"}, independent.CategoryL1)
}

func TestProvidersInZone(t *testing.T) {
	assert.Len(t, ProvidersInZone(providers, ""), 3)
	assert.Equal(t, []string{"Sul Freios"}, names(ProvidersInZone(providers, "Sul")))
	assert.Empty(t, ProvidersInZone(providers, "Oeste"))
	assert.Equal(t, []string{"Leste", "Norte", "Sul"}, Zones(providers))
}
