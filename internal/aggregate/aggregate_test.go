package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-sim/internal/models"
)

func fixture() ([]models.Customer, []models.Assignment, map[string]models.Role) {
	customers := []models.Customer{
		{ID: "c0", Segment: "A", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo"},
		{ID: "c1", Segment: "A", CategoryL1: "Mecânica", CategoryL2: "Embreagem"},
		{ID: "c2", Segment: "B", CategoryL1: "Freios", CategoryL2: "Pastilhas de Freio"},
		{ID: "c3", Segment: "C", CategoryL1: "Vidros", CategoryL2: "Para-brisa"},
		{ID: "c4", Segment: "B", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo"},
	}
	assignments := []models.Assignment{
		{CustomerIndex: 0, CustomerID: "c0", Provider: "Principal", DistanceKM: 0.5},
		{CustomerIndex: 1, CustomerID: "c1", Provider: "Rival", DistanceKM: 1.0},
		{CustomerIndex: 2, CustomerID: "c2", Provider: "Rival", DistanceKM: 2.0},
		{CustomerIndex: 3, CustomerID: "c3", DistanceKM: math.Inf(1)},
		{CustomerIndex: 4, CustomerID: "c4", Provider: "Principal", DistanceKM: 3.0},
	}
	roles := map[string]models.Role{
		"Principal": models.RolePrincipal,
		"Rival":     models.RoleCompetitor,
		"Idle":      models.RoleCompetitor,
	}
	return customers, assignments, roles
}

func TestAggregate(t *testing.T) {
	customers, assignments, roles := fixture()

	tests := []struct {
		dim  Dimension
		want []Row
	}{
		{
			dim: BySegment,
			want: []Row{
				{Value: "A", Principal: 1, Competitor: 1},
				{Value: "B", Principal: 1, Competitor: 1},
			},
		},
		{
			dim: ByCategoryL1,
			want: []Row{
				{Value: "Freios", Principal: 0, Competitor: 1},
				{Value: "Mecânica", Principal: 2, Competitor: 1},
			},
		},
		{
			dim: ByCategoryL2,
			want: []Row{
				{Value: "Embreagem", Principal: 0, Competitor: 1},
				{Value: "Pastilhas de Freio", Principal: 0, Competitor: 1},
				{Value: "Troca de Óleo", Principal: 2, Competitor: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.dim), func(t *testing.T) {
			table := Aggregate(assignments, customers, roles, tt.dim)
			assert.Equal(t, tt.dim, table.Dimension)
			assert.Equal(t, tt.want, table.Rows)

			p, c := table.Totals()
			s := Summarize(assignments, roles)
			assert.LessOrEqual(t, p+c, s.Principal+s.Competitor)
		})
	}
}

func TestAggregateExcludesUnserved(t *testing.T) {
	customers, assignments, roles := fixture()
	for _, dim := range Dimensions {
		for _, r := range Aggregate(assignments, customers, roles, dim).Rows {
			assert.NotEqual(t, "C", r.Value)
			assert.NotEqual(t, "Vidros", r.Value)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	table := Aggregate(nil, nil, nil, BySegment)
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
}

func TestSummarize(t *testing.T) {
	_, assignments, roles := fixture()
	assert.Equal(t, Summary{InRadius: 5, Principal: 2, Competitor: 2, Unserved: 1}, Summarize(assignments, roles))
}

func TestPerProvider(t *testing.T) {
	_, assignments, roles := fixture()
	assert.Equal(t, []ProviderCount{
		{Name: "Principal", Role: models.RolePrincipal, Customers: 2},
		{Name: "Rival", Role: models.RoleCompetitor, Customers: 2},
		{Name: "Idle", Role: models.RoleCompetitor, Customers: 0},
	}, PerProvider(assignments, roles))
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("category_l2")
	require.NoError(t, err)
	assert.Equal(t, ByCategoryL2, d)

	_, err = ParseDimension("zone")
	assert.Error(t, err)
}
