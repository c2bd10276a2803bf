// Package aggregate turns assignment results into count tables split by
// provider role.
package aggregate

import (
	"sort"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/models"
)

// Dimension is the customer attribute a table is grouped by.
type Dimension string

const (
	BySegment    Dimension = "segment"
	ByCategoryL1 Dimension = "category_l1"
	ByCategoryL2 Dimension = "category_l2"
)

// Dimensions lists every supported dimension in report order.
var Dimensions = []Dimension{BySegment, ByCategoryL1, ByCategoryL2}

func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", eris.Errorf("aggregate: unknown dimension %q", s)
}

// Value extracts the dimension value from a customer.
func (d Dimension) Value(c models.Customer) string {
	switch d {
	case ByCategoryL1:
		return c.CategoryL1
	case ByCategoryL2:
		return c.CategoryL2
	default:
		return c.Segment
	}
}

// Row holds the counts for one dimension value.
type Row struct {
	Value      string `json:"value"`
	Principal  int    `json:"principal"`
	Competitor int    `json:"competitor"`
}

// Table is a dimension's rows sorted by value.
type Table struct {
	Dimension Dimension `json:"dimension"`
	Rows      []Row     `json:"rows"`
}

// Totals sums the principal and competitor columns.
func (t Table) Totals() (principal, competitor int) {
	for _, r := range t.Rows {
		principal += r.Principal
		competitor += r.Competitor
	}
	return principal, competitor
}

// Aggregate counts served customers per dimension value and provider role.
// Unserved customers and providers without a role are skipped. A value seen
// for only one role still gets a row, with zero in the other column.
func Aggregate(assignments []models.Assignment, customers []models.Customer, roles map[string]models.Role, dim Dimension) Table {
	counts := make(map[string]*Row)
	for _, a := range assignments {
		if !a.Served() || a.CustomerIndex < 0 || a.CustomerIndex >= len(customers) {
			continue
		}
		role, ok := roles[a.Provider]
		if !ok {
			continue
		}
		v := dim.Value(customers[a.CustomerIndex])
		row, ok := counts[v]
		if !ok {
			row = &Row{Value: v}
			counts[v] = row
		}
		switch role {
		case models.RolePrincipal:
			row.Principal++
		case models.RoleCompetitor:
			row.Competitor++
		}
	}

	t := Table{Dimension: dim, Rows: make([]Row, 0, len(counts))}
	for _, r := range counts {
		t.Rows = append(t.Rows, *r)
	}
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Value < t.Rows[j].Value })
	return t
}

// Summary is the headline count for a run.
type Summary struct {
	InRadius   int `json:"in_radius"`
	Principal  int `json:"principal"`
	Competitor int `json:"competitor"`
	Unserved   int `json:"unserved"`
}

func Summarize(assignments []models.Assignment, roles map[string]models.Role) Summary {
	s := Summary{InRadius: len(assignments)}
	for _, a := range assignments {
		if !a.Served() {
			s.Unserved++
			continue
		}
		switch roles[a.Provider] {
		case models.RolePrincipal:
			s.Principal++
		case models.RoleCompetitor:
			s.Competitor++
		}
	}
	return s
}

// ProviderCount is the number of customers captured by one provider.
type ProviderCount struct {
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	Customers int         `json:"customers"`
}

// PerProvider counts captured customers for every provider in roles,
// including those that captured none. Sorted by count, then name.
func PerProvider(assignments []models.Assignment, roles map[string]models.Role) []ProviderCount {
	counts := make(map[string]int, len(roles))
	for _, a := range assignments {
		if a.Served() {
			counts[a.Provider]++
		}
	}
	out := make([]ProviderCount, 0, len(roles))
	for name, role := range roles {
		out = append(out, ProviderCount{Name: name, Role: role, Customers: counts[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Customers != out[j].Customers {
			return out[i].Customers > out[j].Customers
		}
		return out[i].Name < out[j].Name
	})
	return out
}
