// Package filter narrows the customer table before a simulation, computes
// the option lists offered for each filter and lists providers by zone for
// the principal picker.
package filter

import (
	"sort"

	"coverage-sim/internal/models"
)

// Set is a selection of allowed values. An empty set allows everything.
type Set []string

func (s Set) allows(v string) bool {
	if len(s) == 0 {
		return true
	}
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Filters holds the active selection per dimension.
type Filters struct {
	Segments      Set `json:"segments,omitempty" mapstructure:"segments"`
	Zones         Set `json:"zones,omitempty" mapstructure:"zones"`
	Neighborhoods Set `json:"neighborhoods,omitempty" mapstructure:"neighborhoods"`
	CategoryL1    Set `json:"category_l1,omitempty" mapstructure:"category_l1"`
	CategoryL2    Set `json:"category_l2,omitempty" mapstructure:"category_l2"`
}

// level is one step of the cascade: segment → zone → neighborhood → L1 → L2.
type level int

const (
	levelSegment level = iota
	levelZone
	levelNeighborhood
	levelL1
	levelL2
	levelAll
)

// customerPasses checks the filters of every level strictly above upto.
func (f Filters) customerPasses(c models.Customer, upto level) bool {
	checks := []bool{
		f.Segments.allows(c.Segment),
		f.Zones.allows(c.Zone),
		f.Neighborhoods.allows(c.Neighborhood),
		f.CategoryL1.allows(c.CategoryL1),
		f.CategoryL2.allows(c.CategoryL2),
	}
	for i := level(0); i < upto; i++ {
		if !checks[i] {
			return false
		}
	}
	return true
}

// Customers returns the customers passing every filter, in input order.
func (f Filters) Customers(customers []models.Customer) []models.Customer {
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if f.customerPasses(c, levelAll) {
			out = append(out, c)
		}
	}
	return out
}

// Options lists the selectable values per filter.
type Options struct {
	Segments      []string `json:"segments"`
	Zones         []string `json:"zones"`
	Neighborhoods []string `json:"neighborhoods"`
	CategoryL1    []string `json:"category_l1"`
	CategoryL2    []string `json:"category_l2"`
}

// BuildOptions computes option lists from the customer table. With cascade
// set, each list only offers values from rows that pass the selections of
// the levels before it; otherwise every list comes from the full table.
func BuildOptions(customers []models.Customer, f Filters, cascade bool) Options {
	values := func(lv level, get func(models.Customer) string) []string {
		seen := make(map[string]bool)
		for _, c := range customers {
			if cascade && !f.customerPasses(c, lv) {
				continue
			}
			if v := get(c); v != "" {
				seen[v] = true
			}
		}
		out := make([]string, 0, len(seen))
		for v := range seen {
			out = append(out, v)
		}
		sort.Strings(out)
		return out
	}

	return Options{
		Segments:      values(levelSegment, func(c models.Customer) string { return c.Segment }),
		Zones:         values(levelZone, func(c models.Customer) string { return c.Zone }),
		Neighborhoods: values(levelNeighborhood, func(c models.Customer) string { return c.Neighborhood }),
		CategoryL1:    values(levelL1, func(c models.Customer) string { return c.CategoryL1 }),
		CategoryL2:    values(levelL2, func(c models.Customer) string { return c.CategoryL2 }),
	}
}

// ProvidersInZone lists providers located in zone; an empty zone lists all.
func ProvidersInZone(providers []models.Provider, zone string) []models.Provider {
	if zone == "" {
		return providers
	}
	var out []models.Provider
	for _, p := range providers {
		if p.Zone == zone {
			out = append(out, p)
		}
	}
	return out
}

// Zones lists the distinct provider zones, sorted.
func Zones(providers []models.Provider) []string {
	seen := make(map[string]bool)
	for _, p := range providers {
		if p.Zone != "" {
			seen[p.Zone] = true
		}
	}
	out := make([]string, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
