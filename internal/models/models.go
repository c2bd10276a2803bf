package models

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Unserved is the provider label reported for customers no candidate can serve.
const Unserved = "Não Atendido"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects NaN, infinite and out-of-range coordinates.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return eris.Errorf("models: non-finite coordinate (%v, %v)", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return eris.Errorf("models: latitude %v out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return eris.Errorf("models: longitude %v out of range", c.Lon)
	}
	return nil
}

// Customer is one demand point. CategoryL1/L2 are either taken from
// upstream columns or derived from ServiceText at load time; they drive
// aggregation and filtering. ServiceL1/L2 always classify ServiceText and
// drive eligibility.
type Customer struct {
	ID           string     `json:"id"`
	Loc          Coordinate `json:"location"`
	Segment      string     `json:"segment"`
	Zone         string     `json:"zone"`
	Neighborhood string     `json:"neighborhood"`
	ServiceText  string     `json:"service_text"`
	CategoryL1   string     `json:"category_l1"`
	CategoryL2   string     `json:"category_l2"`
	ServiceL1    string     `json:"service_l1,omitempty"`
	ServiceL2    string     `json:"service_l2,omitempty"`
}

// ServiceCategories returns the classification of the demanded service,
// falling back to CategoryL1/L2 when ServiceText was never classified.
func (c Customer) ServiceCategories() (l1, l2 string) {
	if c.ServiceL1 != "" || c.ServiceL2 != "" {
		return c.ServiceL1, c.ServiceL2
	}
	return c.CategoryL1, c.CategoryL2
}

// Provider is a workshop location. Segments and Services are parsed once at
// load time.
type Provider struct {
	Name         string          `json:"name"`
	Loc          Coordinate      `json:"location"`
	Segments     SegmentSet      `json:"segments"`
	Zone         string          `json:"zone"`
	Neighborhood string          `json:"neighborhood"`
	CategoryL1   string          `json:"category_l1"`
	CategoryL2   string          `json:"category_l2"`
	Services     map[string]bool `json:"-"`
}

// SegmentSet is the set of customer segments a provider serves.
type SegmentSet map[string]bool

func NewSegmentSet(tags ...string) SegmentSet {
	s := make(SegmentSet, len(tags))
	for _, t := range tags {
		if t != "" {
			s[t] = true
		}
	}
	return s
}

func (s SegmentSet) Has(tag string) bool { return s[tag] }

// Sorted returns the tags in lexical order.
func (s SegmentSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s SegmentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *SegmentSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return eris.Wrap(err, "models: decode segments")
	}
	*s = NewSegmentSet(tags...)
	return nil
}

// Role is the partition imposed on providers at analysis time.
type Role string

const (
	RolePrincipal  Role = "principal"
	RoleCompetitor Role = "competitor"
)

// Assignment is the outcome of the nearest-provider scan for one customer.
// Provider is empty and DistanceKM is +Inf when nothing was eligible.
type Assignment struct {
	CustomerIndex int     `json:"customer_index"`
	CustomerID    string  `json:"customer_id"`
	Provider      string  `json:"provider,omitempty"`
	DistanceKM    float64 `json:"-"`
}

func (a Assignment) Served() bool { return a.Provider != "" }

// ProviderLabel returns the provider name or the unserved label.
func (a Assignment) ProviderLabel() string {
	if a.Served() {
		return a.Provider
	}
	return Unserved
}

// MarshalJSON encodes an unserved distance as null.
func (a Assignment) MarshalJSON() ([]byte, error) {
	type alias Assignment
	out := struct {
		alias
		DistanceKM *float64 `json:"distance_km"`
	}{alias: alias(a)}
	if a.Served() && !math.IsInf(a.DistanceKM, 0) {
		d := a.DistanceKM
		out.DistanceKM = &d
	}
	return json.Marshal(out)
}
