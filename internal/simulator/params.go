package simulator

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/calculator"
	"coverage-sim/internal/eligibility"
	"coverage-sim/internal/models"
)

// ErrInvalidParams marks parameter errors the caller should report as bad input.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Snapshot is the immutable input of a run. Compute never modifies it.
type Snapshot struct {
	Customers []models.Customer
	Providers []models.Provider
}

// Params is one set of operator choices.
type Params struct {
	Principals []string `json:"principals"`
	// ActiveCompetitors selects competitor candidates by name. Names that are
	// not candidates of this run are ignored.
	ActiveCompetitors []string `json:"active_competitors"`
	// AllCompetitorsActive activates every candidate regardless of
	// ActiveCompetitors.
	AllCompetitorsActive bool              `json:"all_competitors_active"`
	RadiusKM             float64           `json:"radius_km"`
	Mode                 eligibility.Mode  `json:"mode"`
	Distance             calculator.Method `json:"distance"`
}

// Validate reports whether p would be accepted by Compute.
func (p Params) Validate() error {
	_, err := p.normalize()
	return err
}

// normalize validates p and fills defaults for mode and distance method.
func (p Params) normalize() (Params, error) {
	if math.IsNaN(p.RadiusKM) || math.IsInf(p.RadiusKM, 0) || p.RadiusKM <= 0 {
		return p, eris.Wrapf(ErrInvalidParams, "radius must be a positive number, got %v", p.RadiusKM)
	}
	mode, err := eligibility.ParseMode(string(p.Mode))
	if err != nil {
		return p, eris.Wrap(ErrInvalidParams, err.Error())
	}
	method, err := calculator.ParseMethod(string(p.Distance))
	if err != nil {
		return p, eris.Wrap(ErrInvalidParams, err.Error())
	}
	p.Mode = mode
	p.Distance = method
	return p, nil
}

func nameSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}
