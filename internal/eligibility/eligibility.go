// Package eligibility decides whether a provider may serve a customer.
package eligibility

import (
	"strings"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/models"
	"coverage-sim/internal/taxonomy"
)

// Mode selects the service gate. Every mode also requires the customer's
// segment to be among the provider's segment tags.
type Mode string

const (
	// ModeStrict requires both the category and the subtype to match.
	ModeStrict Mode = "strict"
	// ModeLenient requires the category or the subtype to match.
	ModeLenient Mode = "lenient"
	// ModeServiceSet requires the demanded service text to be in the
	// provider's declared service list.
	ModeServiceSet Mode = "service_set"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeLenient

// ParseMode resolves a mode name; the empty string selects DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DefaultMode, nil
	case ModeStrict, ModeLenient, ModeServiceSet:
		return m, nil
	default:
		return "", eris.Errorf("eligibility: unknown mode %q", s)
	}
}

// IsEligible applies the segment gate and the mode's service gate. The
// category gates compare against the classification of the demanded
// service text, not against upstream category columns.
func IsEligible(mode Mode, c models.Customer, p models.Provider) bool {
	if len(p.Segments) == 0 || !p.Segments.Has(c.Segment) {
		return false
	}

	if mode == ModeServiceSet {
		return p.Services[ServiceKey(c.ServiceText)]
	}
	l1, l2 := c.ServiceCategories()
	if mode == ModeStrict {
		return p.CategoryL1 == l1 && p.CategoryL2 == l2
	}
	return p.CategoryL1 == l1 || p.CategoryL2 == l2
}

// Predicate binds IsEligible to a mode.
func Predicate(mode Mode) func(models.Customer, models.Provider) bool {
	return func(c models.Customer, p models.Provider) bool {
		return IsEligible(mode, c, p)
	}
}

// ServiceKey normalizes a service name for set membership.
func ServiceKey(s string) string {
	return strings.Join(strings.Fields(taxonomy.Fold(s)), " ")
}
