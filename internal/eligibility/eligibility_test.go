package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-sim/internal/models"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLenient, m)

	m, err = ParseMode("STRICT")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode("service_set")
	require.NoError(t, err)
	assert.Equal(t, ModeServiceSet, m)

	_, err = ParseMode("any")
	assert.Error(t, err)
}

func TestIsEligible(t *testing.T) {
	provider := models.Provider{
		Name:       "Oficina Central",
		Segments:   models.NewSegmentSet("A", "B"),
		CategoryL1: "Mecânica",
		CategoryL2: "Troca de Óleo",
		Services:   map[string]bool{ServiceKey("Troca de óleo"): true},
	}

	tests := []struct {
		name     string
		customer models.Customer
		strict   bool
		lenient  bool
		set      bool
	}{
		{
			name:     "both levels match",
			customer: models.Customer{Segment: "A", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo", ServiceText: "troca de ÓLEO"},
			strict:   true,
			lenient:  true,
			set:      true,
		},
		{
			name:     "category only",
			customer: models.Customer{Segment: "B", CategoryL1: "Mecânica", CategoryL2: "Embreagem", ServiceText: "Embreagem"},
			lenient:  true,
		},
		{
			name:     "subtype only",
			customer: models.Customer{Segment: "A", CategoryL1: "Outros Serviços", CategoryL2: "Troca de Óleo", ServiceText: "Troca  de óleo"},
			lenient:  true,
			set:      true,
		},
		{
			name:     "segment mismatch blocks everything",
			customer: models.Customer{Segment: "C", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo", ServiceText: "Troca de óleo"},
		},
		{
			name:     "nothing matches",
			customer: models.Customer{Segment: "A", CategoryL1: "Vidros", CategoryL2: "Para-brisa", ServiceText: "Parabrisa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, IsEligible(ModeStrict, tt.customer, provider))
			assert.Equal(t, tt.lenient, IsEligible(ModeLenient, tt.customer, provider))
			assert.Equal(t, tt.set, IsEligible(ModeServiceSet, tt.customer, provider))
			// Repeated evaluation gives the same answer.
			assert.Equal(t, tt.lenient, Predicate(ModeLenient)(tt.customer, provider))
		})
	}
}

func TestIsEligibleUsesServiceClassification(t *testing.T) {
	provider := models.Provider{
		Segments:   models.NewSegmentSet("A"),
		CategoryL1: "Mecânica",
		CategoryL2: "Embreagem",
	}
	// Upstream columns say brakes; the service text classifies as engine work.
	c := models.Customer{
		Segment:     "A",
		ServiceText: "Retifica de motor",
		CategoryL1:  "Freios",
		CategoryL2:  "Pastilhas de Freio",
		ServiceL1:   "Mecânica",
		ServiceL2:   "Retífica de Motor",
	}
	assert.True(t, IsEligible(ModeLenient, c, provider))
	assert.False(t, IsEligible(ModeStrict, c, provider))

	provider.CategoryL2 = "Retífica de Motor"
	assert.True(t, IsEligible(ModeStrict, c, provider))

	c.ServiceL1, c.ServiceL2 = "", ""
	assert.False(t, IsEligible(ModeLenient, c, models.Provider{Segments: models.NewSegmentSet("A"), CategoryL1: "Mecânica", CategoryL2: "Embreagem"}),
		"without a service classification the category columns are used")
}

func TestEmptySegmentsNeverEligible(t *testing.T) {
	c := models.Customer{Segment: "", CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo", ServiceText: "x"}
	for _, p := range []models.Provider{
		{CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo", Services: map[string]bool{"x": true}},
		{Segments: models.NewSegmentSet(""), CategoryL1: "Mecânica", CategoryL2: "Troca de Óleo"},
	} {
		for _, m := range []Mode{ModeStrict, ModeLenient, ModeServiceSet} {
			assert.False(t, IsEligible(m, c, p), "mode %s", m)
		}
	}
}
