// Package dataset loads customer and provider tables from delimited text
// or xlsx workbooks and turns raw rows into validated records.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/eligibility"
	"coverage-sim/internal/models"
	"coverage-sim/internal/taxonomy"
)

// Column names of the customer table.
const (
	ColSegment      = "segmento"
	ColZone         = "zona"
	ColNeighborhood = "bairro"
	ColLatitude     = "latitude"
	ColLongitude    = "longitude"
	ColService      = "tipo_servico_demandado"
	ColLevel1       = "nivel_1_servico"
	ColLevel2       = "nivel_2_servico"
	ColID           = "id"
)

// Column names of the provider table.
const (
	ColName       = "nome_oficina"
	ColCategory   = "categoria_servico"
	ColSubtype    = "servico_nivel2"
	ColServiceSet = "servicos_realizados"
)

var (
	CustomerRequired = []string{ColSegment, ColLatitude, ColLongitude, ColService}
	ProviderRequired = []string{ColName, ColLatitude, ColLongitude, ColSegment}
)

// Options controls how raw rows become records.
type Options struct {
	// ReclassifyCustomers ignores upstream category columns and derives
	// categories from the demanded service text.
	ReclassifyCustomers bool
}

// CustomerRecord is one raw customer row.
type CustomerRecord struct {
	ID           string `csv:"id,omitempty"`
	Segment      string `csv:"segmento"`
	Zone         string `csv:"zona"`
	Neighborhood string `csv:"bairro"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	Service      string `csv:"tipo_servico_demandado"`
	Level1       string `csv:"nivel_1_servico,omitempty"`
	Level2       string `csv:"nivel_2_servico,omitempty"`
}

// ProviderRecord is one raw provider row.
type ProviderRecord struct {
	Name         string `csv:"nome_oficina"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	Segment      string `csv:"segmento"`
	Zone         string `csv:"zona"`
	Neighborhood string `csv:"bairro"`
	Category     string `csv:"categoria_servico,omitempty"`
	Subtype      string `csv:"servico_nivel2,omitempty"`
	Services     string `csv:"servicos_realizados,omitempty"`
}

// ParseCoord accepts both dot and comma decimal separators.
func ParseCoord(val string) (float64, error) {
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, eris.New("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func parseLocation(lat, lon string) (models.Coordinate, error) {
	la, err := ParseCoord(lat)
	if err != nil {
		return models.Coordinate{}, eris.Wrapf(err, "latitude %q", lat)
	}
	lo, err := ParseCoord(lon)
	if err != nil {
		return models.Coordinate{}, eris.Wrapf(err, "longitude %q", lon)
	}
	c := models.Coordinate{Lat: la, Lon: lo}
	if err := c.Validate(); err != nil {
		return models.Coordinate{}, err
	}
	return c, nil
}

// Customer validates the row and fills derived categories. line is the
// 1-based source row used in errors and as the fallback id.
func (r CustomerRecord) Customer(line int, opts Options) (models.Customer, error) {
	loc, err := parseLocation(r.Latitude, r.Longitude)
	if err != nil {
		return models.Customer{}, eris.Wrapf(err, "dataset: customer row %d", line)
	}
	c := models.Customer{
		ID:           strings.TrimSpace(r.ID),
		Loc:          loc,
		Segment:      strings.TrimSpace(r.Segment),
		Zone:         strings.TrimSpace(r.Zone),
		Neighborhood: strings.TrimSpace(r.Neighborhood),
		ServiceText:  strings.TrimSpace(r.Service),
		CategoryL1:   strings.TrimSpace(r.Level1),
		CategoryL2:   strings.TrimSpace(r.Level2),
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("row-%d", line)
	}
	cls := taxonomy.Classify(c.ServiceText)
	c.ServiceL1, c.ServiceL2 = cls.L1, cls.L2
	if opts.ReclassifyCustomers || c.CategoryL1 == "" {
		c.CategoryL1 = cls.L1
	}
	if opts.ReclassifyCustomers || c.CategoryL2 == "" {
		c.CategoryL2 = cls.L2
	}
	return c, nil
}

// Provider validates the row. Segment tags are underscore-joined; missing
// categories are derived from the provider name.
func (r ProviderRecord) Provider(line int) (models.Provider, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return models.Provider{}, eris.Errorf("dataset: provider row %d: empty %s", line, ColName)
	}
	loc, err := parseLocation(r.Latitude, r.Longitude)
	if err != nil {
		return models.Provider{}, eris.Wrapf(err, "dataset: provider row %d (%s)", line, name)
	}

	p := models.Provider{
		Name:         name,
		Loc:          loc,
		Segments:     ParseSegments(r.Segment),
		Zone:         strings.TrimSpace(r.Zone),
		Neighborhood: strings.TrimSpace(r.Neighborhood),
		CategoryL1:   strings.TrimSpace(r.Category),
		CategoryL2:   strings.TrimSpace(r.Subtype),
	}
	if p.CategoryL1 == "" {
		p.CategoryL1 = taxonomy.ClassifyL1(name)
	}
	if p.CategoryL2 == "" {
		p.CategoryL2 = taxonomy.ClassifyL2(name)
	}

	services, err := ParseServiceList(r.Services)
	if err != nil {
		return models.Provider{}, eris.Wrapf(err, "dataset: provider row %d (%s)", line, name)
	}
	p.Services = make(map[string]bool, len(services))
	for _, s := range services {
		p.Services[eligibility.ServiceKey(s)] = true
	}
	return p, nil
}

// ParseSegments splits underscore-joined segment tags.
func ParseSegments(s string) models.SegmentSet {
	var tags []string
	for _, t := range strings.Split(s, "_") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return models.NewSegmentSet(tags...)
}

// ParseServiceList parses a bracketed list literal such as
// "['Troca de óleo', \"Freio\"]". A bare value without brackets is split on
// commas. Empty input yields an empty list.
func ParseServiceList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, eris.Errorf("unterminated service list %q", s)
		}
		s = s[1 : len(s)-1]
	}

	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if v := strings.TrimSpace(cur.String()); v != "" {
			out = append(out, v)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, eris.Errorf("unterminated quote in service list %q", s)
	}
	flush()
	return out, nil
}
