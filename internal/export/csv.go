// Package export serializes simulation output for the presentation layer:
// delimited text with a fixed column layout, GeoJSON layers and xlsx reports.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"coverage-sim/internal/models"
)

// CustomerRow is one line of the customer export. Field order is the
// column order consumers depend on.
type CustomerRow struct {
	Segment         string `csv:"segmento"`
	Zone            string `csv:"zona"`
	Neighborhood    string `csv:"bairro"`
	Latitude        string `csv:"latitude"`
	Longitude       string `csv:"longitude"`
	Service         string `csv:"tipo_servico_demandado"`
	NearestProvider string `csv:"oficina_mais_proxima"`
	DistanceKM      string `csv:"distancia_oficina_mais_proxima"`
}

// ProviderRow is one line of the provider export.
type ProviderRow struct {
	Name         string `csv:"nome_oficina"`
	Segment      string `csv:"segmento"`
	Zone         string `csv:"zona"`
	Neighborhood string `csv:"bairro"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	Category     string `csv:"categoria_servico"`
	Subtype      string `csv:"servico_nivel2"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CustomerRows pairs customers with their assignments by CustomerIndex.
// Customers without an assignment, or with an unserved one, get the
// unserved label and an empty distance.
func CustomerRows(customers []models.Customer, assignments []models.Assignment) []CustomerRow {
	byIndex := make(map[int]models.Assignment, len(assignments))
	for _, a := range assignments {
		byIndex[a.CustomerIndex] = a
	}

	rows := make([]CustomerRow, len(customers))
	for i, c := range customers {
		a := byIndex[i]
		row := CustomerRow{
			Segment:         c.Segment,
			Zone:            c.Zone,
			Neighborhood:    c.Neighborhood,
			Latitude:        formatFloat(c.Loc.Lat),
			Longitude:       formatFloat(c.Loc.Lon),
			Service:         c.ServiceText,
			NearestProvider: a.ProviderLabel(),
		}
		if a.Served() {
			row.DistanceKM = formatFloat(a.DistanceKM)
		}
		rows[i] = row
	}
	return rows
}

func ProviderRows(providers []models.Provider) []ProviderRow {
	rows := make([]ProviderRow, len(providers))
	for i, p := range providers {
		rows[i] = ProviderRow{
			Name:         p.Name,
			Segment:      strings.Join(p.Segments.Sorted(), "_"),
			Zone:         p.Zone,
			Neighborhood: p.Neighborhood,
			Latitude:     formatFloat(p.Loc.Lat),
			Longitude:    formatFloat(p.Loc.Lon),
			Category:     p.CategoryL1,
			Subtype:      p.CategoryL2,
		}
	}
	return rows
}

// WriteCustomersCSV writes the customer export: UTF-8, header row, no index.
func WriteCustomersCSV(w io.Writer, customers []models.Customer, assignments []models.Assignment) error {
	return writeCSV(w, CustomerRows(customers, assignments), CustomerRow{})
}

// WriteProvidersCSV writes the provider export: UTF-8, header row, no index.
func WriteProvidersCSV(w io.Writer, providers []models.Provider) error {
	return writeCSV(w, ProviderRows(providers), ProviderRow{})
}

func writeCSV[T any](w io.Writer, rows []T, zero T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(rows) == 0 {
		err = enc.EncodeHeader(zero)
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return eris.Wrap(err, "export: encode csv")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}
