package export

import (
	"io"
	"strings"

	"coverage-sim/internal/aggregate"
	"coverage-sim/internal/excel"
	"coverage-sim/internal/simulator"
)

// Report sheet names.
const (
	SheetCustomers   = "Clientes"
	SheetCompetitors = "Concorrentes"
	SheetProviders   = "Oficinas"
	SheetSegment     = "Segmento"
	SheetCategory    = "Categoria"
	SheetSubtype     = "Subtipo"
)

var tableSheets = map[aggregate.Dimension]string{
	aggregate.BySegment:    SheetSegment,
	aggregate.ByCategoryL1: SheetCategory,
	aggregate.ByCategoryL2: SheetSubtype,
}

// ReportSheets lays out a run as workbook sheets: the customer export, the
// competitor candidates, captured counts per provider and the three
// aggregation tables with a total column.
func ReportSheets(res *simulator.Result) []excel.Sheet {
	customers := excel.Sheet{
		Name: SheetCustomers,
		Header: []string{"segmento", "zona", "bairro", "latitude", "longitude",
			"tipo_servico_demandado", "oficina_mais_proxima", "distancia_oficina_mais_proxima"},
	}
	for i, c := range res.Customers {
		a := res.Assignments[i]
		var dist interface{} = ""
		if a.Served() {
			dist = a.DistanceKM
		}
		customers.Rows = append(customers.Rows, []interface{}{
			c.Segment, c.Zone, c.Neighborhood, c.Loc.Lat, c.Loc.Lon,
			c.ServiceText, a.ProviderLabel(), dist,
		})
	}

	competitors := excel.Sheet{
		Name: SheetCompetitors,
		Header: []string{"nome_oficina", "segmento", "zona", "bairro", "latitude", "longitude",
			"categoria_servico", "servico_nivel2"},
	}
	for _, p := range res.Candidates {
		competitors.Rows = append(competitors.Rows, []interface{}{
			p.Name, strings.Join(p.Segments.Sorted(), "_"), p.Zone, p.Neighborhood,
			p.Loc.Lat, p.Loc.Lon, p.CategoryL1, p.CategoryL2,
		})
	}

	providers := excel.Sheet{
		Name:   SheetProviders,
		Header: []string{"nome_oficina", "papel", "clientes"},
	}
	for _, pc := range res.PerProvider {
		providers.Rows = append(providers.Rows, []interface{}{pc.Name, string(pc.Role), pc.Customers})
	}

	sheets := []excel.Sheet{customers, competitors, providers}
	for _, t := range res.Tables() {
		sheets = append(sheets, tableSheet(tableSheets[t.Dimension], t))
	}
	return sheets
}

func tableSheet(name string, t aggregate.Table) excel.Sheet {
	s := excel.Sheet{
		Name:   name,
		Header: []string{string(t.Dimension), "Total", "Principal", "Concorrentes"},
	}
	for _, r := range t.Rows {
		s.Rows = append(s.Rows, []interface{}{r.Value, r.Principal + r.Competitor, r.Principal, r.Competitor})
	}
	return s
}

// WriteReport writes the xlsx report of a run to w.
func WriteReport(w io.Writer, res *simulator.Result) error {
	return excel.WriteSheets(w, ReportSheets(res))
}
