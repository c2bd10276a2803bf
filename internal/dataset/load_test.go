package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-sim/internal/excel"
)

const customersCSV = "\ufeffsegmento,zona,bairro,latitude,longitude,tipo_servico_demandado,nivel_1_servico\n" +
	"A,Sul,Moema,-23.55,-46.63,Troca de pneu,\n" +
	"B,Norte,Santana,-23.50,-46.62,Freio,Freios\n"

const providersCSV = "nome_oficina;latitude;longitude;segmento;zona;bairro;servicos_realizados\n" +
	"Oficina Central;-23,55;-46,63;A_B;Sul;Moema;['Troca de pneu']\n" +
	"Auto Elétrica Norte;-23,50;-46,62;B;Norte;Santana\n"

func TestReadCustomersCSV(t *testing.T) {
	customers, err := ReadCustomers(strings.NewReader(customersCSV), FormatCSV, Options{})
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "row-2", customers[0].ID)
	assert.Equal(t, "Pneus e Rodas", customers[0].CategoryL1)
	assert.Equal(t, "Troca de Pneus", customers[0].CategoryL2)
	assert.Equal(t, "Moema", customers[0].Neighborhood)

	assert.Equal(t, "row-3", customers[1].ID)
	assert.Equal(t, "Freios", customers[1].CategoryL1)
}

func TestReadProvidersSemicolonCSV(t *testing.T) {
	providers, err := ReadProviders(strings.NewReader(providersCSV), FormatCSV)
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, -23.55, providers[0].Loc.Lat)
	assert.True(t, providers[0].Segments.Has("B"))
	assert.True(t, providers[0].Services["troca de pneu"])
	assert.Equal(t, "Elétrica", providers[1].CategoryL1)
	assert.Empty(t, providers[1].Services)
}

func TestReadProvidersDuplicateName(t *testing.T) {
	in := "nome_oficina,latitude,longitude,segmento\nX,1,1,A\nX,2,2,A\n"
	_, err := ReadProviders(strings.NewReader(in), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestReadMissingColumns(t *testing.T) {
	_, err := ReadCustomers(strings.NewReader("segmento,latitude\nA,1\n"), FormatCSV, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")

	_, err = ReadProviders(strings.NewReader(""), FormatCSV)
	assert.Error(t, err)
}

func TestReadCustomersBadRowFailsLoad(t *testing.T) {
	in := "segmento,latitude,longitude,tipo_servico_demandado\nA,-23.5,-46.6,x\nA,north,-46.6,x\n"
	_, err := ReadCustomers(strings.NewReader(in), FormatCSV, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestReadCustomersXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, excel.WriteSheets(&buf, []excel.Sheet{{
		Name:   "clientes",
		Header: []string{"Segmento", "Latitude", "Longitude", "tipo_servico_demandado", "zona"},
		Rows: [][]interface{}{
			{"A", -23.55, -46.63, "Polimento"},
			{"B", "-23,56", "-46,64", "Insulfilm", "Leste"},
		},
	}}))

	customers, err := ReadCustomers(bytes.NewReader(buf.Bytes()), FormatXLSX, Options{})
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Estética Automotiva", customers[0].CategoryL1)
	assert.Equal(t, "", customers[0].Zone)
	assert.Equal(t, -23.56, customers[1].Loc.Lat)
	assert.Equal(t, "Leste", customers[1].Zone)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	cPath := filepath.Join(dir, "clientes.csv")
	pPath := filepath.Join(dir, "oficinas.csv")
	require.NoError(t, os.WriteFile(cPath, []byte(customersCSV), 0o644))
	require.NoError(t, os.WriteFile(pPath, []byte(providersCSV), 0o644))

	customers, err := LoadCustomers(cPath, Options{})
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	providers, err := LoadProviders(pPath)
	require.NoError(t, err)
	assert.Len(t, providers, 2)

	_, err = LoadProviders(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromName("Base.XLSX"))
	assert.Equal(t, FormatCSV, FormatFromName("base.csv"))
	assert.Equal(t, FormatCSV, FormatFromName("base"))
}
