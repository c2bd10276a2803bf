package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"coverage-sim/internal/excel"
	"coverage-sim/internal/models"
)

// Format is the encoding of an input table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the format from a file extension, defaulting to CSV.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

func openRows(r io.Reader, format Format) (rowReader, error) {
	if format == FormatXLSX {
		rows, err := excel.ReadRows(r, "")
		if err != nil {
			return nil, err
		}
		return &sliceReader{rows: rows}, nil
	}
	return newCSVReader(r)
}

// ReadCustomers decodes a customer table. Any invalid row fails the whole
// load so bad coordinates never reach the distance code.
func ReadCustomers(r io.Reader, format Format, opts Options) ([]models.Customer, error) {
	rr, err := openRows(r, format)
	if err != nil {
		return nil, err
	}
	var customers []models.Customer
	err = decodeRows(rr, CustomerRequired, func(line int, rec CustomerRecord) error {
		c, err := rec.Customer(line, opts)
		if err != nil {
			return err
		}
		customers = append(customers, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// ReadProviders decodes a provider table. Provider names must be unique.
func ReadProviders(r io.Reader, format Format) ([]models.Provider, error) {
	rr, err := openRows(r, format)
	if err != nil {
		return nil, err
	}
	var providers []models.Provider
	seen := make(map[string]int)
	err = decodeRows(rr, ProviderRequired, func(line int, rec ProviderRecord) error {
		p, err := rec.Provider(line)
		if err != nil {
			return err
		}
		if first, dup := seen[p.Name]; dup {
			return eris.Errorf("dataset: provider row %d: duplicate name %q (first on row %d)", line, p.Name, first)
		}
		seen[p.Name] = line
		providers = append(providers, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func LoadCustomers(path string, opts Options) ([]models.Customer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open customers")
	}
	defer f.Close()
	return ReadCustomers(f, FormatFromName(path), opts)
}

func LoadProviders(path string) ([]models.Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open providers")
	}
	defer f.Close()
	return ReadProviders(f, FormatFromName(path))
}
