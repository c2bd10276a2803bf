package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// rowReader yields table rows one at a time; *csv.Reader satisfies it.
type rowReader interface {
	Read() ([]string, error)
}

// paddedReader extends short rows to the header width. Spreadsheets drop
// trailing empty cells and hand-edited CSVs are often ragged.
type paddedReader struct {
	r     rowReader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	row, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	if len(row) < p.width {
		row = append(row, make([]string, p.width-len(row))...)
	}
	return row[:p.width], nil
}

// sliceReader serves rows already held in memory.
type sliceReader struct {
	rows [][]string
	pos  int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return out
}

func checkRequired(header, required []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("dataset: missing required columns %s", strings.Join(missing, ", "))
	}
	return nil
}

// decodeRows reads the header row, checks required columns and decodes every
// following row into T. Lines are 1-based with the header on line 1.
func decodeRows[T any](rr rowReader, required []string, each func(line int, rec T) error) error {
	raw, err := rr.Read()
	if errors.Is(err, io.EOF) {
		return eris.New("dataset: empty table")
	}
	if err != nil {
		return eris.Wrap(err, "dataset: read header")
	}
	header := normalizeHeader(raw)
	if err := checkRequired(header, required); err != nil {
		return err
	}

	dec, err := csvutil.NewDecoder(&paddedReader{r: rr, width: len(header)}, header...)
	if err != nil {
		return eris.Wrap(err, "dataset: init decoder")
	}
	for line := 2; ; line++ {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return eris.Wrapf(err, "dataset: decode row %d", line)
		}
		if err := each(line, rec); err != nil {
			return err
		}
	}
}

// newCSVReader strips a UTF-8 BOM and picks ';' as the delimiter when the
// header uses it instead of ','.
func newCSVReader(r io.Reader) (*csv.Reader, error) {
	data, err := io.ReadAll(transform.NewReader(r, xunicode.BOMOverride(transform.Nop)))
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		cr.Comma = ';'
	}
	return cr, nil
}
