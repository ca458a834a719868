// Package spreadsheet reads the first worksheet of an xlsx workbook into rows
// addressed by normalized header names.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheet      = errors.New("workbook has no worksheets")
	ErrMissingCell  = errors.New("cell is empty")
	ErrInvalidValue = errors.New("cell value is invalid")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"02-01-2006",
	"2006/01/02",
}

// Table is one worksheet: a header row and the data rows beneath it.
type Table struct {
	Sheet   string
	Columns []string
	Rows    []Row
}

// Row exposes the cells of one data row by header name.
type Row struct {
	// Number is the 1-based row number in the worksheet.
	Number int
	cells  map[string]string
}

func ReadFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

func readFirstSheet(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	t := &Table{Sheet: sheet}
	if len(raw) == 0 {
		return t, nil
	}

	header := raw[0]
	t.Columns = make([]string, len(header))
	for i, h := range header {
		t.Columns[i] = NormalizeHeader(h)
	}

	for i, cells := range raw[1:] {
		if isBlank(cells) {
			continue
		}
		row := Row{Number: i + 2, cells: make(map[string]string, len(t.Columns))}
		for j, col := range t.Columns {
			if col == "" || j >= len(cells) {
				continue
			}
			row.cells[col] = strings.TrimSpace(cells[j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader lowercases h and drops spaces and underscores, so
// "Monthly Salary", "monthly_salary" and "MonthlySalary" all match.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "\t", "").Replace(h)
}

// MissingColumns reports which of cols are absent from the header.
func (t *Table) MissingColumns(cols ...string) []string {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}
	var missing []string
	for _, c := range cols {
		if !present[NormalizeHeader(c)] {
			missing = append(missing, c)
		}
	}
	return missing
}

func (r Row) String(col string) string {
	return r.cells[NormalizeHeader(col)]
}

func (r Row) Float(col string) (float64, error) {
	s := r.String(col)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingCell, col)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, col, s)
	}
	return v, nil
}

// Int accepts integral floats such as "12.0", which spreadsheets often produce.
func (r Row) Int(col string) (int64, error) {
	v, err := r.Float(col)
	if err != nil {
		return 0, err
	}
	if v != float64(int64(v)) {
		return 0, fmt.Errorf("%w: %s=%q is not a whole number", ErrInvalidValue, col, r.String(col))
	}
	return int64(v), nil
}

// OptionalInt returns nil for an empty cell.
func (r Row) OptionalInt(col string) (*int, error) {
	if r.String(col) == "" {
		return nil, nil
	}
	v, err := r.Int(col)
	if err != nil {
		return nil, err
	}
	n := int(v)
	return &n, nil
}

// Date parses an Excel serial date or one of the common text layouts. The
// result is midnight UTC.
func (r Row) Date(col string) (time.Time, error) {
	s := r.String(col)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingCell, col)
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, col, s)
		}
		return dateOnly(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s=%q is not a date", ErrInvalidValue, col, s)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
