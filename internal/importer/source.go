package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Source reads the rows of one tabular file format.
type Source interface {
	Rows(r io.Reader) ([]Row, error)
	Extensions() []string
}

// Registry maps lowercase file extensions (".csv") to sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source for each of its extensions. Panics on duplicate extension.
func (r *Registry) Register(s Source) {
	for _, ext := range s.Extensions() {
		key := strings.ToLower(ext)
		if _, ok := r.sources[key]; ok {
			panic("duplicate source extension: " + key)
		}
		r.sources[key] = s
	}
}

// Get returns the source for ext, or nil.
func (r *Registry) Get(ext string) Source {
	return r.sources[strings.ToLower(ext)]
}

// DefaultRegistry returns a registry with CSV, XLSX and XLS sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVSource{})
	r.Register(&XLSXSource{})
	r.Register(&XLSSource{})
	return r
}

// CSVSource reads delimited text. The delimiter is sniffed from the first
// non-blank line; blank lines are dropped. Every cell is a string.
type CSVSource struct{}

// Extensions returns the handled extensions.
func (s *CSVSource) Extensions() []string { return []string{".csv"} }

var delimiters = []rune{',', ';', '\t', '|'}

// Rows reads all records from r.
func (s *CSVSource) Rows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	var rows []Row
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffLines is how many non-blank lines sniffDelimiter looks at.
const sniffLines = 10

// sniffDelimiter picks the candidate that splits the most of the first
// non-blank lines into the same number of fields (more than one). Metadata
// lines above the header without any delimiter do not count against a
// candidate. Ties go to the larger field count, then the earlier candidate.
func sniffDelimiter(data []byte) rune {
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == sniffLines {
			break
		}
	}

	best := delimiters[0]
	bestLines, bestCount := 0, 0
	for _, d := range delimiters {
		freq := make(map[int]int)
		for _, l := range lines {
			if n := countOutsideQuotes(l, d); n > 0 {
				freq[n]++
			}
		}
		for count, nLines := range freq {
			if nLines > bestLines || nLines == bestLines && count > bestCount {
				best, bestLines, bestCount = d, nLines, count
			}
		}
	}
	return best
}

func countOutsideQuotes(line string, d rune) int {
	n := 0
	inQuotes := false
	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == d && !inQuotes:
			n++
		}
	}
	return n
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// XLSXSource reads the first sheet of an Office Open XML workbook. Numeric
// cells become float64 and date-formatted numeric cells become time.Time.
type XLSXSource struct{}

// Extensions returns the handled extensions.
func (s *XLSXSource) Extensions() []string { return []string{".xlsx"} }

// Rows reads the first sheet.
func (s *XLSXSource) Rows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no sheets found in workbook")
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	rows := make([]Row, 0, len(raw))
	for ri, rec := range raw {
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(rec))
		for ci, v := range rec {
			row[ci] = xlsxCell(f, sheet, ci+1, ri+1, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// xlsxCell converts a raw cell value to its native type.
func xlsxCell(f *excelize.File, sheet string, col, row int, v string) any {
	if strings.TrimSpace(v) == "" {
		return v
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return v
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return v
	}

	switch typ {
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
		return v
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		if isDateCell(f, sheet, name) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return t
			}
		}
		return n
	default:
		return v
	}
}

// Built-in number formats that render dates.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true,
	57: true, 58: true,
}

func isDateCell(f *excelize.File, sheet, name string) bool {
	idx, err := f.GetCellStyle(sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if dateNumFmts[style.NumFmt] {
		return true
	}
	return style.CustomNumFmt != nil && isDateFormatCode(*style.CustomNumFmt)
}

// isDateFormatCode reports whether a custom number format renders a date.
// Quoted literals and bracketed sections ([Red], [$€-410]) are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, c := range strings.ToLower(code) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(c)
		}
	}
	s := b.String()
	return strings.Contains(s, "yy") || strings.Contains(s, "d")
}

// XLSSource reads the first sheet of a legacy BIFF workbook. extrame/xls
// renders every cell as text; date cells rendered as RFC 3339 timestamps are
// turned back into time.Time.
type XLSSource struct{}

// Extensions returns the handled extensions.
func (s *XLSSource) Extensions() []string { return []string{".xls"} }

// Rows reads the first sheet.
func (s *XLSSource) Rows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no sheets found in workbook")
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		xr := sheet.Row(i)
		if xr == nil {
			continue
		}
		rec := make([]string, xr.LastCol())
		for j := range rec {
			rec[j] = xr.Col(j)
		}
		records = append(records, rec)
	}
	return xlsRows(records), nil
}

// xlsRows drops blank records and converts rendered cells.
func xlsRows(records [][]string) []Row {
	var rows []Row
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(rec))
		for j, v := range rec {
			row[j] = xlsCell(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func xlsCell(v string) any {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
		return t
	}
	return v
}
