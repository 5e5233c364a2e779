package coerce

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// ColumnTypes names the columns to convert. Columns not listed stay text.
type ColumnTypes struct {
	Dates    []string
	Numerics []string
}

// DefaultColumnTypes are the typed columns of the CVM fund report extracts
func DefaultColumnTypes() ColumnTypes {
	return ColumnTypes{
		Dates:    domain.DateColumns,
		Numerics: domain.NumericColumns,
	}
}

// Stats counts cells that held text but failed to parse, per column
type Stats struct {
	Malformed map[string]int
}

// Total returns the number of malformed cells across all columns
func (s Stats) Total() int {
	total := 0
	for _, n := range s.Malformed {
		total += n
	}
	return total
}

// dateLayouts are tried in order; the first that parses wins
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// Coerce converts a raw extract into a typed table.
// Logic:
//  1. Trim whitespace around every header name
//  2. Convert listed date/numeric columns; unparsable cells become absent
//  3. Keep every other column as text; empty cells become absent
//
// Listed columns that the extract does not have are skipped.
// Returns an error only when the trimmed header is not a valid schema.
func Coerce(raw domain.RawTable, types ColumnTypes) (domain.Table, Stats, error) {
	header := make([]string, len(raw.Header))
	for i, name := range raw.Header {
		header[i] = strings.TrimSpace(name)
	}

	schema, err := domain.NewSchema(header)
	if err != nil {
		return domain.Table{}, Stats{}, err
	}

	kinds := make([]domain.Kind, len(header))
	for i := range kinds {
		kinds[i] = domain.KindString
	}
	for _, name := range types.Dates {
		if i, ok := schema.Index(name); ok {
			kinds[i] = domain.KindDate
		}
	}
	for _, name := range types.Numerics {
		if i, ok := schema.Index(name); ok {
			kinds[i] = domain.KindNumber
		}
	}

	stats := Stats{Malformed: make(map[string]int)}
	rows := make([][]domain.Value, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		row := make([]domain.Value, len(header))
		for i := range header {
			// Short rows leave trailing cells absent
			if i >= len(rawRow) {
				continue
			}
			cell := rawRow[i]
			value := convert(cell, kinds[i])
			if value.IsAbsent() && strings.TrimSpace(cell) != "" {
				stats.Malformed[header[i]]++
			}
			row[i] = value
		}
		rows = append(rows, row)
	}

	table, err := domain.NewTable(raw.Name, schema, rows)
	if err != nil {
		return domain.Table{}, Stats{}, err
	}
	return table, stats, nil
}

func convert(cell string, kind domain.Kind) domain.Value {
	switch kind {
	case domain.KindDate:
		return ParseDate(cell)
	case domain.KindNumber:
		return ParseNumber(cell)
	default:
		if cell == "" {
			return domain.Absent()
		}
		return domain.String(cell)
	}
}

// ParseDate parses a calendar date; anything else is absent.
// The result is the UTC midnight of the day the text names.
func ParseDate(s string) domain.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Absent()
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return domain.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		}
	}
	return domain.Absent()
}

// Parsed numbers are held to the float64 range. Exponents outside it would
// render as millions of digits.
const (
	maxMagnitude = 308
	minMagnitude = -324
)

// ParseNumber parses a finite decimal ("1234.5", "-3", "1e6"); anything else is absent.
// Numbers too large for a float64 are absent and numbers too small for one are zero.
func ParseNumber(s string) domain.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Absent()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Absent()
	}

	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return domain.Number(decimal.Zero)
	}
	// order of magnitude of coef * 10^exp, computed without expanding it
	magnitude := len(coef.Abs(coef).String()) - 1 + int(d.Exponent())
	switch {
	case magnitude > maxMagnitude:
		return domain.Absent()
	case magnitude < minMagnitude:
		return domain.Number(decimal.Zero)
	case math.IsInf(d.InexactFloat64(), 0):
		return domain.Absent()
	}
	return domain.Number(d)
}
