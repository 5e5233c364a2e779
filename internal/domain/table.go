package domain

import (
	"errors"
	"fmt"
)

// RawTable is an extract as read from disk: a header and rows of text cells
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Schema is an ordered, validated set of column names
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema validates the column names once so lookups never need to re-check them
func NewSchema(columns []string) (*Schema, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Schema{columns: cols, index: index}, nil
}

// Columns returns a copy of the column names in order
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Len returns the number of columns
func (s *Schema) Len() int {
	return len(s.columns)
}

// Index returns the position of a column
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has reports whether the column exists
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Table is a typed table. Every row has exactly Schema.Len() cells.
type Table struct {
	Name   string
	Schema *Schema
	Rows   [][]Value
}

// NewTable builds a table and checks row widths against the schema
func NewTable(name string, schema *Schema, rows [][]Value) (Table, error) {
	if schema == nil {
		return Table{}, errors.New("table schema cannot be nil")
	}
	for i, row := range rows {
		if len(row) != schema.Len() {
			return Table{}, fmt.Errorf("row %d has %d cells, schema has %d columns", i, len(row), schema.Len())
		}
	}
	return Table{Name: name, Schema: schema, Rows: rows}, nil
}

// Cell returns the value at (row, column); unknown columns are absent
func (t Table) Cell(row int, column string) Value {
	i, ok := t.Schema.Index(column)
	if !ok {
		return Absent()
	}
	return t.Rows[row][i]
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}
