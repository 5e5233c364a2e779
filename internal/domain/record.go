package domain

import (
	"errors"
	"time"
)

// ErrMissingIdentity is returned when a table lacks one of the identity columns
var ErrMissingIdentity = errors.New("table is missing an identity column")

// Key identifies one fund report: the fund and the period it describes.
// The submission version is not part of the identity.
type Key struct {
	EntityID        string
	ReferencePeriod time.Time
}

// String renders the key as "<entity>@<yyyy-mm-dd>"
func (k Key) String() string {
	return k.EntityID + "@" + k.ReferencePeriod.Format(DateLayout)
}

// Record is the single authoritative row kept for a Key
type Record struct {
	Key     Key
	Version Value
	schema  *Schema
	cells   []Value
}

// NewRecord wraps a table row. The row must match the schema width.
func NewRecord(key Key, version Value, schema *Schema, cells []Value) Record {
	return Record{Key: key, Version: version, schema: schema, cells: cells}
}

// Get returns the named cell; missing columns are absent
func (r Record) Get(column string) Value {
	if r.schema == nil {
		return Absent()
	}
	i, ok := r.schema.Index(column)
	if !ok {
		return Absent()
	}
	return r.cells[i]
}

// Has reports whether the column exists in the record's schema
func (r Record) Has(column string) bool {
	return r.schema != nil && r.schema.Has(column)
}

// Strings returns every string-valued cell in column order
func (r Record) Strings() []string {
	out := make([]string, 0, len(r.cells))
	for _, cell := range r.cells {
		if s, ok := cell.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}
