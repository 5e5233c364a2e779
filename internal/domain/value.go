package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind represents the type of a cell after coercion
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindDate
	KindNumber
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Presence is the three-state view of a numeric cell used by ratio rules
type Presence int

const (
	PresenceAbsent Presence = iota
	PresenceZero
	PresenceNonZero
)

// ZeroPolicy decides whether a present zero operand counts as a value or as a missing one
type ZeroPolicy string

const (
	// ZeroAsAbsent treats a literal zero exactly like a missing value.
	ZeroAsAbsent ZeroPolicy = "absent"
	// ZeroAsValue treats a literal zero as an ordinary number.
	ZeroAsValue  ZeroPolicy = "value"
)

// DefaultZeroPolicy: a zero net asset value or unit count never produces a book value,
// and a zero distribution column falls through to the next candidate.
const DefaultZeroPolicy = ZeroAsAbsent

// Valid reports whether p is a known policy
func (p ZeroPolicy) Valid() bool {
	return p == ZeroAsAbsent || p == ZeroAsValue
}

// Value is a single typed cell. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	date time.Time
	num  decimal.Decimal
}

// Absent returns the explicit missing marker
func Absent() Value {
	return Value{}
}

// String returns a text cell
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Date returns a date cell
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: t}
}

// Number returns a numeric cell
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Kind returns the kind of the cell
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the cell holds no value
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Str returns the text of a string cell
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Time returns the date of a date cell
func (v Value) Time() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// Decimal returns the number of a numeric cell
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// Presence classifies a numeric cell. Non-numeric cells are absent.
func (v Value) Presence() Presence {
	if v.kind != KindNumber {
		return PresenceAbsent
	}
	if v.num.IsZero() {
		return PresenceZero
	}
	return PresenceNonZero
}

// Usable reports whether a numeric cell may feed a computation under the given policy
func (v Value) Usable(policy ZeroPolicy) bool {
	switch v.Presence() {
	case PresenceNonZero:
		return true
	case PresenceZero:
		return policy == ZeroAsValue
	default:
		return false
	}
}

// Text returns the canonical text of the cell; absent cells render as ""
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindDate:
		return v.date.Format(DateLayout)
	case KindNumber:
		return v.num.String()
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and value
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindDate:
		return v.date.Equal(o.date)
	case KindNumber:
		return v.num.Equal(o.num)
	default:
		return true
	}
}

// DateLayout is the wire format of reference periods
const DateLayout = "2006-01-02"
