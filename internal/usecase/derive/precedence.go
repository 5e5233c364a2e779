package derive

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/simaogato/fundreport-ingest/internal/usecase/coerce"
)

// First returns the number held by the first candidate column that is present in the
// record and usable under the policy. Later candidates are not consulted once one matches.
// Text cells are parsed as numbers so untyped columns still take part.
func First(rec domain.Record, candidates []string, policy domain.ZeroPolicy) (decimal.Decimal, bool) {
	for _, column := range candidates {
		if !rec.Has(column) {
			continue
		}
		cell := rec.Get(column)
		if cell.Kind() == domain.KindString {
			cell = coerce.ParseNumber(cell.Text())
		}
		if cell.Usable(policy) {
			d, _ := cell.Decimal()
			return d, true
		}
	}
	return decimal.Zero, false
}

// Ratio divides num by den. The result is null when either operand is missing or
// unusable under the policy, and always when den is zero.
func Ratio(num, den decimal.NullDecimal, policy domain.ZeroPolicy) decimal.NullDecimal {
	if !num.Valid || !den.Valid || den.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	if policy == domain.ZeroAsAbsent && num.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Decimal.Div(den.Decimal))
}

// lookup is First with zero kept as a value, wrapped for optional output fields
func lookup(rec domain.Record, candidates []string) decimal.NullDecimal {
	d, ok := First(rec, candidates, domain.ZeroAsValue)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
