package resolve

import (
	"fmt"
	"sort"

	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/simaogato/fundreport-ingest/internal/usecase/coerce"
)

// Columns names the identity and version columns of the merged table
type Columns struct {
	EntityID        string
	ReferencePeriod string
	Version         string
}

// DefaultColumns are the CVM report key columns
func DefaultColumns() Columns {
	return Columns{
		EntityID:        domain.ColEntityID,
		ReferencePeriod: domain.ColReferencePeriod,
		Version:         domain.ColVersion,
	}
}

// Result is the resolved record set plus the number of rows that could not be reconciled
type Result struct {
	Records []domain.Record
	Dropped int
}

type candidate struct {
	row     int
	key     domain.Key
	version domain.Value
}

// Latest keeps one record per (entity, reference period): the one with the highest version.
// Logic:
//  1. Coerce the version to a number; non-numeric versions are absent
//  2. Drop rows missing the entity ID or the reference period
//  3. Stable-sort by version descending, absent versions after every numeric one
//  4. Keep the first row seen per key
//
// Rows with equal versions keep their input order, so the earliest of them wins.
func Latest(t domain.Table, cols Columns) (Result, error) {
	winners, dropped, err := rank(t, cols)
	if err != nil {
		return Result{}, err
	}

	records := make([]domain.Record, 0, len(winners))
	for _, c := range winners {
		records = append(records, domain.NewRecord(c.key, c.version, t.Schema, t.Rows[c.row]))
	}

	return Result{Records: records, Dropped: dropped}, nil
}

// Reduce removes superseded rows from a single extract before it is joined
// without the version column. Rows keep their input order; rows without an
// identity pass through so the merged table still accounts for them.
// It returns the reduced table and the number of rows removed.
// A table without the version column is returned unchanged.
func Reduce(t domain.Table, cols Columns) (domain.Table, int, error) {
	if !t.Schema.Has(cols.Version) {
		return t, 0, nil
	}
	winners, _, err := rank(t, cols)
	if err != nil {
		return domain.Table{}, 0, err
	}

	keep := make([]bool, t.Len())
	for _, c := range winners {
		keep[c.row] = true
	}
	rows := make([][]domain.Value, 0, t.Len())
	for i, row := range t.Rows {
		if _, ok := keyOf(t, i, cols); ok && !keep[i] {
			continue
		}
		rows = append(rows, row)
	}

	reduced, err := domain.NewTable(t.Name, t.Schema, rows)
	if err != nil {
		return domain.Table{}, 0, err
	}
	return reduced, t.Len() - len(rows), nil
}

// rank returns the winning row of every key in version order and the number
// of rows without an identity
func rank(t domain.Table, cols Columns) ([]candidate, int, error) {
	if !t.Schema.Has(cols.EntityID) {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrMissingIdentity, cols.EntityID)
	}
	if !t.Schema.Has(cols.ReferencePeriod) {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrMissingIdentity, cols.ReferencePeriod)
	}

	candidates := make([]candidate, 0, t.Len())
	dropped := 0
	for i := range t.Rows {
		key, ok := keyOf(t, i, cols)
		if !ok {
			dropped++
			continue
		}
		candidates = append(candidates, candidate{
			row:     i,
			key:     key,
			version: versionOf(t.Cell(i, cols.Version)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return newer(candidates[i].version, candidates[j].version)
	})

	// Keyed by text: equal dates in different locations are not == as time.Time
	seen := make(map[string]bool, len(candidates))
	winners := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		id := c.key.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		winners = append(winners, c)
	}
	return winners, dropped, nil
}

// keyOf reads the identity of a row. Text periods are parsed as dates.
func keyOf(t domain.Table, row int, cols Columns) (domain.Key, bool) {
	entity := t.Cell(row, cols.EntityID)
	period := t.Cell(row, cols.ReferencePeriod)

	if period.Kind() == domain.KindString {
		period = coerce.ParseDate(period.Text())
	}
	date, ok := period.Time()
	if !ok || entity.IsAbsent() {
		return domain.Key{}, false
	}

	return domain.Key{EntityID: entity.Text(), ReferencePeriod: date}, true
}

func versionOf(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindNumber:
		return v
	case domain.KindString:
		return coerce.ParseNumber(v.Text())
	default:
		return domain.Absent()
	}
}

// newer orders numeric versions descending and puts absent ones last
func newer(a, b domain.Value) bool {
	av, aok := a.Decimal()
	bv, bok := b.Decimal()
	switch {
	case aok && bok:
		return av.GreaterThan(bv)
	case aok:
		return true
	default:
		return false
	}
}
