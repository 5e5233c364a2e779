package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// OuterJoin performs a full outer join of the tables on the given key columns.
// Logic:
//  1. Every key seen in any table yields output rows, in first-seen order
//  2. Rows sharing a key are combined as a cartesian product (one row per combination)
//  3. A table with no row for a key contributes absent cells for its columns
//
// Column collisions: a non-key column already contributed by an earlier table is
// renamed "<column>_<earlier table name>" and the later table keeps the bare name.
func OuterJoin(on []string, tables ...domain.Table) (domain.Table, error) {
	if len(on) == 0 {
		return domain.Table{}, errors.New("join needs at least one key column")
	}
	if len(tables) == 0 {
		return domain.Table{}, errors.New("join needs at least one table")
	}

	isKey := make(map[string]bool, len(on))
	for _, k := range on {
		isKey[k] = true
	}

	// Output layout: key columns first, then every table's own columns
	columns := append([]string{}, on...)
	owner := make(map[string]int) // output position of a bare non-key column
	sources := make([][]int, len(tables))
	for ti, t := range tables {
		sources[ti] = make([]int, 0, t.Schema.Len())
		for _, name := range t.Schema.Columns() {
			if isKey[name] {
				continue
			}
			if pos, taken := owner[name]; taken {
				earlier := tableOf(tables[:ti], name)
				columns[pos] = fmt.Sprintf("%s_%s", name, earlier)
			}
			owner[name] = len(columns)
			sources[ti] = append(sources[ti], len(columns))
			columns = append(columns, name)
		}
	}

	schema, err := domain.NewSchema(columns)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to build joined schema: %w", err)
	}

	// Group each table's rows by key text, remembering first-seen key order
	var order []string
	keyCells := make(map[string][]domain.Value)
	groups := make([]map[string][][]domain.Value, len(tables))
	for ti, t := range tables {
		groups[ti] = make(map[string][][]domain.Value)
		positions := make([]int, len(on))
		for ki, k := range on {
			pos, ok := t.Schema.Index(k)
			if !ok {
				return domain.Table{}, fmt.Errorf("table %q has no key column %q", t.Name, k)
			}
			positions[ki] = pos
		}

		for _, row := range t.Rows {
			cells := make([]domain.Value, len(on))
			texts := make([]string, len(on))
			for ki, pos := range positions {
				cells[ki] = row[pos]
				texts[ki] = row[pos].Text()
			}
			id := strings.Join(texts, "\x1f")
			if _, seen := keyCells[id]; !seen {
				keyCells[id] = cells
				order = append(order, id)
			}
			groups[ti][id] = append(groups[ti][id], row)
		}
	}

	var rows [][]domain.Value
	for _, id := range order {
		partial := [][]domain.Value{newRow(schema.Len(), keyCells[id])}
		for ti, t := range tables {
			matches := groups[ti][id]
			if len(matches) == 0 {
				continue
			}
			next := make([][]domain.Value, 0, len(partial)*len(matches))
			for _, base := range partial {
				for _, match := range matches {
					row := append([]domain.Value(nil), base...)
					fill(row, t, match, sources[ti], isKey)
					next = append(next, row)
				}
			}
			partial = next
		}
		rows = append(rows, partial...)
	}

	return domain.NewTable("merged", schema, rows)
}

func newRow(width int, key []domain.Value) []domain.Value {
	row := make([]domain.Value, width)
	copy(row, key)
	return row
}

// fill copies a source row's non-key cells into their output positions
func fill(dst []domain.Value, t domain.Table, src []domain.Value, positions []int, isKey map[string]bool) {
	next := 0
	for i, name := range t.Schema.Columns() {
		if isKey[name] {
			continue
		}
		dst[positions[next]] = src[i]
		next++
	}
}

// tableOf returns the name of the last table in tables that has column name
func tableOf(tables []domain.Table, name string) string {
	for i := len(tables) - 1; i >= 0; i-- {
		if tables[i].Schema.Has(name) {
			if tables[i].Name != "" {
				return tables[i].Name
			}
			return fmt.Sprintf("t%d", i)
		}
	}
	return "dup"
}
