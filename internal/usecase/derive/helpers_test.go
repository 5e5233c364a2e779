package derive

import (
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/stretchr/testify/require"
)

// cells describes one record: numeric values are given as strings, "" means absent
type cells map[string]string

var numeric = map[string]bool{}

func init() {
	for _, c := range domain.NumericColumns {
		numeric[c] = true
	}
}

func record(t *testing.T, entity string, period time.Time, c cells) domain.Record {
	t.Helper()
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	schema, err := domain.NewSchema(names)
	require.NoError(t, err)

	values := make([]domain.Value, len(names))
	for i, name := range names {
		raw := c[name]
		switch {
		case raw == "":
			values[i] = domain.Absent()
		case numeric[name]:
			values[i] = domain.Number(decimal.RequireFromString(raw))
		default:
			values[i] = domain.String(raw)
		}
	}

	key := domain.Key{EntityID: entity, ReferencePeriod: period}
	return domain.NewRecord(key, domain.Absent(), schema, values)
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
