package ingest

import (
	"fmt"
	"slices"

	"github.com/simaogato/fundreport-ingest/internal/domain"
	"github.com/simaogato/fundreport-ingest/internal/usecase/coerce"
	"github.com/simaogato/fundreport-ingest/internal/usecase/derive"
	"github.com/simaogato/fundreport-ingest/internal/usecase/merge"
	"github.com/simaogato/fundreport-ingest/internal/usecase/resolve"
)

// Extracts are the three monthly report files of one period
type Extracts struct {
	General    domain.RawTable
	Asset      domain.RawTable
	Complement domain.RawTable
}

// Tables returns the extracts in join order
func (e Extracts) Tables() []domain.RawTable {
	return []domain.RawTable{e.General, e.Asset, e.Complement}
}

// Stats reports what each stage kept and discarded
type Stats struct {
	RowsRead   map[string]int // per extract
	Malformed  map[string]int // per column
	MergedRows int
	Dropped    int // rows missing the entity or the period
	Superseded int // rows replaced by a newer version of the same key
	Resolved   int
	Unmapped   int // resolved records whose entity has no ticker
}

// TotalRowsRead sums RowsRead over every extract
func (s Stats) TotalRowsRead() int {
	total := 0
	for _, n := range s.RowsRead {
		total += n
	}
	return total
}

// Prepared is the fully materialized output of one run, ready for dispatch
type Prepared struct {
	Records []domain.Record
	Batch   domain.Batch
	Stats   Stats
}

// Pipeline turns raw extracts into a derived batch. It holds configuration only;
// every call builds its own tables and records.
type Pipeline struct {
	Types   coerce.ColumnTypes
	JoinOn  []string
	Columns resolve.Columns
	Engine  *derive.Engine
}

// NewPipeline creates a Pipeline over the CVM report layout
func NewPipeline(policy domain.ZeroPolicy) *Pipeline {
	return &Pipeline{
		Types:   coerce.DefaultColumnTypes(),
		JoinOn:  domain.KeyColumns,
		Columns: resolve.DefaultColumns(),
		Engine:  derive.NewEngine(policy),
	}
}

// Prepare runs coerce, merge, resolve and derive.
// tickers maps entity IDs to exchange tickers; records of unmapped entities are
// skipped and counted. A nil map keeps every record and leaves tickers empty.
func (p *Pipeline) Prepare(ex Extracts, tickers map[string]string) (*Prepared, error) {
	stats := Stats{
		RowsRead:  make(map[string]int),
		Malformed: make(map[string]int),
	}

	raws := ex.Tables()
	tables := make([]domain.Table, 0, len(raws))
	for _, raw := range raws {
		t, cs, err := coerce.Coerce(raw, p.Types)
		if err != nil {
			return nil, fmt.Errorf("failed to coerce %s: %w", raw.Name, err)
		}
		stats.RowsRead[raw.Name] += len(raw.Rows)
		for col, n := range cs.Malformed {
			stats.Malformed[col] += n
		}
		tables = append(tables, t)
	}

	on := p.joinColumns(tables)
	reduced := 0
	if !slices.Contains(on, p.Columns.Version) {
		// Without the version in the join key, rows of different submissions would
		// pair up; keep only each extract's latest submission first.
		for i, t := range tables {
			r, n, err := resolve.Reduce(t, p.Columns)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve versions of %s: %w", t.Name, err)
			}
			tables[i] = r
			reduced += n
		}
	}

	merged, err := merge.OuterJoin(on, tables...)
	if err != nil {
		return nil, fmt.Errorf("failed to merge extracts: %w", err)
	}
	stats.MergedRows = merged.Len()

	resolved, err := resolve.Latest(merged, p.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve versions: %w", err)
	}
	stats.Dropped = resolved.Dropped
	stats.Resolved = len(resolved.Records)
	stats.Superseded = reduced + stats.MergedRows - stats.Dropped - stats.Resolved

	records := resolved.Records
	if tickers != nil {
		records = make([]domain.Record, 0, len(resolved.Records))
		for _, rec := range resolved.Records {
			if tickers[rec.Key.EntityID] == "" {
				stats.Unmapped++
				continue
			}
			records = append(records, rec)
		}
	}

	batch := p.Engine.Derive(records)
	assignTickers(&batch, tickers)
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("derived batch is invalid: %w", err)
	}

	return &Prepared{Records: records, Batch: batch, Stats: stats}, nil
}

// joinColumns keeps the identity columns unconditionally, so a missing one
// surfaces as a merge error, and every other join column only when all tables carry it.
func (p *Pipeline) joinColumns(tables []domain.Table) []string {
	on := make([]string, 0, len(p.JoinOn))
	for _, col := range p.JoinOn {
		if col == p.Columns.EntityID || col == p.Columns.ReferencePeriod {
			on = append(on, col)
			continue
		}
		shared := true
		for _, t := range tables {
			if !t.Schema.Has(col) {
				shared = false
				break
			}
		}
		if shared {
			on = append(on, col)
		}
	}
	return on
}

func assignTickers(b *domain.Batch, tickers map[string]string) {
	for i := range b.Snapshots {
		b.Snapshots[i].Ticker = tickers[b.Snapshots[i].EntityID]
	}
	for i := range b.Valuations {
		b.Valuations[i].Ticker = tickers[b.Valuations[i].EntityID]
	}
	for i := range b.Dividends {
		b.Dividends[i].Ticker = tickers[b.Dividends[i].EntityID]
	}
}
