package derive

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// Fields lists, per financial concept, the columns it may be reported under in
// precedence order. Report revisions renamed some of them.
type Fields struct {
	NetAssetValue   []string
	UnitsIssued     []string
	UnitHolderCount []string
	UnitPrice       []string
	Dividend        []string
}

// DefaultFields are the CVM column names for each concept
func DefaultFields() Fields {
	return Fields{
		NetAssetValue:   []string{domain.ColNetAssetValue},
		UnitsIssued:     []string{domain.ColUnitsIssued},
		UnitHolderCount: []string{domain.ColUnitHolderCount},
		UnitPrice:       []string{domain.ColUnitPrice},
		Dividend:        domain.DividendColumns,
	}
}

// Engine derives snapshots, valuations and dividends from resolved records.
// It holds no state between calls; every method returns freshly built slices.
type Engine struct {
	Fields     Fields
	Classifier Classifier
	ZeroPolicy domain.ZeroPolicy
}

// NewEngine creates an Engine with the default fields and classifier
func NewEngine(policy domain.ZeroPolicy) *Engine {
	return &Engine{
		Fields:     DefaultFields(),
		Classifier: DefaultClassifier(),
		ZeroPolicy: policy,
	}
}

// Derive runs the three derivations
func (e *Engine) Derive(records []domain.Record) domain.Batch {
	return domain.Batch{
		Snapshots:  e.Snapshots(records),
		Valuations: e.Valuations(records),
		Dividends:  e.Dividends(records),
	}
}

// Snapshots builds one snapshot per entity from its latest reference period.
// Logic:
//  1. Find the maximum reference period of each entity
//  2. Keep the records on that period; if several tie, the first in input order wins
//  3. Output is sorted by entity ID
func (e *Engine) Snapshots(records []domain.Record) []domain.Snapshot {
	latest := make(map[string]int) // entity -> index of chosen record
	for i, rec := range records {
		j, ok := latest[rec.Key.EntityID]
		if !ok || rec.Key.ReferencePeriod.After(records[j].Key.ReferencePeriod) {
			latest[rec.Key.EntityID] = i
		}
	}

	snapshots := make([]domain.Snapshot, 0, len(latest))
	for _, i := range latest {
		rec := records[i]
		nav := lookup(rec, e.Fields.NetAssetValue)
		units := lookup(rec, e.Fields.UnitsIssued)
		snapshots = append(snapshots, domain.Snapshot{
			EntityID:        rec.Key.EntityID,
			AssetClass:      e.Classifier.Classify(rec),
			NetAssetValue:   nav,
			UnitBookValue:   Ratio(nav, units, e.ZeroPolicy),
			UnitHolderCount: lookup(rec, e.Fields.UnitHolderCount),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].EntityID < snapshots[j].EntityID
	})
	return snapshots
}

// Valuations builds one book value point per record, in input order
func (e *Engine) Valuations(records []domain.Record) []domain.Valuation {
	valuations := make([]domain.Valuation, 0, len(records))
	for _, rec := range records {
		nav := lookup(rec, e.Fields.NetAssetValue)
		units := lookup(rec, e.Fields.UnitsIssued)
		bookValue := Ratio(nav, units, e.ZeroPolicy)
		price := lookup(rec, e.Fields.UnitPrice)

		valuations = append(valuations, domain.Valuation{
			EntityID:        rec.Key.EntityID,
			ReferencePeriod: rec.Key.ReferencePeriod,
			NetAssetValue:   nav,
			UnitsIssued:     units,
			UnitBookValue:   bookValue,
			PriceToBook:     Ratio(price, bookValue, e.ZeroPolicy),
		})
	}
	return valuations
}

// Dividends builds a record for every input record reporting a non-zero distribution.
// Under ZeroAsAbsent a zero candidate column falls through to the next one.
func (e *Engine) Dividends(records []domain.Record) []domain.Dividend {
	dividends := make([]domain.Dividend, 0)
	for _, rec := range records {
		amount, ok := First(rec, e.Fields.Dividend, e.ZeroPolicy)
		if !ok || amount.Equal(decimal.Zero) {
			continue
		}
		dividends = append(dividends, domain.Dividend{
			EntityID:        rec.Key.EntityID,
			ReferencePeriod: rec.Key.ReferencePeriod,
			Amount:          amount,
		})
	}
	return dividends
}
