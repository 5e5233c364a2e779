package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass is the category of a fund
type AssetClass string

const (
	AssetClassFII    AssetClass = "fii"
	AssetClassFiagro AssetClass = "fiagro"
)

// Snapshot is the current picture of a fund, built from its latest reference period
type Snapshot struct {
	EntityID        string
	Ticker          string
	AssetClass      AssetClass
	NetAssetValue   decimal.NullDecimal
	UnitBookValue   decimal.NullDecimal // NetAssetValue / units issued
	UnitHolderCount decimal.NullDecimal
}

// Valuation is one point of a fund's book value history
type Valuation struct {
	EntityID        string
	Ticker          string
	ReferencePeriod time.Time
	NetAssetValue   decimal.NullDecimal
	UnitsIssued     decimal.NullDecimal
	UnitBookValue   decimal.NullDecimal
	PriceToBook     decimal.NullDecimal // unit price / UnitBookValue
}

// Dividend is a distribution reported for a fund and period
type Dividend struct {
	EntityID        string
	Ticker          string
	ReferencePeriod time.Time
	Amount          decimal.Decimal // never zero
}

// Validate ensures the snapshot adheres to domain rules
func (s *Snapshot) Validate() error {
	if s.EntityID == "" {
		return errors.New("snapshot entity ID cannot be empty")
	}
	if s.AssetClass == "" {
		return errors.New("snapshot asset class cannot be empty")
	}
	return nil
}

// Validate ensures the valuation adheres to domain rules
func (v *Valuation) Validate() error {
	if v.EntityID == "" {
		return errors.New("valuation entity ID cannot be empty")
	}
	if v.ReferencePeriod.IsZero() {
		return errors.New("valuation reference period cannot be empty")
	}
	return nil
}

// Validate ensures the dividend adheres to domain rules
func (d *Dividend) Validate() error {
	if d.EntityID == "" {
		return errors.New("dividend entity ID cannot be empty")
	}
	if d.ReferencePeriod.IsZero() {
		return errors.New("dividend reference period cannot be empty")
	}
	if d.Amount.IsZero() {
		return errors.New("dividend amount must be non-zero")
	}
	return nil
}

// Batch holds every derived record of one run. It is fully built before any dispatch.
type Batch struct {
	Snapshots  []Snapshot
	Valuations []Valuation
	Dividends  []Dividend
}

// Validate checks every record of the batch and the one-snapshot-per-entity rule
func (b *Batch) Validate() error {
	seen := make(map[string]bool, len(b.Snapshots))
	for i := range b.Snapshots {
		if err := b.Snapshots[i].Validate(); err != nil {
			return err
		}
		if seen[b.Snapshots[i].EntityID] {
			return errors.New("batch has more than one snapshot for entity " + b.Snapshots[i].EntityID)
		}
		seen[b.Snapshots[i].EntityID] = true
	}
	for i := range b.Valuations {
		if err := b.Valuations[i].Validate(); err != nil {
			return err
		}
	}
	for i := range b.Dividends {
		if err := b.Dividends[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
