package supabase

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// Wire shapes of the fundamentals project. Numbers are written as JSON numbers
// with their exact decimal text; missing values are null.

type snapshotPayload struct {
	Ticker               string       `json:"ticker"`
	AssetClass           string       `json:"asset_class"`
	PatrimonioLiquido    *json.Number `json:"patrimonio_liquido"`
	ValorPatrimonialCota *json.Number `json:"valor_patrimonial_cota"`
	NumCotistas          *json.Number `json:"num_cotistas"`
}

type snapshotEnvelope struct {
	Data snapshotPayload `json:"data"`
}

type valuationRow struct {
	Ticker               string       `json:"ticker"`
	DataReferencia       string       `json:"data_referencia"`
	PatrimonioLiquido    *json.Number `json:"patrimonio_liquido"`
	CotasEmitidas        *json.Number `json:"cotas_emitidas"`
	ValorPatrimonialCota *json.Number `json:"valor_patrimonial_cota"`
	PVP                  *json.Number `json:"p_vp"`
}

type dividendRow struct {
	Ticker         string      `json:"ticker"`
	DataReferencia string      `json:"data_referencia"`
	Dividendo      json.Number `json:"dividendo"`
}

type registryRow struct {
	CNPJ   string `json:"cnpj"`
	Ticker string `json:"ticker"`
}

func number(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := json.Number(d.Decimal.String())
	return &n
}

func date(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func toSnapshotEnvelope(s domain.Snapshot) snapshotEnvelope {
	return snapshotEnvelope{Data: snapshotPayload{
		Ticker:               s.Ticker,
		AssetClass:           string(s.AssetClass),
		PatrimonioLiquido:    number(s.NetAssetValue),
		ValorPatrimonialCota: number(s.UnitBookValue),
		NumCotistas:          number(s.UnitHolderCount),
	}}
}

func toValuationRows(vs []domain.Valuation) []valuationRow {
	rows := make([]valuationRow, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, valuationRow{
			Ticker:               v.Ticker,
			DataReferencia:       date(v.ReferencePeriod),
			PatrimonioLiquido:    number(v.NetAssetValue),
			CotasEmitidas:        number(v.UnitsIssued),
			ValorPatrimonialCota: number(v.UnitBookValue),
			PVP:                  number(v.PriceToBook),
		})
	}
	return rows
}

func toDividendRows(ds []domain.Dividend) []dividendRow {
	rows := make([]dividendRow, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, dividendRow{
			Ticker:         d.Ticker,
			DataReferencia: date(d.ReferencePeriod),
			Dividendo:      json.Number(d.Amount.String()),
		})
	}
	return rows
}

// batchDocument is the whole batch as it would be sent, one section per endpoint
type batchDocument struct {
	Snapshots  []snapshotEnvelope `json:"snapshots"`
	Valuations []valuationRow     `json:"valuations"`
	Dividends  []dividendRow      `json:"dividends"`
}

// MarshalBatch renders a batch with the exact payloads the client would post.
func MarshalBatch(b domain.Batch) ([]byte, error) {
	doc := batchDocument{
		Snapshots:  make([]snapshotEnvelope, 0, len(b.Snapshots)),
		Valuations: toValuationRows(b.Valuations),
		Dividends:  toDividendRows(b.Dividends),
	}
	for _, s := range b.Snapshots {
		doc.Snapshots = append(doc.Snapshots, toSnapshotEnvelope(s))
	}
	return json.MarshalIndent(doc, "", "  ")
}
