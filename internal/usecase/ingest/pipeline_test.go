package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// assertDecimal compares a nullable decimal; want "" means absent
func assertDecimal(t *testing.T, want string, got decimal.NullDecimal, msgAndArgs ...interface{}) {
	t.Helper()
	if want == "" {
		assert.False(t, got.Valid, msgAndArgs...)
		return
	}
	if assert.True(t, got.Valid, msgAndArgs...) {
		assert.True(t, dec(want).Equal(got.Decimal), "want %s, got %s", want, got.Decimal)
	}
}

func TestPrepare_EndToEnd(t *testing.T) {
	p := NewPipeline(domain.DefaultZeroPolicy)

	prepared, err := p.Prepare(fixture(), allTickers())
	require.NoError(t, err)

	st := prepared.Stats
	assert.Equal(t, map[string]int{"geral": 7, "ativo": 6, "complemento": 7}, st.RowsRead)
	assert.Equal(t, 20, st.TotalRowsRead())
	assert.Equal(t, map[string]int{domain.ColIncomePaid: 1}, st.Malformed)
	assert.Equal(t, 7, st.MergedRows)
	assert.Equal(t, 0, st.Dropped)
	assert.Equal(t, 1, st.Superseded)
	assert.Equal(t, 6, st.Resolved)
	assert.Equal(t, 0, st.Unmapped)

	b := prepared.Batch
	require.Len(t, b.Snapshots, 3, "one snapshot per fund")
	require.Len(t, b.Valuations, 6, "one valuation per resolved key")
	require.Len(t, b.Dividends, 4, "one dividend per record with a non-zero distribution")

	// Fund A: February version 2 supersedes version 1
	a := b.Snapshots[0]
	assert.Equal(t, fundA, a.EntityID)
	assert.Equal(t, "AAAA11", a.Ticker)
	assert.Equal(t, domain.AssetClassFII, a.AssetClass)
	assertDecimal(t, "1100000", a.NetAssetValue)
	assertDecimal(t, "11", a.UnitBookValue)
	assertDecimal(t, "1200", a.UnitHolderCount)

	// Fund B: zero net asset value gives no book value
	bs := b.Snapshots[1]
	assert.Equal(t, fundB, bs.EntityID)
	assert.Equal(t, domain.AssetClassFiagro, bs.AssetClass)
	assertDecimal(t, "0", bs.NetAssetValue)
	assertDecimal(t, "", bs.UnitBookValue)
	assertDecimal(t, "510", bs.UnitHolderCount)

	// Fund C: February exists only in two of the three extracts
	c := b.Snapshots[2]
	assert.Equal(t, fundC, c.EntityID)
	assertDecimal(t, "", c.NetAssetValue)
	assertDecimal(t, "", c.UnitBookValue)
	assertDecimal(t, "310", c.UnitHolderCount)

	// Valuations follow resolved order: the highest version first
	v := b.Valuations[0]
	assert.Equal(t, fundA, v.EntityID)
	assert.Equal(t, day(2024, 2, 29), v.ReferencePeriod)
	assertDecimal(t, "1100000", v.NetAssetValue)
	assertDecimal(t, "100000", v.UnitsIssued)
	assertDecimal(t, "11", v.UnitBookValue)
	assertDecimal(t, "1.1", v.PriceToBook)

	v = b.Valuations[1]
	assert.Equal(t, day(2024, 1, 31), v.ReferencePeriod)
	assertDecimal(t, "10", v.UnitBookValue)
	assertDecimal(t, "1.2", v.PriceToBook)

	byKey := make(map[domain.Key]domain.Valuation, len(b.Valuations))
	for _, val := range b.Valuations {
		byKey[domain.Key{EntityID: val.EntityID, ReferencePeriod: val.ReferencePeriod}] = val
	}
	assertDecimal(t, "", byKey[domain.Key{EntityID: fundB, ReferencePeriod: day(2024, 1, 31)}].PriceToBook, "no unit price")
	assertDecimal(t, "", byKey[domain.Key{EntityID: fundC, ReferencePeriod: day(2024, 1, 31)}].UnitBookValue, "zero units")

	wantDividends := []struct {
		entity string
		period string
		amount string
	}{
		{fundA, "2024-02-29", "0.9"},
		{fundA, "2024-01-31", "0.85"},
		{fundB, "2024-01-31", "0.5"},
		{fundC, "2024-02-29", "1.1"},
	}
	for i, want := range wantDividends {
		got := b.Dividends[i]
		assert.Equal(t, want.entity, got.EntityID)
		assert.Equal(t, want.period, got.ReferencePeriod.Format(domain.DateLayout))
		assert.True(t, dec(want.amount).Equal(got.Amount), "dividend %d: want %s, got %s", i, want.amount, got.Amount)
		assert.NotEmpty(t, got.Ticker)
	}
}

func TestPrepare_UniqueResolvedKeys(t *testing.T) {
	prepared, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(fixture(), nil)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, rec := range prepared.Records {
		id := rec.Key.String()
		assert.False(t, seen[id], "duplicate resolved key %s", id)
		seen[id] = true
	}
}

func TestPrepare_SkipsUnmappedEntities(t *testing.T) {
	tickers := allTickers()
	delete(tickers, fundC)

	prepared, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(fixture(), tickers)
	require.NoError(t, err)

	assert.Equal(t, 2, prepared.Stats.Unmapped)
	assert.Len(t, prepared.Batch.Snapshots, 2)
	assert.Len(t, prepared.Batch.Valuations, 4)
	assert.Len(t, prepared.Batch.Dividends, 3)
	for _, s := range prepared.Batch.Snapshots {
		assert.NotEqual(t, fundC, s.EntityID)
	}
}

func TestPrepare_NilRegistryKeepsEverything(t *testing.T) {
	prepared, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(fixture(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, prepared.Stats.Unmapped)
	assert.Len(t, prepared.Batch.Snapshots, 3)
	assert.Empty(t, prepared.Batch.Snapshots[0].Ticker)
}

func TestPrepare_ZeroAsValuePolicy(t *testing.T) {
	prepared, err := NewPipeline(domain.ZeroAsValue).Prepare(fixture(), nil)
	require.NoError(t, err)

	// Fund B February: 0 / 50000 is a real book value of zero
	assertDecimal(t, "0", prepared.Batch.Snapshots[1].UnitBookValue)
	// Fund B January: the zero distribution now wins over the next candidate
	for _, d := range prepared.Batch.Dividends {
		assert.NotEqual(t, fundB, d.EntityID)
	}
}

func TestPrepare_DropsRowsWithoutIdentity(t *testing.T) {
	ex := fixture()
	ex.General.Rows = append(ex.General.Rows, []string{"", "2024-01-31", "1", "Sem CNPJ", "1"})
	ex.Asset.Rows = append(ex.Asset.Rows, []string{fundA, "not a date", "1", "1", "1", "1"})

	prepared, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(ex, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, prepared.Stats.Dropped)
	assert.Equal(t, 6, prepared.Stats.Resolved)
	assert.Equal(t, 1, prepared.Stats.Malformed[domain.ColReferencePeriod])
}

func TestPrepare_JoinsWithoutVersionWhenAnExtractLacksIt(t *testing.T) {
	ex := Extracts{
		General: raw("geral", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Numero_Cotistas",
			fundA+";2024-01-31;1;1000",
		),
		Asset: raw("ativo", "CNPJ_Fundo_Classe;Data_Referencia;Patrimonio_Liquido;Cotas_Emitidas",
			fundA+";2024-01-31;1000000;100000",
		),
		Complement: raw("complemento", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Rendimento_Cota",
			fundA+";2024-01-31;1;0.7",
		),
	}

	p := NewPipeline(domain.DefaultZeroPolicy)
	prepared, err := p.Prepare(ex, nil)
	require.NoError(t, err)

	require.Len(t, prepared.Batch.Snapshots, 1)
	assertDecimal(t, "10", prepared.Batch.Snapshots[0].UnitBookValue)
	require.Len(t, prepared.Batch.Dividends, 1)
	assert.True(t, dec("0.7").Equal(prepared.Batch.Dividends[0].Amount))
}

func TestPrepare_LatestVersionWinsWhenAnExtractLacksVersion(t *testing.T) {
	ex := Extracts{
		General: raw("geral", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Numero_Cotistas",
			fundA+";2024-01-31;1;100",
			fundA+";2024-01-31;2;200",
		),
		Asset: raw("ativo", "CNPJ_Fundo_Classe;Data_Referencia;Patrimonio_Liquido;Cotas_Emitidas",
			fundA+";2024-01-31;1000000;100000",
		),
		Complement: raw("complemento", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Rendimento_Cota",
			fundA+";2024-01-31;2;0.7",
		),
	}

	prepared, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(ex, nil)
	require.NoError(t, err)

	require.Len(t, prepared.Batch.Snapshots, 1)
	assertDecimal(t, "200", prepared.Batch.Snapshots[0].UnitHolderCount)
	require.Len(t, prepared.Records, 1)
	v, ok := prepared.Records[0].Version.Decimal()
	require.True(t, ok)
	assert.True(t, dec("2").Equal(v))
	assert.Equal(t, 1, prepared.Stats.Superseded)
	assert.Equal(t, 1, prepared.Stats.MergedRows)
}

func TestPrepare_MissingIdentityColumn(t *testing.T) {
	ex := fixture()
	ex.Asset = raw("ativo", "Data_Referencia;Versao;Patrimonio_Liquido", "2024-01-31;1;10")

	_, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(ex, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to merge extracts")
}

func TestPrepare_DuplicateHeader(t *testing.T) {
	ex := fixture()
	ex.General = raw("geral", "CNPJ_Fundo_Classe;Data_Referencia; Data_Referencia")

	_, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(ex, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to coerce geral")
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	ex := fixture()
	before := fixture()

	_, err := NewPipeline(domain.DefaultZeroPolicy).Prepare(ex, allTickers())
	require.NoError(t, err)
	assert.Equal(t, before, ex)
}
