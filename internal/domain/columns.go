package domain

// Column names of the CVM monthly real-estate fund report extracts
const (
	ColEntityID        = "CNPJ_Fundo_Classe"
	ColReferencePeriod = "Data_Referencia"
	ColVersion         = "Versao"
	ColDeliveryDate    = "Data_Entrega"

	ColNetAssetValue   = "Patrimonio_Liquido"
	ColTotalInvested   = "Total_Investido"
	ColUnitsIssued     = "Cotas_Emitidas"
	ColUnitHolderCount = "Numero_Cotistas"
	ColIncomePaid      = "Rendimento_Distribuido"
	ColIncomePerUnit   = "Rendimento_Cota"
	ColUnitPrice       = "Preco_Cota"
	ColDividendsPaid   = "Dividendos_Distribuidos"
)

// KeyColumns are the columns the three extracts share
var KeyColumns = []string{ColEntityID, ColReferencePeriod, ColVersion}

// DateColumns are parsed as calendar dates
var DateColumns = []string{ColReferencePeriod, ColDeliveryDate}

// NumericColumns are parsed as decimals
var NumericColumns = []string{
	ColNetAssetValue,
	ColTotalInvested,
	ColUnitsIssued,
	ColUnitHolderCount,
	ColIncomePaid,
	ColIncomePerUnit,
	ColUnitPrice,
	ColDividendsPaid,
}

// DividendColumns lists the columns a distribution may be reported under, in precedence order
var DividendColumns = []string{ColIncomePaid, ColIncomePerUnit, ColDividendsPaid}
