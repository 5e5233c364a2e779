package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

const (
	fundA = "11.111.111/0001-11"
	fundB = "22.222.222/0001-22"
	fundC = "33.333.333/0001-33"
)

// raw builds an extract from ';' separated lines
func raw(name, header string, lines ...string) domain.RawTable {
	t := domain.RawTable{Name: name, Header: strings.Split(header, ";")}
	for _, line := range lines {
		t.Rows = append(t.Rows, strings.Split(line, ";"))
	}
	return t
}

// fixture: three funds over two months. Fund A resubmitted February as version 2;
// fund B reports a zero net asset value in February; fund C has no asset row in
// February and a zero unit count in January.
func fixture() Extracts {
	return Extracts{
		General: raw("geral", " CNPJ_Fundo_Classe ;Data_Referencia;Versao;Nome_Fundo_Classe;Numero_Cotistas",
			fundA+";2024-01-31;1;Fundo Alfa FII;1000",
			fundA+";2024-02-29;1;Fundo Alfa FII;1100",
			fundA+";2024-02-29;2;Fundo Alfa FII;1200",
			fundB+";2024-01-31;1;Fundo Beta Fiagro;500",
			fundB+";2024-02-29;1;Fundo Beta Fiagro;510",
			fundC+";2024-01-31;1;Fundo Gama FII;300",
			fundC+";2024-02-29;1;Fundo Gama FII;310",
		),
		Asset: raw("ativo", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Patrimonio_Liquido;Cotas_Emitidas;Preco_Cota",
			fundA+";2024-01-31;1;1000000;100000;12",
			fundA+";2024-02-29;1;999999;100000;11",
			fundA+";2024-02-29;2;1100000;100000;12.1",
			fundB+";2024-01-31;1;500000;50000;",
			fundB+";2024-02-29;1;0;50000;9",
			fundC+";2024-01-31;1;300000;0;10",
		),
		Complement: raw("complemento", "CNPJ_Fundo_Classe;Data_Referencia;Versao;Rendimento_Distribuido;Rendimento_Cota",
			fundA+";2024-01-31;1;0.85;",
			fundA+";2024-02-29;1;0.50;",
			fundA+";2024-02-29;2;0.90;",
			fundB+";2024-01-31;1;0;0.5",
			fundB+";2024-02-29;1;;",
			fundC+";2024-01-31;1;abc;",
			fundC+";2024-02-29;1;1.1;",
		),
	}
}

func allTickers() map[string]string {
	return map[string]string{
		fundA: "AAAA11",
		fundB: "BBBB11",
		fundC: "CCCC11",
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
