package derive

import (
	"strings"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// Rule maps a keyword found in a record's text cells to an asset class
type Rule struct {
	Keyword string // matched case-insensitively
	Class   domain.AssetClass
}

// Classifier assigns the class of the first rule whose keyword appears in any
// text cell of a record, or Default when none does.
type Classifier struct {
	Rules   []Rule
	Default domain.AssetClass
}

// DefaultClassifier tells agribusiness funds (FIAGRO) apart from real-estate funds (FII)
func DefaultClassifier() Classifier {
	return Classifier{
		Rules: []Rule{
			{Keyword: "fiagro", Class: domain.AssetClassFiagro},
		},
		Default: domain.AssetClassFII,
	}
}

// Classify scans every string cell of the record
func (c Classifier) Classify(rec domain.Record) domain.AssetClass {
	text := strings.ToLower(strings.Join(rec.Strings(), " "))
	for _, rule := range c.Rules {
		if rule.Keyword != "" && strings.Contains(text, strings.ToLower(rule.Keyword)) {
			return rule.Class
		}
	}
	return c.Default
}
