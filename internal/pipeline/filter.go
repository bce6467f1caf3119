package pipeline

import "github.com/guttosm/margintrend/internal/domain/models"

const (
	DefaultIndicator = "EBITDA Margin"
	DefaultDenied    = "Immutep Ltd"
)

// Criteria selects the rows that reach aggregation.
type Criteria struct {
	Indicator string   // exact, case-sensitive match on TableRow.Indicator
	Denylist  []string // exact matches on TableRow.CompanyName to exclude
}

// DefaultCriteria keeps EBITDA Margin rows and excludes Immutep Ltd.
func DefaultCriteria() Criteria {
	return Criteria{Indicator: DefaultIndicator, Denylist: []string{DefaultDenied}}
}

// Filter returns a new table holding the rows of t whose indicator equals
// c.Indicator and whose company is not denylisted. Relative order is kept and
// t is left untouched. An empty result is valid.
func Filter(t models.Table, c Criteria) models.Table {
	return ExcludeCompanies(KeepIndicator(t, c.Indicator), c.Denylist)
}

// KeepIndicator returns the rows of t reporting indicator.
func KeepIndicator(t models.Table, indicator string) models.Table {
	out := make(models.Table, 0, len(t))
	for _, row := range t {
		if row.Indicator == indicator {
			out = append(out, row)
		}
	}
	return out
}

// ExcludeCompanies returns the rows of t whose company is not in denylist.
func ExcludeCompanies(t models.Table, denylist []string) models.Table {
	denied := make(map[string]struct{}, len(denylist))
	for _, name := range denylist {
		denied[name] = struct{}{}
	}
	out := make(models.Table, 0, len(t))
	for _, row := range t {
		if _, ok := denied[row.CompanyName]; ok {
			continue
		}
		out = append(out, row)
	}
	return out
}
