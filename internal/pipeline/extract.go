package pipeline

import "github.com/guttosm/margintrend/internal/domain/models"

// SourceColumns are the datatable columns the pipeline reads, in output order.
var SourceColumns = []string{
	"reportid",
	"reportdate",
	"reporttype",
	"longname",
	"country",
	"region",
	"indicator",
	"statement",
	"amount",
}

// CandidateTable is the uniform tabular view of a raw dataset: every declared
// column, addressable by name, over rows kept in response order.
type CandidateTable struct {
	columns []string
	index   map[string]int
	rows    []models.RawRecord
}

// Extract builds a CandidateTable from a raw dataset.
//
// Every name in SourceColumns must be declared (case-sensitive); otherwise a
// *SchemaError lists the absent ones. Extra columns are carried along. Rows
// shorter than the header read as nil in their missing positions.
func Extract(raw *models.RawDataset) (*CandidateTable, error) {
	if raw == nil {
		return nil, &SchemaError{Missing: append([]string(nil), SourceColumns...)}
	}

	columns := raw.ColumnNames()
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	if missing := missingColumns(index); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	return &CandidateTable{columns: columns, index: index, rows: raw.Data}, nil
}

func missingColumns(index map[string]int) []string {
	var missing []string
	for _, name := range SourceColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Len returns the number of rows.
func (c *CandidateTable) Len() int { return len(c.rows) }

// Columns returns the declared column names in source order.
func (c *CandidateTable) Columns() []string { return c.columns }

// Value returns the cell of row i under column name. ok is false when the
// column is not declared.
func (c *CandidateTable) Value(i int, name string) (v any, ok bool) {
	pos, ok := c.index[name]
	if !ok {
		return nil, false
	}
	row := c.rows[i]
	if pos >= len(row) {
		return nil, true
	}
	return row[pos], true
}
