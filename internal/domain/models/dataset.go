package models

// Column is one entry of the datatable "columns" array.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// RawRecord is one row of the datatable "data" array. Values are positionally
// aligned with RawDataset.Columns and keep their decoded JSON types
// (string, json.Number, bool or nil).
type RawRecord []any

// RawDataset is the parsed body of a single datatable response.
//
// NextCursorID is non-empty when the API holds more pages than were requested;
// only the first page is ever fetched.
type RawDataset struct {
	Columns      []Column
	Data         []RawRecord
	NextCursorID string
}

// ColumnNames returns the declared column names in source order.
func (d *RawDataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}
