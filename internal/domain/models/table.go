package models

import "database/sql"

// TableRow is a normalized financial record.
//
// Column order (source column → field):
//
//	0 reportid   → ReportID
//	1 reportdate → ReportDate (missing when the source value is not a date)
//	2 reporttype → ReportType
//	3 longname   → CompanyName
//	4 country    → Country (display name when the code is known)
//	5 region     → Region
//	6 indicator  → Indicator
//	7 statement  → Statement
//	8 amount     → Amount (invalid when the source value is not numeric)
type TableRow struct {
	ReportID    string          `json:"report_id"`
	ReportDate  sql.NullTime    `json:"report_date"`
	ReportType  string          `json:"report_type"`
	CompanyName string          `json:"company_name"`
	Country     string          `json:"country"`
	Region      string          `json:"region"`
	Indicator   string          `json:"indicator"`
	Statement   string          `json:"statement"`
	Amount      sql.NullFloat64 `json:"amount"`
}

// HasDate reports whether the row carries a valid calendar date.
func (r TableRow) HasDate() bool {
	return r.ReportDate.Valid
}

// Table is an ordered sequence of rows sharing the TableRow schema.
// Row order follows the API response.
type Table []TableRow

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}
