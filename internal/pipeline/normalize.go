package pipeline

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
)

// dateLayouts are tried in order when coercing reportdate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Normalize turns candidate rows into typed TableRows.
//
// For every row it coerces reportdate (unparseable → missing), keeps only the
// SourceColumns, replaces country codes with display names and exposes the
// canonical field names. No row is dropped. A candidate table that lacks a
// projected column aborts with *SchemaError and no output.
func Normalize(c *CandidateTable) (models.Table, error) {
	if c == nil {
		return nil, &SchemaError{Missing: append([]string(nil), SourceColumns...)}
	}
	if missing := missingColumns(c.index); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	out := make(models.Table, c.Len())
	for i := range out {
		get := func(name string) any {
			v, _ := c.Value(i, name)
			return v
		}
		out[i] = models.TableRow{
			ReportID:    toString(get("reportid")),
			ReportDate:  toDate(get("reportdate")),
			ReportType:  toString(get("reporttype")),
			CompanyName: toString(get("longname")),
			Country:     CountryName(toString(get("country"))),
			Region:      toString(get("region")),
			Indicator:   toString(get("indicator")),
			Statement:   toString(get("statement")),
			Amount:      toAmount(get("amount")),
		}
	}
	return out, nil
}

// toString renders a JSON scalar as text. null becomes "".
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// toDate parses a calendar date. Anything that is not a recognised date
// string yields the missing marker (Valid == false).
func toDate(v any) sql.NullTime {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case time.Time:
		return sql.NullTime{Time: truncateToDate(x), Valid: true}
	default:
		return sql.NullTime{}
	}
	if s == "" {
		return sql.NullTime{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: truncateToDate(t), Valid: true}
		}
	}
	return sql.NullTime{}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// toAmount reads a numeric cell. Non-numeric, NaN and infinite values are invalid.
func toAmount(v any) sql.NullFloat64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return sql.NullFloat64{}
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return sql.NullFloat64{}
		}
		f = parsed
	default:
		return sql.NullFloat64{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
