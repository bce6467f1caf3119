package pipeline

import (
	"encoding/json"

	"github.com/guttosm/margintrend/internal/domain/models"
)

func sourceColumns() []models.Column {
	cols := make([]models.Column, len(SourceColumns))
	for i, name := range SourceColumns {
		cols[i] = models.Column{Name: name}
	}
	return cols
}

// record builds a row in SourceColumns order.
func record(id, date, longname, country, indicator string, amount any) models.RawRecord {
	return models.RawRecord{id, date, "10-K", longname, country, "NA", indicator, "IS", amount}
}

func num(s string) json.Number { return json.Number(s) }

func dataset(rows ...models.RawRecord) *models.RawDataset {
	return &models.RawDataset{Columns: sourceColumns(), Data: rows}
}
