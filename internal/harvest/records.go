package harvest

import (
	"github.com/basinworks/wellpipe/internal/models"
	"github.com/basinworks/wellpipe/internal/normalize"
)

// Catalog column names as they appear in the upstream table headers.
const (
	colFileNo          = "File No"
	colOperator        = "Operator"
	colCompletionDate  = "Completion Date"
	colLastProdRptDate = "Last Prod Rpt Date"
	colCumOil          = "Cum Oil"
	colCumWater        = "Cum Water"
	colCumGas          = "Cum Gas"
)

// WellRecords converts a raw harvest into typed, deduplicated well records.
// Duplicate raw rows (wells listed under several formations, or re-fetched
// on a cache refresh) are removed on full-row equality before typing; cell
// coercion failures become nil fields, never errors.
func WellRecords(raw *models.RawTable) []models.WellRecord {
	if raw.Empty() {
		return []models.WellRecord{}
	}
	raw = normalize.Dedup(raw)

	records := make([]models.WellRecord, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		rec := models.WellRecord{
			FileNo:          normalize.Clean(raw.Cell(row, colFileNo)),
			Operator:        normalize.Clean(raw.Cell(row, colOperator)),
			Formation:       normalize.Clean(raw.Cell(row, FormationColumn)),
			CompletionDate:  normalize.Date(raw.Cell(row, colCompletionDate)),
			LastProdRptDate: normalize.Date(raw.Cell(row, colLastProdRptDate)),
			CumOil:          normalize.Float(raw.Cell(row, colCumOil)),
			CumWater:        normalize.Float(raw.Cell(row, colCumWater)),
			CumGas:          normalize.Float(raw.Cell(row, colCumGas)),
		}
		if rec.CompletionDate != nil {
			year := rec.CompletionDate.Year()
			rec.CompletionYear = &year
		}
		records = append(records, rec)
	}
	return records
}
