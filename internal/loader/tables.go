package loader

import (
	"time"

	"github.com/basinworks/wellpipe/internal/models"
	"github.com/basinworks/wellpipe/internal/normalize"
)

// Well header file columns.
const (
	ColWellID         = "well_id"
	ColCounty         = "county"
	ColSpudDate       = "spud_date"
	ColCompletionDate = "completion_date"
)

// Production file columns.
const (
	ColYear       = "year"
	ColMonth      = "month"
	ColProduction = "production"
)

// Headers converts a raw header table into typed rows. The join and date
// columns must be present; their cell values coerce nullably (a bad date is
// a nil date, not an error).
func Headers(raw *models.RawTable, source string) ([]models.WellHeader, error) {
	for _, col := range []string{ColWellID, ColSpudDate, ColCompletionDate, ColCounty} {
		if raw.ColumnIndex(col) < 0 {
			return nil, &SchemaError{Source: source, Column: col}
		}
	}

	headers := make([]models.WellHeader, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		headers = append(headers, models.WellHeader{
			WellID:         normalize.Clean(raw.Cell(row, ColWellID)),
			County:         normalize.Clean(raw.Cell(row, ColCounty)),
			SpudDate:       normalize.Date(raw.Cell(row, ColSpudDate)),
			CompletionDate: normalize.Date(raw.Cell(row, ColCompletionDate)),
		})
	}
	return headers, nil
}

// Productions converts a raw production table into typed rows. Rows whose
// year or month fail to coerce cannot be dated and are dropped; the derived
// Date is the first day of (year, month).
func Productions(raw *models.RawTable, source string) ([]models.ProductionRecord, error) {
	for _, col := range []string{ColWellID, ColYear, ColMonth, ColProduction} {
		if raw.ColumnIndex(col) < 0 {
			return nil, &SchemaError{Source: source, Column: col}
		}
	}

	records := make([]models.ProductionRecord, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		year := normalize.Int(raw.Cell(row, ColYear))
		month := normalize.Int(raw.Cell(row, ColMonth))
		if year == nil || month == nil {
			continue
		}
		production := normalize.Float(raw.Cell(row, ColProduction))
		rec := models.ProductionRecord{
			WellID: normalize.Clean(raw.Cell(row, ColWellID)),
			Year:   *year,
			Month:  *month,
			Date:   time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC),
		}
		if production != nil {
			rec.Production = *production
		}
		records = append(records, rec)
	}
	return records, nil
}
