package pipeline

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/basinworks/wellpipe/internal/models"
)

const exportDateLayout = "2006-01-02"

// WriteWellsCSV writes the cleaned well table as CSV for the on-demand
// download. Nil fields render as empty cells.
func WriteWellsCSV(w io.Writer, records []models.WellRecord, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}

	header := []string{"File No", "Operator", "Formation", "Completion Date",
		"Last Prod Rpt Date", "Cum Oil", "Cum Water", "Cum Gas", "Completion Year"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.FileNo,
			rec.Operator,
			rec.Formation,
			formatDate(rec.CompletionDate),
			formatDate(rec.LastProdRptDate),
			formatFloat(rec.CumOil),
			formatFloat(rec.CumWater),
			formatFloat(rec.CumGas),
			formatInt(rec.CompletionYear),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnalyticsCSV writes the merged analytic table as CSV.
func WriteAnalyticsCSV(w io.Writer, records []models.AnalyticRecord, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}

	header := []string{"well_id", "county", "spud_date", "completion_date",
		"cycle_time", "year", "month", "date", "production", "post_peak_90_day"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.WellID,
			rec.County,
			formatDate(rec.SpudDate),
			formatDate(rec.CompletionDate),
			formatInt(rec.CycleTimeDays),
			strconv.Itoa(rec.Year),
			strconv.Itoa(rec.Month),
			rec.Date.Format(exportDateLayout),
			strconv.FormatFloat(rec.Production, 'f', -1, 64),
			formatFloat(rec.PostPeak90Day),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportDateLayout)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
