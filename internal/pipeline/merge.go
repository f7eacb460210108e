package pipeline

import (
	"log"

	"github.com/basinworks/wellpipe/internal/models"
)

// Merge joins production rows to their well headers and broadcasts each
// well's post-peak total across all of that well's monthly rows.
//
// The header join is inner: a production row whose well id has no header
// row is dropped, by contract with the upstream data (orphan production
// reports exist and are not an error). The drop count is logged so the
// loss is observable. The peak-window join is a left join: a surviving row
// whose well has no window keeps a nil PostPeak90Day.
//
// Output order follows input production order, so merging identical
// inputs yields an identical table.
func Merge(headers []models.WellHeader, records []models.ProductionRecord, windows map[string]models.PeakWindow) []models.AnalyticRecord {
	byWell := make(map[string]models.WellHeader, len(headers))
	for _, h := range headers {
		if _, dup := byWell[h.WellID]; !dup {
			byWell[h.WellID] = h
		}
	}

	merged := make([]models.AnalyticRecord, 0, len(records))
	dropped := 0
	for _, rec := range records {
		header, ok := byWell[rec.WellID]
		if !ok {
			dropped++
			continue
		}
		out := models.AnalyticRecord{
			WellID:         rec.WellID,
			County:         header.County,
			SpudDate:       header.SpudDate,
			CompletionDate: header.CompletionDate,
			CycleTimeDays:  header.CycleTimeDays,
			Year:           rec.Year,
			Month:          rec.Month,
			Date:           rec.Date,
			Production:     rec.Production,
		}
		if w, ok := windows[rec.WellID]; ok {
			total := w.PostPeakTotal
			out.PostPeak90Day = &total
		}
		merged = append(merged, out)
	}

	if dropped > 0 {
		log.Printf("merge: dropped %d production rows with no matching well header", dropped)
	}
	return merged
}
