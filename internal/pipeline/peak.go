package pipeline

import (
	"time"

	"github.com/basinworks/wellpipe/internal/models"
)

// windowMonths is the length of the post-peak window in calendar months.
const windowMonths = 3

// ComputePeakWindows finds, for every well with at least one production
// row, the month of maximum production and the total produced over the
// 3-calendar-month window starting there.
//
// The argmax is stable: a strict greater-than comparison means the row
// that appears earliest in input order wins a tie, which keeps repeated
// runs over identical input reproducible. Wells with no production rows
// are absent from the result; absence means "no data", which callers must
// not conflate with a computed zero.
func ComputePeakWindows(records []models.ProductionRecord) map[string]models.PeakWindow {
	type peak struct {
		production float64
		date       time.Time
	}
	peaks := make(map[string]peak)
	for _, rec := range records {
		best, seen := peaks[rec.WellID]
		if !seen || rec.Production > best.production {
			peaks[rec.WellID] = peak{production: rec.Production, date: rec.Date}
		}
	}

	windows := make(map[string]models.PeakWindow, len(peaks))
	for wellID, p := range peaks {
		windows[wellID] = models.PeakWindow{
			WellID:    wellID,
			StartDate: p.date,
			// Calendar arithmetic, not a fixed day count: Jan 1 -> Apr 1.
			EndDate: p.date.AddDate(0, windowMonths, 0),
		}
	}

	// Second pass: sum production over [StartDate, EndDate). The start
	// month always qualifies, so the total is at least the peak value.
	for _, rec := range records {
		w, ok := windows[rec.WellID]
		if !ok {
			continue
		}
		if !rec.Date.Before(w.StartDate) && rec.Date.Before(w.EndDate) {
			w.PostPeakTotal += rec.Production
			windows[rec.WellID] = w
		}
	}
	return windows
}
