// Package pipeline holds the analytic core: cycle-time derivation, the
// peak-window aggregation, the header/production merge, and the summary
// aggregations served alongside the tables. Everything here is a pure
// function over typed rows; ingestion and serving live elsewhere.
package pipeline

import (
	"github.com/basinworks/wellpipe/internal/models"
)

// DeriveCycleTimes fills CycleTimeDays on each header row: the whole-day
// difference completion minus spud. Nil when either date is missing.
// Negative values reflect inconsistent upstream dates and pass through
// unclamped.
func DeriveCycleTimes(headers []models.WellHeader) {
	for i := range headers {
		h := &headers[i]
		if h.SpudDate == nil || h.CompletionDate == nil {
			h.CycleTimeDays = nil
			continue
		}
		days := int(h.CompletionDate.Sub(*h.SpudDate).Hours() / 24)
		h.CycleTimeDays = &days
	}
}
