package pipeline

import (
	"github.com/basinworks/wellpipe/internal/models"
)

// WellFilter narrows the cleaned well table the way the dashboard's
// sidebar does: by formation set, operator set, and completion-year range.
// Empty sets and zero bounds mean "no constraint".
type WellFilter struct {
	Formations []string
	Operators  []string
	YearFrom   int
	YearTo     int
}

// FilterWells returns the records matching every set constraint. Rows with
// a nil completion year never match a year-range constraint.
func FilterWells(records []models.WellRecord, f WellFilter) []models.WellRecord {
	formations := toSet(f.Formations)
	operators := toSet(f.Operators)

	out := make([]models.WellRecord, 0, len(records))
	for _, rec := range records {
		if len(formations) > 0 && !formations[rec.Formation] {
			continue
		}
		if len(operators) > 0 && !operators[rec.Operator] {
			continue
		}
		if f.YearFrom != 0 || f.YearTo != 0 {
			if rec.CompletionYear == nil {
				continue
			}
			if f.YearFrom != 0 && *rec.CompletionYear < f.YearFrom {
				continue
			}
			if f.YearTo != 0 && *rec.CompletionYear > f.YearTo {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
