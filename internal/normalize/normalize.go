// Package normalize converts raw string cells from either ingestion path
// into typed values. The contract is: malformed input degrades to nil,
// it never produces an error.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/basinworks/wellpipe/internal/models"
)

// dateLayouts are tried in order. The harvested catalog mixes ISO dates,
// US slash dates, and month-name forms depending on the formation page.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// Clean trims a raw cell and collapses the whitespace artifacts HTML
// tables tend to carry (non-breaking spaces, interior runs of spaces).
func Clean(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Float parses a numeric cell after stripping thousands separators.
// Returns nil for empty cells and for any residual non-numeric content.
func Float(s string) *float64 {
	s = strings.ReplaceAll(Clean(s), ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Int parses an integer cell with the same contract as Float.
func Int(s string) *int {
	s = strings.ReplaceAll(Clean(s), ",", "")
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		// Some sources render integer columns as "1234.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		i = int(f)
	}
	return &i
}

// Date parses a free-text date cell against the known layouts.
// Returns nil when no layout matches.
func Date(s string) *time.Time {
	s = Clean(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

// Dedup returns a table with rows that are cell-for-cell equal to an
// earlier row removed, keeping the first instance. The harvested catalog
// repeats wells that appear under more than one formation page, and a
// cache refresh can re-fetch identical rows. Row order is otherwise
// preserved, and running Dedup twice changes nothing after the first
// pass. The input table is never written; callers may share it across
// goroutines.
func Dedup(t *models.RawTable) *models.RawTable {
	if t == nil {
		return nil
	}
	out := &models.RawTable{
		Columns: t.Columns,
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	seen := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}
