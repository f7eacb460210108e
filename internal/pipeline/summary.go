package pipeline

import (
	"sort"
	"strconv"

	"github.com/basinworks/wellpipe/internal/models"
)

// WellSummary holds the aggregations the presentation layer renders as
// KPIs and charts: overall means, per-formation and per-operator counts,
// completions per year, and mean cumulative oil per (year, operator).
type WellSummary struct {
	TotalWells     int                `json:"total_wells"`
	AvgCumOil      *float64           `json:"avg_cum_oil,omitempty"`
	AvgCumGas      *float64           `json:"avg_cum_gas,omitempty"`
	AvgCumWater    *float64           `json:"avg_cum_water,omitempty"`
	ByFormation    []CountEntry       `json:"by_formation"`
	TopOperators   []CountEntry       `json:"top_operators"`
	ByYear         []CountEntry       `json:"completions_per_year"`
	OilByYearOp    []YearOperatorOil  `json:"oil_by_year_operator"`
}

// CountEntry is one bar of a count chart.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// YearOperatorOil is the mean cumulative oil for wells an operator
// completed in a year.
type YearOperatorOil struct {
	Year      int     `json:"year"`
	Operator  string  `json:"operator"`
	MeanOil   float64 `json:"mean_oil"`
	WellCount int     `json:"well_count"`
}

// topOperatorLimit matches the dashboard's top-10 operator chart.
const topOperatorLimit = 10

// Summarize computes the summary over a cleaned well table. Nullable
// fields are excluded from means rather than counted as zero.
func Summarize(records []models.WellRecord) WellSummary {
	s := WellSummary{TotalWells: len(records)}

	var oilSum, gasSum, waterSum float64
	var oilN, gasN, waterN int
	formationCounts := map[string]int{}
	operatorCounts := map[string]int{}
	yearCounts := map[int]int{}

	type yearOp struct {
		year int
		op   string
	}
	oilByYearOp := map[yearOp]*YearOperatorOil{}

	for _, rec := range records {
		if rec.CumOil != nil {
			oilSum += *rec.CumOil
			oilN++
		}
		if rec.CumGas != nil {
			gasSum += *rec.CumGas
			gasN++
		}
		if rec.CumWater != nil {
			waterSum += *rec.CumWater
			waterN++
		}
		if rec.Formation != "" {
			formationCounts[rec.Formation]++
		}
		if rec.Operator != "" {
			operatorCounts[rec.Operator]++
		}
		if rec.CompletionYear != nil {
			yearCounts[*rec.CompletionYear]++
			if rec.Operator != "" && rec.CumOil != nil {
				key := yearOp{year: *rec.CompletionYear, op: rec.Operator}
				entry := oilByYearOp[key]
				if entry == nil {
					entry = &YearOperatorOil{Year: key.year, Operator: key.op}
					oilByYearOp[key] = entry
				}
				entry.MeanOil += *rec.CumOil
				entry.WellCount++
			}
		}
	}

	if oilN > 0 {
		mean := oilSum / float64(oilN)
		s.AvgCumOil = &mean
	}
	if gasN > 0 {
		mean := gasSum / float64(gasN)
		s.AvgCumGas = &mean
	}
	if waterN > 0 {
		mean := waterSum / float64(waterN)
		s.AvgCumWater = &mean
	}

	s.ByFormation = sortedCounts(formationCounts)
	s.TopOperators = sortedCounts(operatorCounts)
	if len(s.TopOperators) > topOperatorLimit {
		s.TopOperators = s.TopOperators[:topOperatorLimit]
	}

	years := make([]int, 0, len(yearCounts))
	for y := range yearCounts {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		s.ByYear = append(s.ByYear, CountEntry{Key: strconv.Itoa(y), Count: yearCounts[y]})
	}

	for _, entry := range oilByYearOp {
		entry.MeanOil /= float64(entry.WellCount)
		s.OilByYearOp = append(s.OilByYearOp, *entry)
	}
	sort.Slice(s.OilByYearOp, func(i, j int) bool {
		if s.OilByYearOp[i].Year != s.OilByYearOp[j].Year {
			return s.OilByYearOp[i].Year < s.OilByYearOp[j].Year
		}
		return s.OilByYearOp[i].Operator < s.OilByYearOp[j].Operator
	})

	return s
}

// sortedCounts orders by count descending, key ascending on ties.
func sortedCounts(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, CountEntry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
