package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/basinworks/wellpipe/internal/pipeline"
)

// wellsHandler serves the cleaned well table, optionally narrowed by the
// same filters the dashboard exposes: formation, operator, year range.
func (a *API) wellsHandler(w http.ResponseWriter, r *http.Request) {
	records := a.service.Wells()
	if records == nil {
		respondWithError(w, http.StatusServiceUnavailable, "well table not harvested yet")
		return
	}
	respondWithJSON(w, http.StatusOK, pipeline.FilterWells(records, filterFromQuery(r)))
}

// summaryHandler serves the aggregations over the well table.
func (a *API) summaryHandler(w http.ResponseWriter, r *http.Request) {
	summary := a.service.Summary()
	if summary == nil {
		respondWithError(w, http.StatusServiceUnavailable, "well table not harvested yet")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// analyticsHandler serves the merged analytic table.
func (a *API) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	records := a.service.Analytics()
	if records == nil {
		respondWithError(w, http.StatusServiceUnavailable, "analytic table not built yet")
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}

// wellsExportHandler streams the (optionally filtered) well table as a
// delimited download.
func (a *API) wellsExportHandler(w http.ResponseWriter, r *http.Request) {
	records := a.service.Wells()
	if records == nil {
		respondWithError(w, http.StatusServiceUnavailable, "well table not harvested yet")
		return
	}
	records = pipeline.FilterWells(records, filterFromQuery(r))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="wells.csv"`)
	if err := pipeline.WriteWellsCSV(w, records, exportComma(r)); err != nil {
		log.Printf("server: well export failed: %v", err)
	}
}

// analyticsExportHandler streams the analytic table as a delimited download.
func (a *API) analyticsExportHandler(w http.ResponseWriter, r *http.Request) {
	records := a.service.Analytics()
	if records == nil {
		respondWithError(w, http.StatusServiceUnavailable, "analytic table not built yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics.csv"`)
	if err := pipeline.WriteAnalyticsCSV(w, records, exportComma(r)); err != nil {
		log.Printf("server: analytics export failed: %v", err)
	}
}

// refreshHandler invalidates the memoized inputs and rebuilds both tables.
// On failure the previous tables stay served; the response names the stage
// that failed.
func (a *API) refreshHandler(w http.ResponseWriter, r *http.Request) {
	a.service.Invalidate()

	if _, err := a.service.HarvestWells(r.Context()); err != nil {
		respondWithError(w, http.StatusBadGateway, err.Error())
		return
	}
	merged, err := a.service.RefreshAnalytics(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"well_count":     len(a.service.Wells()),
		"analytic_count": len(merged),
	})
}

// filterFromQuery reads the filter parameters. Formation and operator take
// comma-separated lists; year_from/year_to bound the completion year.
func filterFromQuery(r *http.Request) pipeline.WellFilter {
	q := r.URL.Query()
	f := pipeline.WellFilter{
		Formations: splitParam(q.Get("formation")),
		Operators:  splitParam(q.Get("operator")),
	}
	if v, err := strconv.Atoi(q.Get("year_from")); err == nil {
		f.YearFrom = v
	}
	if v, err := strconv.Atoi(q.Get("year_to")); err == nil {
		f.YearTo = v
	}
	return f
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// exportComma lets ?format=delimited keep the pipe delimiter of the
// source files; the default download is comma-separated.
func exportComma(r *http.Request) rune {
	if r.URL.Query().Get("format") == "delimited" {
		return '|'
	}
	return ','
}
