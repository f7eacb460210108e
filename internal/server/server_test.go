package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/basinworks/wellpipe/internal/models"
	"github.com/basinworks/wellpipe/internal/service"
)

type stubHarvester struct {
	table *models.RawTable
}

func (s *stubHarvester) Harvest(ctx context.Context) (*models.RawTable, error) {
	return s.table, nil
}

func (s *stubHarvester) Invalidate()            {}
func (s *stubHarvester) HarvestedAt() time.Time { return time.Now() }

func newTestAPI(t *testing.T) *API {
	t.Helper()
	dir := t.TempDir()

	header := filepath.Join(dir, "header.txt")
	if err := os.WriteFile(header, []byte(
		"well_id|county|spud_date|completion_date\nW1|McKenzie|2020-01-01|2020-03-01\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	production := filepath.Join(dir, "production.txt")
	if err := os.WriteFile(production, []byte(
		"well_id|year|month|production\nW1|2020|1|100\nW1|2020|2|500\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	harvester := &stubHarvester{table: &models.RawTable{
		Columns: []string{"File No", "Operator", "Formation", "Completion Date"},
		Rows: [][]string{
			{"100", "Alpha Oil", "Bakken", "2015-06-01"},
			{"200", "Beta Energy", "Three Forks", "2018-02-20"},
		},
	}}

	svc := service.New(service.Config{HeaderPath: header, ProductionPath: production}, harvester, nil, nil)
	if _, err := svc.HarvestWells(context.Background()); err != nil {
		t.Fatalf("seeding harvest failed: %v", err)
	}
	if _, err := svc.RefreshAnalytics(context.Background()); err != nil {
		t.Fatalf("seeding refresh failed: %v", err)
	}
	return NewAPI(Config{Port: 0}, svc)
}

func TestWellsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	t.Run("AllWells", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/wells", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var wells []models.WellRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &wells); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if len(wells) != 2 {
			t.Errorf("wells = %d, want 2", len(wells))
		}
	})

	t.Run("FormationFilter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/wells?formation=Bakken", nil))
		var wells []models.WellRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &wells); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if len(wells) != 1 || wells[0].Formation != "Bakken" {
			t.Errorf("filtered wells = %+v", wells)
		}
	})

	t.Run("YearRangeFilter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/wells?year_from=2016&year_to=2019", nil))
		var wells []models.WellRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &wells); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if len(wells) != 1 || wells[0].FileNo != "200" {
			t.Errorf("filtered wells = %+v", wells)
		}
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analytics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var records []models.AnalyticRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("analytics = %d rows, want 2", len(records))
	}
	// Peak is February; January precedes the window, so the total is the
	// peak month alone.
	if records[0].PostPeak90Day == nil || *records[0].PostPeak90Day != 500 {
		t.Errorf("post_peak_90_day = %v, want 500", records[0].PostPeak90Day)
	}
}

func TestExportEndpoints(t *testing.T) {
	api := newTestAPI(t)

	t.Run("WellsCSV", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/wells/export", nil))
		if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("content type = %q", ct)
		}
		lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
		if len(lines) != 3 {
			t.Errorf("csv lines = %d, want header + 2 rows", len(lines))
		}
		if !strings.HasPrefix(lines[0], "File No,") {
			t.Errorf("csv header = %q", lines[0])
		}
	})

	t.Run("DelimitedFormat", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analytics/export?format=delimited", nil))
		if !strings.Contains(rr.Body.String(), "well_id|county") {
			t.Errorf("expected pipe-delimited output, got %q", rr.Body.String()[:40])
		}
	})
}

func TestTablesUnavailableBeforeFirstRun(t *testing.T) {
	dir := t.TempDir()
	svc := service.New(service.Config{
		HeaderPath:     filepath.Join(dir, "missing_header.txt"),
		ProductionPath: filepath.Join(dir, "missing_production.txt"),
	}, &stubHarvester{table: &models.RawTable{}}, nil, nil)
	api := NewAPI(Config{Port: 0}, svc)

	for _, path := range []string{"/api/analytics", "/api/analytics/export"} {
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rr.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}
