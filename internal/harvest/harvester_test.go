package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/basinworks/wellpipe/internal/models"
)

const catalogPage = `<html><body>
<form method="post">
<select name="ddmPoolSelect">
  <option value="SelectOne">Select a Pool</option>
  <option value="Bakken">Bakken</option>
  <option value="Three Forks">Three Forks</option>
  <option value="Madison">Madison</option>
</select>
</form>
</body></html>`

func formationPage(rows string) string {
	return fmt.Sprintf(`<html><body>
<table id="largeTableOutput">
<tr><th>File No</th><th>Operator</th><th>Completion Date</th><th>Cum Oil</th></tr>
%s
</table>
</body></html>`, rows)
}

// newCatalogServer serves a catalog fixture: Bakken and Three Forks have
// well tables, Madison's page has no table at all.
func newCatalogServer(t *testing.T, requests *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		if r.Method == http.MethodGet {
			fmt.Fprint(w, catalogPage)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch r.PostForm.Get("ddmPoolSelect") {
		case "Bakken":
			fmt.Fprint(w, formationPage(`<tr><td>100</td><td>Alpha Oil</td><td>2020-05-14</td><td>1,234</td></tr>
<tr><td>200</td><td>Beta Energy</td><td>not a date</td><td>N/A</td></tr>`))
		case "Three Forks":
			fmt.Fprint(w, formationPage(`<tr><td>300</td><td>Alpha Oil</td><td>2019-01-02</td><td>9,000</td></tr>`))
		default:
			fmt.Fprint(w, `<html><body><p>No wells found.</p></body></html>`)
		}
	}))
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		SelectName:      "ddmPoolSelect",
		SentinelValue:   "SelectOne",
		TableID:         "largeTableOutput",
		RequestTimeout:  5 * time.Second,
		HarvestDeadline: 10 * time.Second,
	}
}

func TestHarvest(t *testing.T) {
	var requests int64
	srv := newCatalogServer(t, &requests)
	defer srv.Close()

	h := NewHarvester(testConfig(srv.URL))
	raw, err := h.Harvest(context.Background())
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}

	t.Run("ConcatenatesAllFormations", func(t *testing.T) {
		if len(raw.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(raw.Rows))
		}
	})

	t.Run("TagsFormationColumn", func(t *testing.T) {
		idx := raw.ColumnIndex(FormationColumn)
		if idx < 0 {
			t.Fatal("no Formation column in harvested table")
		}
		formations := map[string]int{}
		for _, row := range raw.Rows {
			formations[row[idx]]++
		}
		if formations["Bakken"] != 2 || formations["Three Forks"] != 1 {
			t.Errorf("formation tags = %v", formations)
		}
	})

	t.Run("MalformedFormationSkipped", func(t *testing.T) {
		idx := raw.ColumnIndex(FormationColumn)
		for _, row := range raw.Rows {
			if row[idx] == "Madison" {
				t.Error("Madison has no table and should contribute no rows")
			}
		}
	})

	t.Run("MemoizedUntilInvalidate", func(t *testing.T) {
		before := atomic.LoadInt64(&requests)
		if _, err := h.Harvest(context.Background()); err != nil {
			t.Fatalf("second harvest failed: %v", err)
		}
		if after := atomic.LoadInt64(&requests); after != before {
			t.Errorf("memoized harvest issued %d extra requests", after-before)
		}

		h.Invalidate()
		if _, err := h.Harvest(context.Background()); err != nil {
			t.Fatalf("post-invalidate harvest failed: %v", err)
		}
		if after := atomic.LoadInt64(&requests); after == before {
			t.Error("invalidated harvest issued no requests")
		}
	})
}

func TestHarvestTransportFailure(t *testing.T) {
	srv := newCatalogServer(t, new(int64))
	srv.Close() // kill the server so every request fails

	h := NewHarvester(testConfig(srv.URL))
	_, err := h.Harvest(context.Background())
	if err == nil {
		t.Fatal("expected a fetch error against a dead server")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("error %T is not a *FetchError", err)
	}
}

func TestHarvestTimeouts(t *testing.T) {
	t.Run("RequestTimeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			fmt.Fprint(w, catalogPage)
		}))
		defer srv.Close()

		config := testConfig(srv.URL)
		config.RequestTimeout = 30 * time.Millisecond
		h := NewHarvester(config)

		_, err := h.Harvest(context.Background())
		if err == nil {
			t.Fatal("expected the harvest to abort when a request outlives its timeout")
		}
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Errorf("error %T is not a *FetchError", err)
		}
	})

	t.Run("HarvestDeadline", func(t *testing.T) {
		var requests int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			if r.Method == http.MethodGet {
				fmt.Fprint(w, catalogPage)
				return
			}
			time.Sleep(200 * time.Millisecond) // every formation page is slow
			fmt.Fprint(w, formationPage(`<tr><td>100</td><td>Alpha Oil</td><td>2020-05-14</td><td>1</td></tr>`))
		}))
		defer srv.Close()

		config := testConfig(srv.URL)
		config.HarvestDeadline = 80 * time.Millisecond
		h := NewHarvester(config)

		_, err := h.Harvest(context.Background())
		if err == nil {
			t.Fatal("expected the harvest to abort when the overall deadline elapses")
		}
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Errorf("error %T is not a *FetchError", err)
		}
		// The catalog GET plus at most one formation POST before the abort.
		if n := atomic.LoadInt64(&requests); n > 2 {
			t.Errorf("harvest kept fetching past the deadline, %d requests", n)
		}
	})
}

func TestHarvestEmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><select name="ddmPoolSelect"><option value="SelectOne">Select</option></select></body></html>`)
	}))
	defer srv.Close()

	h := NewHarvester(testConfig(srv.URL))
	raw, err := h.Harvest(context.Background())
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}
	if !raw.Empty() {
		t.Errorf("expected empty table, got %d rows", len(raw.Rows))
	}
	if len(raw.Columns) != 0 {
		t.Errorf("empty harvest must not fabricate a schema, got columns %v", raw.Columns)
	}
}

func TestWellRecords(t *testing.T) {
	raw := &models.RawTable{
		Columns: []string{"File No", "Operator", "Completion Date", "Cum Oil", FormationColumn},
		Rows: [][]string{
			{"100", "Alpha Oil", "2020-05-14", "1,234", "Bakken"},
			{"100", "Alpha Oil", "2020-05-14", "1,234", "Bakken"}, // duplicate
			{"200", "Beta Energy", "not a date", "N/A", "Bakken"},
		},
	}

	records := WellRecords(raw)
	if len(records) != 2 {
		t.Fatalf("expected 2 records after dedup, got %d", len(records))
	}

	first := records[0]
	if first.FileNo != "100" || first.CumOil == nil || *first.CumOil != 1234 {
		t.Errorf("first record = %+v", first)
	}
	if first.CompletionYear == nil || *first.CompletionYear != 2020 {
		t.Errorf("completion year = %v, want 2020", first.CompletionYear)
	}

	second := records[1]
	if second.CompletionDate != nil {
		t.Errorf("unparseable completion date should be nil, got %v", second.CompletionDate)
	}
	if second.CumOil != nil {
		t.Errorf("non-numeric cum oil should be nil, got %v", *second.CumOil)
	}
	if second.CompletionYear != nil {
		t.Errorf("completion year without a date should be nil, got %v", *second.CompletionYear)
	}

	// The raw table may be the harvester's memoized copy; conversion must
	// not compact or reorder it.
	if len(raw.Rows) != 3 {
		t.Errorf("conversion modified the raw table: %d rows, want 3", len(raw.Rows))
	}
}
