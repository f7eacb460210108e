// Package harvest fetches the upstream well catalog: one POST per formation
// listed in the catalog page's selection control, each returning an HTML
// table of wells. The scraping is isolated behind the Harvester so the
// analytic core only ever sees a RawTable.
package harvest

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/basinworks/wellpipe/internal/models"
)

// FormationColumn is the category tag added to every harvested row.
const FormationColumn = "Formation"

// Config holds harvester configuration.
type Config struct {
	// BaseURL serves the catalog page carrying the formation <select>.
	BaseURL string
	// SelectName is the name of the <select> control and of the form field
	// posted back to request one formation's table.
	SelectName string
	// SentinelValue is the option denoting "no selection"; it is excluded
	// from the harvest.
	SentinelValue string
	// TableID identifies the results <table> on each formation page.
	TableID string
	// RequestTimeout bounds each outbound request.
	RequestTimeout time.Duration
	// HarvestDeadline bounds the whole sequential fan-out.
	HarvestDeadline time.Duration
}

// DefaultConfig returns a harvester configuration from the environment.
func DefaultConfig() Config {
	return Config{
		BaseURL:         getEnv("WELLPIPE_CATALOG_URL", "https://www.dmr.nd.gov/oilgas/bakkenwells.asp"),
		SelectName:      getEnv("WELLPIPE_CATALOG_SELECT", "ddmPoolSelect"),
		SentinelValue:   getEnv("WELLPIPE_CATALOG_SENTINEL", "SelectOne"),
		TableID:         getEnv("WELLPIPE_CATALOG_TABLE_ID", "largeTableOutput"),
		RequestTimeout:  30 * time.Second,
		HarvestDeadline: 5 * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// FetchError is a transport-level failure reaching the upstream catalog.
// It aborts the whole harvest with no partial result.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return "fetch failed for " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Harvester fetches and parses the well catalog. The harvest is expensive
// and immutable within a session, so the result is memoized until
// Invalidate is called.
type Harvester struct {
	config     Config
	httpClient *http.Client

	mu        sync.Mutex
	cached    *models.RawTable
	fetchedAt time.Time
}

// NewHarvester creates a harvester with the given configuration.
func NewHarvester(config Config) *Harvester {
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.HarvestDeadline == 0 {
		config.HarvestDeadline = 5 * time.Minute
	}
	return &Harvester{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
	}
}

// Harvest fetches every formation's table and concatenates them into one
// raw table tagged by formation. Formations are fetched in sorted order so
// repeated harvests concatenate identically. A formation page without the
// expected table is skipped; a transport failure aborts the harvest.
func (h *Harvester) Harvest(ctx context.Context) (*models.RawTable, error) {
	h.mu.Lock()
	if h.cached != nil {
		cached := h.cached
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, h.config.HarvestDeadline)
	defer cancel()

	formations, err := h.fetchFormations(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(formations)
	log.Printf("harvest: catalog lists %d formations", len(formations))

	result := &models.RawTable{}
	for _, formation := range formations {
		table, err := h.fetchFormationTable(ctx, formation)
		if err != nil {
			return nil, err
		}
		if table == nil {
			log.Printf("harvest: no well table for formation %q, skipping", formation)
			continue
		}
		appendTagged(result, table, formation)
		log.Printf("harvest: formation %q contributed %d rows", formation, len(table.Rows))
	}

	h.mu.Lock()
	h.cached = result
	h.fetchedAt = time.Now()
	h.mu.Unlock()

	log.Printf("harvest: complete, %d rows across %d columns", len(result.Rows), len(result.Columns))
	return result, nil
}

// Invalidate drops the memoized harvest so the next Harvest refetches.
func (h *Harvester) Invalidate() {
	h.mu.Lock()
	h.cached = nil
	h.mu.Unlock()
}

// HarvestedAt returns when the cached harvest was fetched, zero if none.
func (h *Harvester) HarvestedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fetchedAt
}

// fetchFormations GETs the catalog page and enumerates the formation
// options, excluding the sentinel.
func (h *Harvester) fetchFormations(ctx context.Context) ([]string, error) {
	doc, err := h.fetchDocument(ctx, http.MethodGet, h.config.BaseURL, nil)
	if err != nil {
		return nil, err
	}

	options := selectOptions(doc, h.config.SelectName)
	formations := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == "" || opt == h.config.SentinelValue {
			continue
		}
		formations = append(formations, opt)
	}
	return formations, nil
}

// fetchFormationTable POSTs the formation value back to the catalog and
// parses the results table. Returns (nil, nil) when the page lacks the
// expected table.
func (h *Harvester) fetchFormationTable(ctx context.Context, formation string) (*models.RawTable, error) {
	form := url.Values{}
	form.Set(h.config.SelectName, formation)

	doc, err := h.fetchDocument(ctx, http.MethodPost, h.config.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	return parseTable(doc, h.config.TableID), nil
}

func (h *Harvester) fetchDocument(ctx context.Context, method, rawURL string, body io.Reader) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: errors.Wrap(err, "building request")}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, Err: errors.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: errors.Wrap(err, "parsing response body")}
	}
	return doc, nil
}

// appendTagged appends src's rows to dst with the formation tag, aligning
// columns by name. Formations occasionally differ in column sets; missing
// cells are padded empty rather than shifted by position.
func appendTagged(dst, src *models.RawTable, formation string) {
	cols := append([]string{}, src.Columns...)
	cols = append(cols, FormationColumn)

	for _, name := range cols {
		if dst.ColumnIndex(name) < 0 {
			dst.Columns = append(dst.Columns, name)
			for i := range dst.Rows {
				dst.Rows[i] = append(dst.Rows[i], "")
			}
		}
	}

	for _, row := range src.Rows {
		out := make([]string, len(dst.Columns))
		for i, name := range src.Columns {
			if i >= len(row) {
				break
			}
			if idx := dst.ColumnIndex(name); idx >= 0 {
				out[idx] = row[i]
			}
		}
		out[dst.ColumnIndex(FormationColumn)] = formation
		dst.Rows = append(dst.Rows, out)
	}
}
