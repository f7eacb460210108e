// Package service orchestrates the pipeline end to end and owns the
// computed tables. Results are memoized; a failed refresh keeps the last
// good tables in place so consumers never see a half-built table.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/basinworks/wellpipe/internal/harvest"
	"github.com/basinworks/wellpipe/internal/loader"
	"github.com/basinworks/wellpipe/internal/models"
	"github.com/basinworks/wellpipe/internal/pipeline"
	"github.com/basinworks/wellpipe/internal/validation"
)

// CatalogHarvester is the narrow interface the service needs from the web
// harvest path. The scraping technique behind it is deliberately opaque.
type CatalogHarvester interface {
	Harvest(ctx context.Context) (*models.RawTable, error)
	Invalidate()
	HarvestedAt() time.Time
}

// RunSink persists pipeline runs and computed tables. Optional.
type RunSink interface {
	InsertPipelineRun(ctx context.Context, run *models.PipelineRun) error
	UpdateRunStatus(ctx context.Context, runID, status string, finishedAt *time.Time) error
	SaveWellRecords(ctx context.Context, runID string, records []models.WellRecord) error
	SaveAnalytics(ctx context.Context, runID string, records []models.AnalyticRecord) error
}

// RefreshNotifier announces completed refreshes to downstream consumers.
// Optional.
type RefreshNotifier interface {
	PublishRefresh(ctx context.Context, event RefreshEvent) error
}

// RefreshEvent describes one completed refresh.
type RefreshEvent struct {
	RunID         string    `json:"run_id"`
	FinishedAt    time.Time `json:"finished_at"`
	WellCount     int       `json:"well_count"`
	AnalyticCount int       `json:"analytic_count"`
}

// Config holds the input locations for the delimited path.
type Config struct {
	HeaderPath     string
	ProductionPath string
}

// WellService runs the pipeline and serves its computed tables.
type WellService struct {
	config    Config
	harvester CatalogHarvester
	loader    *loader.Loader
	validator *validation.DataValidator
	sink      RunSink
	notifier  RefreshNotifier

	mu          sync.RWMutex
	wells       []models.WellRecord
	summary     *pipeline.WellSummary
	analytics   []models.AnalyticRecord
	refreshedAt time.Time
	lastRunID   string
}

// New creates a service. sink and notifier may be nil; they are optional
// side channels, not dependencies of the computation.
func New(config Config, harvester CatalogHarvester, sink RunSink, notifier RefreshNotifier) *WellService {
	return &WellService{
		config:    config,
		harvester: harvester,
		loader:    loader.NewLoader(),
		validator: validation.NewDataValidator(),
		sink:      sink,
		notifier:  notifier,
	}
}

// HarvestWells runs the web harvest path and publishes the cleaned well
// table. The harvest itself is memoized by the harvester; call
// Invalidate to force a refetch. On failure the previously published
// table stays available.
func (s *WellService) HarvestWells(ctx context.Context) ([]models.WellRecord, error) {
	raw, err := s.harvester.Harvest(ctx)
	if err != nil {
		return nil, fmt.Errorf("harvest stage: %w", err)
	}

	records := harvest.WellRecords(raw)
	summary := pipeline.Summarize(records)

	s.mu.Lock()
	s.wells = records
	s.summary = &summary
	s.mu.Unlock()

	log.Printf("service: well table published, %d records", len(records))
	return records, nil
}

// RefreshAnalytics runs the delimited path: load both files, derive cycle
// times and peak windows, and merge into the analytic table. The previous
// table stays published until the new one is fully built.
func (s *WellService) RefreshAnalytics(ctx context.Context) ([]models.AnalyticRecord, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	run := &models.PipelineRun{ID: runID, StartedAt: startedAt, Status: models.RunStatusRunning}
	s.recordRun(ctx, run)

	merged, err := s.buildAnalytics(ctx)
	if err != nil {
		s.finishRun(ctx, runID, models.RunStatusFailed)
		return nil, err
	}

	s.mu.Lock()
	s.analytics = merged
	s.refreshedAt = time.Now().UTC()
	s.lastRunID = runID
	s.mu.Unlock()

	if s.sink != nil {
		if err := s.sink.SaveAnalytics(ctx, runID, merged); err != nil {
			log.Printf("service: saving analytic table failed: %v", err)
			// The in-memory table is the system of record; keep going.
		}
		if wells := s.Wells(); len(wells) > 0 {
			if err := s.sink.SaveWellRecords(ctx, runID, wells); err != nil {
				log.Printf("service: saving well table failed: %v", err)
			}
		}
	}
	s.finishRun(ctx, runID, models.RunStatusCompleted)

	if s.notifier != nil {
		event := RefreshEvent{
			RunID:         runID,
			FinishedAt:    time.Now().UTC(),
			WellCount:     len(s.Wells()),
			AnalyticCount: len(merged),
		}
		if err := s.notifier.PublishRefresh(ctx, event); err != nil {
			log.Printf("service: refresh notification failed: %v", err)
		}
	}

	log.Printf("service: analytic table published, %d rows (run %s)", len(merged), runID)
	return merged, nil
}

// buildAnalytics performs the load -> derive -> aggregate -> merge chain,
// tagging errors with the stage that failed.
func (s *WellService) buildAnalytics(ctx context.Context) ([]models.AnalyticRecord, error) {
	headerRaw, err := s.loader.Load(s.config.HeaderPath)
	if err != nil {
		return nil, fmt.Errorf("header load stage: %w", err)
	}
	productionRaw, err := s.loader.Load(s.config.ProductionPath)
	if err != nil {
		return nil, fmt.Errorf("production load stage: %w", err)
	}

	headers, err := loader.Headers(headerRaw, s.config.HeaderPath)
	if err != nil {
		return nil, fmt.Errorf("header schema stage: %w", err)
	}
	productions, err := loader.Productions(productionRaw, s.config.ProductionPath)
	if err != nil {
		return nil, fmt.Errorf("production schema stage: %w", err)
	}

	headers, productions = s.validator.ValidateBatch(headers, productions)

	pipeline.DeriveCycleTimes(headers)
	windows := pipeline.ComputePeakWindows(productions)
	return pipeline.Merge(headers, productions, windows), nil
}

// Wells returns the last published well table, nil before the first
// successful harvest.
func (s *WellService) Wells() []models.WellRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wells
}

// Analytics returns the last published analytic table, nil before the
// first successful refresh.
func (s *WellService) Analytics() []models.AnalyticRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

// Summary returns the aggregations over the last published well table.
func (s *WellService) Summary() *pipeline.WellSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// RefreshedAt returns when the analytic table was last rebuilt.
func (s *WellService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Invalidate drops every memoized input so the next harvest/refresh
// re-reads its sources. Published tables are untouched until a rebuild
// succeeds.
func (s *WellService) Invalidate() {
	s.harvester.Invalidate()
	s.loader.Invalidate()
}

func (s *WellService) recordRun(ctx context.Context, run *models.PipelineRun) {
	if s.sink == nil {
		return
	}
	meta, err := json.Marshal(map[string]interface{}{
		"header_path":     s.config.HeaderPath,
		"production_path": s.config.ProductionPath,
	})
	if err == nil {
		run.Metadata = meta
	}
	if err := s.sink.InsertPipelineRun(ctx, run); err != nil {
		log.Printf("service: recording run %s failed: %v", run.ID, err)
	}
}

func (s *WellService) finishRun(ctx context.Context, runID, status string) {
	if s.sink == nil {
		return
	}
	now := time.Now().UTC()
	if err := s.sink.UpdateRunStatus(ctx, runID, status, &now); err != nil {
		log.Printf("service: updating run %s failed: %v", runID, err)
	}
}
