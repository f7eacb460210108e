// Package store is the optional PostgreSQL sink for computed tables and
// run bookkeeping. The pipeline's in-memory tables remain the system of
// record; nothing here is required for a run to succeed.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/basinworks/wellpipe/internal/models"
)

// Config holds the database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultConfig returns a database configuration from the environment.
func DefaultConfig() Config {
	return Config{
		Host:     getEnv("WELLPIPE_DB_HOST", "localhost"),
		Port:     getEnvInt("WELLPIPE_DB_PORT", 5432),
		User:     getEnv("WELLPIPE_DB_USER", "wellpipe"),
		Password: getEnv("WELLPIPE_DB_PASSWORD", "wellpipe"),
		DBName:   getEnv("WELLPIPE_DB_NAME", "wellpipe"),
		SSLMode:  getEnv("WELLPIPE_DB_SSL_MODE", "disable"),
	}
}

// Enabled reports whether a database host was configured at all.
func Enabled() bool {
	_, ok := os.LookupEnv("WELLPIPE_DB_HOST")
	return ok
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Database provides methods for persisting pipeline output to PostgreSQL.
type Database struct {
	db     *sqlx.DB
	config Config
}

// NewDatabase creates a new database connection with the given configuration.
func NewDatabase(config Config) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Printf("store: connected to database at %s:%d/%s", config.Host, config.Port, config.DBName)
	return &Database{db: db, config: config}, nil
}

// Close closes the database connection pool.
func (d *Database) Close() error {
	if d.db != nil {
		log.Printf("store: closing database connection")
		return d.db.Close()
	}
	return nil
}

// SetupSchema creates the sink tables if they do not exist.
func (d *Database) SetupSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			well_count INTEGER NOT NULL DEFAULT 0,
			analytic_count INTEGER NOT NULL DEFAULT 0,
			metadata JSONB
		);
		CREATE TABLE IF NOT EXISTS well_records (
			run_id TEXT NOT NULL REFERENCES pipeline_runs(id),
			file_no TEXT NOT NULL,
			operator TEXT,
			formation TEXT,
			completion_date DATE,
			last_prod_rpt_date DATE,
			cum_oil DOUBLE PRECISION,
			cum_water DOUBLE PRECISION,
			cum_gas DOUBLE PRECISION,
			completion_year INTEGER
		);
		CREATE TABLE IF NOT EXISTS analytic_records (
			run_id TEXT NOT NULL REFERENCES pipeline_runs(id),
			well_id TEXT NOT NULL,
			county TEXT,
			spud_date DATE,
			completion_date DATE,
			cycle_time_days INTEGER,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			date DATE NOT NULL,
			production DOUBLE PRECISION NOT NULL,
			post_peak_90_day DOUBLE PRECISION
		);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InsertPipelineRun records a new run in the bookkeeping table.
func (d *Database) InsertPipelineRun(ctx context.Context, run *models.PipelineRun) error {
	const query = `
		INSERT INTO pipeline_runs (id, started_at, finished_at, status, well_count, analytic_count, metadata)
		VALUES (:id, :started_at, :finished_at, :status, :well_count, :analytic_count, :metadata)
	`
	if _, err := d.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}
	return nil
}

// UpdateRunStatus sets a run's status and finish time.
func (d *Database) UpdateRunStatus(ctx context.Context, runID, status string, finishedAt *time.Time) error {
	const query = `UPDATE pipeline_runs SET status = $1, finished_at = $2 WHERE id = $3`
	if _, err := d.db.ExecContext(ctx, query, status, finishedAt, runID); err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return nil
}

// SaveWellRecords bulk-inserts a run's cleaned well table.
func (d *Database) SaveWellRecords(ctx context.Context, runID string, records []models.WellRecord) error {
	if len(records) == 0 {
		return nil
	}
	const query = `
		INSERT INTO well_records (
			run_id, file_no, operator, formation, completion_date,
			last_prod_rpt_date, cum_oil, cum_water, cum_gas, completion_year
		) VALUES (
			:run_id, :file_no, :operator, :formation, :completion_date,
			:last_prod_rpt_date, :cum_oil, :cum_water, :cum_gas, :completion_year
		)
	`
	rows := make([]wellRecordRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, wellRecordRow{RunID: runID, WellRecord: rec})
	}
	if _, err := d.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("failed to insert well records: %w", err)
	}
	log.Printf("store: saved %d well records for run %s", len(records), runID)
	return nil
}

// SaveAnalytics bulk-inserts a run's merged analytic table.
func (d *Database) SaveAnalytics(ctx context.Context, runID string, records []models.AnalyticRecord) error {
	if len(records) == 0 {
		return nil
	}
	const query = `
		INSERT INTO analytic_records (
			run_id, well_id, county, spud_date, completion_date, cycle_time_days,
			year, month, date, production, post_peak_90_day
		) VALUES (
			:run_id, :well_id, :county, :spud_date, :completion_date, :cycle_time_days,
			:year, :month, :date, :production, :post_peak_90_day
		)
	`
	rows := make([]analyticRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, analyticRow{RunID: runID, AnalyticRecord: rec})
	}
	if _, err := d.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("failed to insert analytic records: %w", err)
	}
	log.Printf("store: saved %d analytic records for run %s", len(records), runID)
	return nil
}

// GetLatestRun returns the most recently started run, nil when none exist.
func (d *Database) GetLatestRun(ctx context.Context) (*models.PipelineRun, error) {
	const query = `
		SELECT id, started_at, finished_at, status, well_count, analytic_count, metadata
		FROM pipeline_runs ORDER BY started_at DESC LIMIT 1
	`
	var run models.PipelineRun
	if err := d.db.GetContext(ctx, &run, query); err != nil {
		return nil, fmt.Errorf("failed to fetch latest run: %w", err)
	}
	return &run, nil
}

type wellRecordRow struct {
	RunID string `db:"run_id"`
	models.WellRecord
}

type analyticRow struct {
	RunID string `db:"run_id"`
	models.AnalyticRecord
}
