package models

import (
	"time"
)

// DataSource identifies where a table came from
type DataSource string

const (
	WebHarvestSource DataSource = "web-harvest"
	HeaderFileSource DataSource = "header-file"
	ProductionSource DataSource = "production-file"
)

// WellRecord is one cleaned row of the harvested well catalog.
// Nullable fields are pointers: a parse failure on the source cell
// becomes nil, never an error.
type WellRecord struct {
	FileNo          string     `json:"file_no" db:"file_no" validate:"required"`
	Operator        string     `json:"operator" db:"operator"`
	Formation       string     `json:"formation" db:"formation"`
	CompletionDate  *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	LastProdRptDate *time.Time `json:"last_prod_rpt_date,omitempty" db:"last_prod_rpt_date"`
	CumOil          *float64   `json:"cum_oil,omitempty" db:"cum_oil"`
	CumWater        *float64   `json:"cum_water,omitempty" db:"cum_water"`
	CumGas          *float64   `json:"cum_gas,omitempty" db:"cum_gas"`
	CompletionYear  *int       `json:"completion_year,omitempty" db:"completion_year"`
}

// WellHeader is one row of the pipe-delimited well header file.
type WellHeader struct {
	WellID         string     `json:"well_id" db:"well_id" validate:"required"`
	County         string     `json:"county" db:"county"`
	SpudDate       *time.Time `json:"spud_date,omitempty" db:"spud_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	// CycleTimeDays is completion minus spud in whole days. Nil when either
	// date is nil; negative values are surfaced as-is, never clamped.
	CycleTimeDays *int `json:"cycle_time_days,omitempty" db:"cycle_time_days"`
}

// ProductionRecord is one (well, month) observation from the monthly
// production file.
type ProductionRecord struct {
	WellID     string    `json:"well_id" db:"well_id" validate:"required"`
	Year       int       `json:"year" db:"year" validate:"required"`
	Month      int       `json:"month" db:"month" validate:"required,gte=1,lte=12"`
	Production float64   `json:"production" db:"production"`
	// Date is the first day of (Year, Month).
	Date time.Time `json:"date" db:"date"`
}

// PeakWindow is the 3-calendar-month window starting at a well's
// peak-production month. EndDate is exclusive.
type PeakWindow struct {
	WellID    string    `json:"well_id" db:"well_id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	// PostPeakTotal is the sum of production over [StartDate, EndDate).
	PostPeakTotal float64 `json:"post_peak_total" db:"post_peak_total"`
}

// AnalyticRecord is one row of the merged analytic table: a production
// observation joined with its well header, with the per-well post-peak
// total broadcast across all of that well's rows.
type AnalyticRecord struct {
	WellID         string     `json:"well_id" db:"well_id"`
	County         string     `json:"county" db:"county"`
	SpudDate       *time.Time `json:"spud_date,omitempty" db:"spud_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	CycleTimeDays  *int       `json:"cycle_time_days,omitempty" db:"cycle_time_days"`
	Year           int        `json:"year" db:"year"`
	Month          int        `json:"month" db:"month"`
	Date           time.Time  `json:"date" db:"date"`
	Production     float64    `json:"production" db:"production"`
	PostPeak90Day  *float64   `json:"post_peak_90_day,omitempty" db:"post_peak_90_day"`
}

// PipelineRun is bookkeeping for one end-to-end pipeline execution.
type PipelineRun struct {
	ID            string     `json:"id" db:"id" validate:"required"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Status        string     `json:"status" db:"status" validate:"required"`
	WellCount     int        `json:"well_count" db:"well_count"`
	AnalyticCount int        `json:"analytic_count" db:"analytic_count"`
	Metadata      []byte     `json:"metadata,omitempty" db:"metadata"` // JSONB in PostgreSQL
}

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
