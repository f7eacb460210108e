// Package validation performs the structural checks at the load boundary:
// a row must carry a join key and a datable (year, month) before it enters
// the pipeline. Value-level quality (negative cycle times, implausible
// volumes) is deliberately not policed here; the pipeline surfaces such
// data as-is.
package validation

import (
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/basinworks/wellpipe/internal/models"
)

// DataValidator validates typed rows against their struct tags.
type DataValidator struct {
	validate *validator.Validate
}

// NewDataValidator creates a validator for pipeline input rows.
func NewDataValidator() *DataValidator {
	return &DataValidator{validate: validator.New()}
}

// ValidateHeader validates a single well header row.
func (v *DataValidator) ValidateHeader(header *models.WellHeader) error {
	if err := v.validate.Struct(header); err != nil {
		return err
	}
	return nil
}

// ValidateProduction validates a single production row.
func (v *DataValidator) ValidateProduction(rec *models.ProductionRecord) error {
	if err := v.validate.Struct(rec); err != nil {
		return err
	}
	return nil
}

// ValidateBatch filters header and production rows to those that are
// structurally sound, logging what it drops. A row without a well id could
// never survive the join anyway; dropping it here makes the loss visible in
// the logs instead of silent in the merge.
func (v *DataValidator) ValidateBatch(headers []models.WellHeader, records []models.ProductionRecord) ([]models.WellHeader, []models.ProductionRecord) {
	validHeaders := make([]models.WellHeader, 0, len(headers))
	for i := range headers {
		if err := v.ValidateHeader(&headers[i]); err != nil {
			log.Printf("validation: dropping header row for %q: %v", headers[i].WellID, err)
			continue
		}
		validHeaders = append(validHeaders, headers[i])
	}

	validRecords := make([]models.ProductionRecord, 0, len(records))
	for i := range records {
		if err := v.ValidateProduction(&records[i]); err != nil {
			log.Printf("validation: dropping production row for %q (%d-%d): %v",
				records[i].WellID, records[i].Year, records[i].Month, err)
			continue
		}
		validRecords = append(validRecords, records[i])
	}

	if len(validHeaders) != len(headers) || len(validRecords) != len(records) {
		log.Printf("validation: kept %d/%d headers, %d/%d production rows",
			len(validHeaders), len(headers), len(validRecords), len(records))
	}
	return validHeaders, validRecords
}
