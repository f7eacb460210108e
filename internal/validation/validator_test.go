package validation

import (
	"testing"
	"time"

	"github.com/basinworks/wellpipe/internal/models"
)

func TestValidateBatch(t *testing.T) {
	headers := []models.WellHeader{
		{WellID: "W1", County: "Dunn"},
		{County: "Stark"}, // no join key
	}
	records := []models.ProductionRecord{
		{WellID: "W1", Year: 2020, Month: 1, Production: 5, Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{WellID: "W1", Year: 2020, Month: 13, Production: 5}, // month out of range
		{Year: 2020, Month: 2},                               // no join key
	}

	validHeaders, validRecords := NewDataValidator().ValidateBatch(headers, records)

	if len(validHeaders) != 1 || validHeaders[0].WellID != "W1" {
		t.Errorf("valid headers = %+v", validHeaders)
	}
	if len(validRecords) != 1 || validRecords[0].Month != 1 {
		t.Errorf("valid records = %+v", validRecords)
	}
}

func TestNegativeCycleTimeIsNotPoliced(t *testing.T) {
	days := -45
	header := models.WellHeader{WellID: "W1", CycleTimeDays: &days}
	if err := NewDataValidator().ValidateHeader(&header); err != nil {
		t.Errorf("negative cycle time should pass structural validation: %v", err)
	}
}
