package validation

import "errors"

// Validation errors
var (
	ErrMissingWellID   = errors.New("missing well identifier")
	ErrMonthOutOfRange = errors.New("month out of range")
	ErrInvalidHeader   = errors.New("invalid well header row")
	ErrInvalidRecord   = errors.New("invalid production row")
)
