package models

import "errors"

// Custom errors
var (
	ErrNoReports       = errors.New("no report files found")
	ErrNotFound        = errors.New("record not found")
	ErrStorageDisabled = errors.New("result storage is not enabled")
)
