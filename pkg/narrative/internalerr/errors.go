package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNoData           = errors.New("no mention data available")
	ErrSourceFailed     = errors.New("retrieval source failed")
	ErrNotifyFailed     = errors.New("alert delivery failed")
)
