package models

import "fmt"

// DataUnavailableError reports that the prediction file could not be turned
// into a series: it is missing, unreadable, malformed, or lacks a required
// column.
type DataUnavailableError struct {
	Path   string
	Reason string
	Err    error
}

// Error returns the error message string.
func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prediction data unavailable (%s): %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("prediction data unavailable (%s): %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailableError creates a DataUnavailableError for path.
func NewDataUnavailableError(path, reason string, err error) error {
	return &DataUnavailableError{Path: path, Reason: reason, Err: err}
}

// NewDataUnavailableErrorf creates a DataUnavailableError with a formatted reason.
func NewDataUnavailableErrorf(path string, format string, args ...interface{}) error {
	return &DataUnavailableError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
