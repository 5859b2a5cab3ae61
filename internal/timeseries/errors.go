package timeseries

import (
	"errors"
	"fmt"
)

// ValidationError reports an input the aggregator refuses to work with.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ErrHistoryNotLoaded is returned when an interval is applied to a holding
// view before any history was loaded into it.
var ErrHistoryNotLoaded = errors.New("holding history not loaded")

// ErrSeriesLength is returned when a card is built from dates and values of
// different lengths.
var ErrSeriesLength = errors.New("dates and values differ in length")

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
