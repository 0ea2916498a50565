/*
errors.go - Error types for calendar primitives

PURPOSE:
  The calendar package is pure date arithmetic. The only failure it can
  signal is a malformed range (start after end). Callers treat it as a
  programming error and decide at the boundary whether it becomes a
  400 or an internal fault.

USAGE:
  r, err := calendar.NewDateRange(start, end)
  if errors.Is(err, calendar.ErrInvalidRange) {
      // reject the request
  }
*/
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a range's start is after its inclusive end.
var ErrInvalidRange = errors.New("invalid range: start after end")

// ErrHoursOutOfRange is returned when decimal hours do not fit a non-negative
// time.Duration.
var ErrHoursOutOfRange = errors.New("hours out of range")

// InvalidRangeError carries the offending bounds.
type InvalidRangeError struct {
	Start        time.Time
	EndInclusive time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s is after end %s",
		e.Start.Format(DateLayout), e.EndInclusive.Format(DateLayout))
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
