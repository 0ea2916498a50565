package worktime

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrActivityOverlap is returned when a new activity overlaps one already logged.
	ErrActivityOverlap = errors.New("activity overlaps an existing activity")

	// ErrNegativeDuration is returned for summaries or allowances below zero.
	ErrNegativeDuration = errors.New("negative duration")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("not found")
)

// OverlapError lists the activities a candidate collides with.
type OverlapError struct {
	Candidate Activity
	Conflicts []Activity
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("activity %s overlaps %d existing activities", e.Candidate.Interval.Start.Format(time.RFC3339), len(e.Conflicts))
}

func (e *OverlapError) Unwrap() error { return ErrActivityOverlap }

// NegativeDurationError names the offending field.
type NegativeDurationError struct {
	Field string
	Value time.Duration
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("%s must not be negative (got %s)", e.Field, e.Value)
}

func (e *NegativeDurationError) Unwrap() error { return ErrNegativeDuration }
