/*
Package worktime holds the work-time domain: annual summaries, logged
activities, vacations and the use cases that aggregate them.

KEY CONCEPTS:
  - AnnualWorkSummary: per-user, per-year totals consumed by the alerts engine
  - Activity: time logged by a user under a project role
  - RoleFilter: which project roles count toward worked time
  - Vacation / Allowance: consumed and earned vacation

All values are transient. Persistence sits behind the Store interface.

SEE ALSO:
  - service.go: aggregation use case
  - store.go: persistence contract
  - calendar package: date arithmetic used throughout
*/
package worktime

import (
	"time"

	"github.com/warp/worktime-engine/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type ProjectRoleID string

// =============================================================================
// ANNUAL WORK SUMMARY
// =============================================================================

// AnnualWorkSummary aggregates one user's year. All durations are non-negative.
type AnnualWorkSummary struct {
	UserID            UserID
	Year              int
	TargetWorkingTime time.Duration
	WorkedTime        time.Duration
	EarnedVacations   time.Duration
	ConsumedVacations time.Duration
}

// Validate rejects summaries with negative durations.
func (s AnnualWorkSummary) Validate() error {
	fields := []struct {
		name  string
		value time.Duration
	}{
		{"target_working_time", s.TargetWorkingTime},
		{"worked_time", s.WorkedTime},
		{"earned_vacations", s.EarnedVacations},
		{"consumed_vacations", s.ConsumedVacations},
	}
	for _, f := range fields {
		if f.value < 0 {
			return &NegativeDurationError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// PendingVacations is the unused vacation balance, never below zero.
func (s AnnualWorkSummary) PendingVacations() time.Duration {
	return max(s.EarnedVacations-s.ConsumedVacations, 0)
}

// MissingWork is how far worked time falls short of target, never below zero.
func (s AnnualWorkSummary) MissingWork() time.Duration {
	return max(s.TargetWorkingTime-s.WorkedTime, 0)
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// Activity is a block of time a user logged against a project role.
type Activity struct {
	ID          string
	UserID      UserID
	RoleID      ProjectRoleID
	Interval    calendar.TimeInterval
	Description string
}

func (a Activity) Duration() time.Duration { return calendar.Duration(a.Interval) }

// =============================================================================
// VACATIONS
// =============================================================================

// Vacation is a span of days off, both ends included.
type Vacation struct {
	ID     string
	UserID UserID
	Start  time.Time
	End    time.Time
}

// Range returns the vacation as a DateRange.
func (v Vacation) Range() (calendar.DateRange, error) {
	return calendar.NewDateRange(v.Start, v.End)
}

// Allowance is the vacation a user earned for a year.
type Allowance struct {
	UserID UserID
	Year   int
	Earned time.Duration
}
