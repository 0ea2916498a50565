/*
store.go - Persistence contract for the work-time domain

PURPOSE:
  The domain never performs I/O itself. Use cases read holidays,
  activities, vacations and allowances through this interface and hand
  plain values to the calendar and alerts packages.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and local runs
  - store/sqlite: SQLite (WAL) with a holiday cache

SEE ALSO:
  - service.go: the use case consuming Store
*/
package worktime

import (
	"context"
	"time"

	"github.com/warp/worktime-engine/calendar"
)

// HolidayStore supplies the holiday calendar.
type HolidayStore interface {
	SaveHoliday(ctx context.Context, h calendar.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error

	// Holidays returns holidays within [from, to], ordered by date.
	Holidays(ctx context.Context, from, to time.Time) (calendar.Holidays, error)
}

// ActivityStore persists logged activities.
type ActivityStore interface {
	// SaveActivity upserts by ID. IDs are unique across users; saving an
	// existing ID under another user moves the activity.
	SaveActivity(ctx context.Context, a Activity) error

	// Activities returns the user's activities intersecting [from, to), ordered by start.
	Activities(ctx context.Context, userID UserID, from, to time.Time) ([]Activity, error)
}

// VacationStore persists vacations and yearly allowances.
type VacationStore interface {
	SaveVacation(ctx context.Context, v Vacation) error

	// Vacations returns the user's vacations sharing at least one day with [from, to].
	Vacations(ctx context.Context, userID UserID, from, to time.Time) ([]Vacation, error)

	SaveAllowance(ctx context.Context, a Allowance) error

	// Allowance returns ErrNotFound when nothing was recorded for the year.
	Allowance(ctx context.Context, userID UserID, year int) (Allowance, error)
}

// Store is everything the work-time use cases need.
type Store interface {
	HolidayStore
	ActivityStore
	VacationStore

	// Users lists every user with an allowance or an activity.
	Users(ctx context.Context) ([]UserID, error)
}
