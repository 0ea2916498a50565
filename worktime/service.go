/*
service.go - Work-time use cases

PURPOSE:
  Builds AnnualWorkSummary values from stored activities, vacations,
  allowances and holidays, counts workable days, and guards activity
  logging against overlaps.

AGGREGATION RULES:
  For a user and year Y:
    workable days   = days of Y that are not weekends or holidays
    consumed        = workable vacation days in Y * workday
    target          = workable days * workday - consumed (never negative)
    worked          = sum of workable-role activities, clipped to Y
    earned          = allowance for Y, zero when none was recorded
*/
package worktime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/warp/worktime-engine/calendar"
)

// DefaultWorkday is the length of a working day when none is configured.
const DefaultWorkday = 8 * time.Hour

// Service implements the work-time use cases over a Store.
type Service struct {
	store   Store
	roles   RoleFilter
	workday time.Duration
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithWorkday(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.workday = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, roles RoleFilter, opts ...Option) *Service {
	s := &Service{
		store:   store,
		roles:   roles,
		workday: DefaultWorkday,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Workday() time.Duration { return s.workday }
func (s *Service) Roles() RoleFilter      { return s.roles }

// =============================================================================
// CALENDAR
// =============================================================================

// WorkableDays returns the workable days of [start, end] using stored holidays.
func (s *Service) WorkableDays(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	r, err := calendar.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	holidays, err := s.store.Holidays(ctx, r.Start(), r.EndInclusive())
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	return calendar.WorkableDays(r, holidays.Dates()), nil
}

// =============================================================================
// ANNUAL SUMMARY
// =============================================================================

// AnnualSummary aggregates the user's year from storage.
func (s *Service) AnnualSummary(ctx context.Context, userID UserID, year int) (AnnualWorkSummary, error) {
	yr := calendar.YearRange(year)
	holidays, err := s.store.Holidays(ctx, yr.Start(), yr.EndInclusive())
	if err != nil {
		return AnnualWorkSummary{}, fmt.Errorf("load holidays: %w", err)
	}
	holidayDates := holidays.Dates()

	yearStart := yr.Start()
	yearEnd := yr.EndInclusive().AddDate(0, 0, 1)
	activities, err := s.store.Activities(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return AnnualWorkSummary{}, fmt.Errorf("load activities: %w", err)
	}

	vacations, err := s.store.Vacations(ctx, userID, yr.Start(), yr.EndInclusive())
	if err != nil {
		return AnnualWorkSummary{}, fmt.Errorf("load vacations: %w", err)
	}

	earned := time.Duration(0)
	allowance, err := s.store.Allowance(ctx, userID, year)
	switch {
	case err == nil:
		earned = allowance.Earned
	case !errors.Is(err, ErrNotFound):
		return AnnualWorkSummary{}, fmt.Errorf("load allowance: %w", err)
	}

	workableDays := calendar.CountWorkableDays(yr, holidayDates)
	vacationDays := s.vacationDays(yr, vacations, holidayDates)
	consumed := time.Duration(vacationDays) * s.workday

	summary := AnnualWorkSummary{
		UserID:            userID,
		Year:              year,
		TargetWorkingTime: max(time.Duration(workableDays)*s.workday-consumed, 0),
		WorkedTime:        s.workedTime(activities, yearStart, yearEnd),
		EarnedVacations:   earned,
		ConsumedVacations: consumed,
	}

	s.logger.Debug("annual summary aggregated",
		zap.String("user_id", string(userID)),
		zap.Int("year", year),
		zap.Int("workable_days", workableDays),
		zap.Int("vacation_days", vacationDays),
		zap.Int("activities", len(activities)),
	)
	return summary, nil
}

// vacationDays counts distinct workable days covered by vacations inside yr.
func (s *Service) vacationDays(yr calendar.DateRange, vacations []Vacation, holidays []time.Time) int {
	seen := make(map[time.Time]struct{})
	for _, v := range vacations {
		vr, err := v.Range()
		if err != nil {
			s.logger.Warn("skipping malformed vacation", zap.String("vacation_id", v.ID), zap.Error(err))
			continue
		}
		inYear, ok := vr.Intersect(yr)
		if !ok {
			continue
		}
		for _, d := range calendar.WorkableDays(inYear, holidays) {
			seen[d] = struct{}{}
		}
	}
	return len(seen)
}

// workedTime sums workable-role activities clipped to [from, to).
func (s *Service) workedTime(activities []Activity, from, to time.Time) time.Duration {
	var total time.Duration
	for _, a := range activities {
		if !s.roles.IsWorkable(a.RoleID) {
			continue
		}
		start := calendar.MaxDate(a.Interval.Start, from)
		end := calendar.MinDate(a.Interval.End, to)
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// AddActivity stores a, refusing it when it overlaps another activity of the
// same user.
func (s *Service) AddActivity(ctx context.Context, a Activity) error {
	if a.Interval.Start.After(a.Interval.End) {
		return &calendar.InvalidRangeError{Start: a.Interval.Start, EndInclusive: a.Interval.End}
	}

	// Stores return a superset of the overlapping activities; Conflicts applies
	// the strict test.
	existing, err := s.store.Activities(ctx, a.UserID, a.Interval.Start, a.Interval.End)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	if conflicts := Conflicts(existing, a); len(conflicts) > 0 {
		return &OverlapError{Candidate: a, Conflicts: conflicts}
	}
	return s.store.SaveActivity(ctx, a)
}
