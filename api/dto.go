/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

UNITS:
  Durations cross the wire as decimal hours with two fractional digits
  ("7.50"), rounded half-to-even. Days are YYYY-MM-DD; instants RFC3339.

VALIDATION:
  Request structs carry go-playground/validator tags; handlers call
  h.validate.Struct before touching the domain.
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/worktime-engine/alerts"
	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// ALERTS
// =============================================================================

// EvaluateAlertsRequest carries an already-aggregated summary in decimal hours.
type EvaluateAlertsRequest struct {
	TargetWorkingHours    decimal.Decimal `json:"target_working_hours"`
	WorkedHours           decimal.Decimal `json:"worked_hours"`
	EarnedVacationHours   decimal.Decimal `json:"earned_vacation_hours"`
	ConsumedVacationHours decimal.Decimal `json:"consumed_vacation_hours"`
}

func (r EvaluateAlertsRequest) toSummary() (worktime.AnnualWorkSummary, error) {
	var s worktime.AnnualWorkSummary
	fields := []struct {
		name  string
		hours decimal.Decimal
		dst   *time.Duration
	}{
		{"target_working_hours", r.TargetWorkingHours, &s.TargetWorkingTime},
		{"worked_hours", r.WorkedHours, &s.WorkedTime},
		{"earned_vacation_hours", r.EarnedVacationHours, &s.EarnedVacations},
		{"consumed_vacation_hours", r.ConsumedVacationHours, &s.ConsumedVacations},
	}
	for _, f := range fields {
		d, err := calendar.DecimalHoursToDuration(f.hours)
		if err != nil {
			return worktime.AnnualWorkSummary{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return s, nil
}

// AlertDTO represents a triggered alert.
type AlertDTO struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func toAlertDTOs(as alerts.Alerts) []AlertDTO {
	dtos := make([]AlertDTO, len(as))
	for i, a := range as {
		dtos[i] = AlertDTO{Name: a.Name, Label: a.Label}
	}
	return dtos
}

// AlertsResponse wraps evaluated alerts.
type AlertsResponse struct {
	Alerts []AlertDTO `json:"alerts"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryDTO is an aggregated annual summary plus the alerts it triggers.
type SummaryDTO struct {
	UserID                string     `json:"user_id"`
	Year                  int        `json:"year"`
	TargetWorkingHours    string     `json:"target_working_hours"`
	WorkedHours           string     `json:"worked_hours"`
	MissingWorkHours      string     `json:"missing_work_hours"`
	EarnedVacationHours   string     `json:"earned_vacation_hours"`
	ConsumedVacationHours string     `json:"consumed_vacation_hours"`
	PendingVacationHours  string     `json:"pending_vacation_hours"`
	Alerts                []AlertDTO `json:"alerts"`
}

func toSummaryDTO(s worktime.AnnualWorkSummary, triggered alerts.Alerts) SummaryDTO {
	return SummaryDTO{
		UserID:                string(s.UserID),
		Year:                  s.Year,
		TargetWorkingHours:    hours(s.TargetWorkingTime),
		WorkedHours:           hours(s.WorkedTime),
		MissingWorkHours:      hours(s.MissingWork()),
		EarnedVacationHours:   hours(s.EarnedVacations),
		ConsumedVacationHours: hours(s.ConsumedVacations),
		PendingVacationHours:  hours(s.PendingVacations()),
		Alerts:                toAlertDTOs(triggered),
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

// WorkableDaysDTO is the result of a workable-day count.
type WorkableDaysDTO struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Count int      `json:"count"`
	Days  []string `json:"days"`
}

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateHolidayRequest is the request to create a holiday.
type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=200"`
}

// =============================================================================
// ACTIVITIES & VACATIONS
// =============================================================================

// CreateActivityRequest logs a block of work.
type CreateActivityRequest struct {
	ID          string    `json:"id,omitempty" validate:"omitempty,max=64"`
	RoleID      string    `json:"role_id" validate:"required,max=64"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required,gtefield=Start"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
}

// ActivityDTO represents an activity in API responses.
type ActivityDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	RoleID      string `json:"role_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Hours       string `json:"hours"`
	Workable    bool   `json:"workable"`
	Description string `json:"description,omitempty"`
}

func toActivityDTO(a worktime.Activity, roles worktime.RoleFilter) ActivityDTO {
	return ActivityDTO{
		ID:          a.ID,
		UserID:      string(a.UserID),
		RoleID:      string(a.RoleID),
		Start:       a.Interval.Start.Format(time.RFC3339),
		End:         a.Interval.End.Format(time.RFC3339),
		Hours:       hours(a.Duration()),
		Workable:    roles.IsWorkable(a.RoleID),
		Description: a.Description,
	}
}

// ConflictResponse is returned with 409 when an activity overlaps others.
type ConflictResponse struct {
	Error     string        `json:"error"`
	Conflicts []ActivityDTO `json:"conflicts"`
}

// CreateVacationRequest records days off, both ends included.
type CreateVacationRequest struct {
	ID    string `json:"id,omitempty" validate:"omitempty,max=64"`
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

// SetAllowanceRequest sets the vacation earned for a year.
type SetAllowanceRequest struct {
	EarnedHours decimal.Decimal `json:"earned_hours"`
}

// RoleDTO reports whether a project role counts as work.
type RoleDTO struct {
	ID       string `json:"id"`
	Workable bool   `json:"workable"`
}

// ScanDTO summarizes the latest alert scan.
type ScanDTO struct {
	StartedAt string                `json:"started_at"`
	Year      int                   `json:"year"`
	Users     int                   `json:"users"`
	Failed    int                   `json:"failed"`
	Alerted   map[string][]AlertDTO `json:"alerted"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func hours(d time.Duration) string {
	return calendar.DurationToDecimalHours(d).StringFixed(2)
}
