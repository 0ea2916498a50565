/*
handlers.go - HTTP API handlers for the work-time service

ENDPOINTS:
  Alerts:
    POST   /api/alerts/evaluate                  Evaluate a posted summary
    GET    /api/alerts/scan                      Latest background scan
    POST   /api/alerts/scan                      Run a scan now

  Users:
    GET    /api/users/{id}/summary/{year}        Aggregated summary + alerts
    POST   /api/users/{id}/activities            Log an activity (409 on overlap)
    POST   /api/users/{id}/vacations             Record a vacation
    PUT    /api/users/{id}/allowances/{year}     Set earned vacation

  Calendar:
    GET    /api/calendar/workable-days           ?start=YYYY-MM-DD&end=YYYY-MM-DD
    GET    /api/holidays                         ?from=&to=
    POST   /api/holidays
    DELETE /api/holidays/{id}

  Roles:
    GET    /api/roles/{id}/workable

  Admin:
    POST   /api/admin/reset                      Wipe all data (dev only)

ERROR HANDLING:
  - 400: validation errors, inverted ranges, negative or oversized durations
  - 404: unknown holiday
  - 409: overlapping activity
  - 500: everything else
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/worktime-engine/alerts"
	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/metrics"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    worktime.Store
	Service  *worktime.Service
	Registry *alerts.Registry
	Scanner  *AlertScanner

	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler wires handlers over a store and service. A nil logger discards output.
func NewHandler(store worktime.Store, svc *worktime.Service, registry *alerts.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Service:  svc,
		Registry: registry,
		logger:   logger,
		validate: validator.New(),
	}
}

// =============================================================================
// ALERT HANDLERS
// =============================================================================

// EvaluateAlerts evaluates the alert registry against a posted summary.
// POST /api/alerts/evaluate
func (h *Handler) EvaluateAlerts(w http.ResponseWriter, r *http.Request) {
	var req EvaluateAlertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	summary, err := req.toSummary()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid summary", err)
		return
	}
	if err := summary.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid summary", err)
		return
	}

	triggered := h.Registry.Evaluate(summary)
	metrics.RecordEvaluation("api", triggered.Names())

	writeJSON(w, http.StatusOK, AlertsResponse{Alerts: toAlertDTOs(triggered)})
}

// GetLastScan returns the most recent background scan.
// GET /api/alerts/scan
func (h *Handler) GetLastScan(w http.ResponseWriter, r *http.Request) {
	if h.Scanner == nil {
		writeError(w, http.StatusNotFound, "Alert scanner is not configured", nil)
		return
	}
	result, ok := h.Scanner.LastResult()
	if !ok {
		writeError(w, http.StatusNotFound, "No scan has run yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toScanDTO(result))
}

// TriggerScan runs a scan synchronously and returns its result.
// POST /api/alerts/scan
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.Scanner == nil {
		writeError(w, http.StatusNotFound, "Alert scanner is not configured", nil)
		return
	}
	result := h.Scanner.ScanOnce(r.Context())
	writeJSON(w, http.StatusOK, toScanDTO(result))
}

func toScanDTO(res ScanResult) ScanDTO {
	alerted := make(map[string][]AlertDTO, len(res.Alerted))
	for user, as := range res.Alerted {
		alerted[string(user)] = toAlertDTOs(as)
	}
	return ScanDTO{
		StartedAt: res.StartedAt.Format(time.RFC3339),
		Year:      res.Year,
		Users:     res.Users,
		Failed:    res.Failed,
		Alerted:   alerted,
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// GetSummary aggregates a user's year and evaluates alerts on it.
// GET /api/users/{id}/summary/{year}
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := worktime.UserID(chi.URLParam(r, "id"))
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	summary, err := h.Service.AnnualSummary(r.Context(), userID, year)
	if err != nil {
		h.logger.Error("annual summary failed", zap.String("user_id", string(userID)), zap.Int("year", year), zap.Error(err))
		writeError(w, statusFor(err), "Failed to build summary", err)
		return
	}

	triggered := h.Registry.Evaluate(summary)
	metrics.RecordEvaluation("summary", triggered.Names())

	writeJSON(w, http.StatusOK, toSummaryDTO(summary, triggered))
}

// CreateActivity logs an activity, rejecting overlaps.
// POST /api/users/{id}/activities
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	userID := worktime.UserID(chi.URLParam(r, "id"))

	var req CreateActivityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	activity := worktime.Activity{
		ID:          req.ID,
		UserID:      userID,
		RoleID:      worktime.ProjectRoleID(req.RoleID),
		Interval:    calendar.TimeInterval{Start: req.Start, End: req.End},
		Description: req.Description,
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	err := h.Service.AddActivity(r.Context(), activity)
	var overlap *worktime.OverlapError
	switch {
	case errors.As(err, &overlap):
		metrics.ActivityConflicts.Inc()
		conflicts := make([]ActivityDTO, len(overlap.Conflicts))
		for i, c := range overlap.Conflicts {
			conflicts[i] = toActivityDTO(c, h.Service.Roles())
		}
		writeJSON(w, http.StatusConflict, ConflictResponse{Error: err.Error(), Conflicts: conflicts})
		return
	case err != nil:
		writeError(w, statusFor(err), "Failed to create activity", err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityDTO(activity, h.Service.Roles()))
}

// CreateVacation records a vacation span.
// POST /api/users/{id}/vacations
func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	userID := worktime.UserID(chi.URLParam(r, "id"))

	var req CreateVacationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	start, _ := calendar.ParseDate(req.Start)
	end, _ := calendar.ParseDate(req.End)
	vacation := worktime.Vacation{ID: req.ID, UserID: userID, Start: start, End: end}
	if _, err := vacation.Range(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vacation range", err)
		return
	}
	if vacation.ID == "" {
		vacation.ID = uuid.NewString()
	}

	if err := h.Store.SaveVacation(r.Context(), vacation); err != nil {
		writeError(w, statusFor(err), "Failed to save vacation", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   "created",
		"vacation": vacation.ID,
	})
}

// SetAllowance sets the vacation a user earned for a year.
// PUT /api/users/{id}/allowances/{year}
func (h *Handler) SetAllowance(w http.ResponseWriter, r *http.Request) {
	userID := worktime.UserID(chi.URLParam(r, "id"))
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	var req SetAllowanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	earned, err := calendar.DecimalHoursToDuration(req.EarnedHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid earned_hours", err)
		return
	}

	allowance := worktime.Allowance{UserID: userID, Year: year, Earned: earned}
	if err := h.Store.SaveAllowance(r.Context(), allowance); err != nil {
		writeError(w, statusFor(err), "Failed to save allowance", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      string(userID),
		"year":         year,
		"earned_hours": hours(allowance.Earned),
	})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetWorkableDays counts workable days in an inclusive date range.
// GET /api/calendar/workable-days?start=2025-01-01&end=2025-01-31
func (h *Handler) GetWorkableDays(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateParams(w, r, "start", "end")
	if !ok {
		return
	}

	days, err := h.Service.WorkableDays(r.Context(), start, end)
	if err != nil {
		writeError(w, statusFor(err), "Failed to count workable days", err)
		return
	}

	dto := WorkableDaysDTO{
		Start: start.Format(calendar.DateLayout),
		End:   end.Format(calendar.DateLayout),
		Count: len(days),
		Days:  make([]string, len(days)),
	}
	for i, d := range days {
		dto.Days[i] = d.Format(calendar.DateLayout)
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListHolidays returns holidays in [from, to].
// GET /api/holidays?from=2025-01-01&to=2025-12-31
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDateParams(w, r, "from", "to")
	if !ok {
		return
	}
	if _, err := calendar.NewDateRange(from, to); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	holidays, err := h.Store.Holidays(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			ID:   hol.ID,
			Date: hol.Date.Format(calendar.DateLayout),
			Name: hol.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	date, _ := calendar.ParseDate(req.Date)
	holiday := calendar.Holiday{
		ID:   uuid.NewString(),
		Date: date,
		Name: req.Name,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": holiday.ID,
	})
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// ROLE HANDLERS
// =============================================================================

// GetRoleWorkable reports whether a project role counts toward worked time.
// GET /api/roles/{id}/workable
func (h *Handler) GetRoleWorkable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, RoleDTO{
		ID:       id,
		Workable: h.Service.Roles().IsWorkable(worktime.ProjectRoleID(id)),
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// resetter is implemented by stores that can wipe their data.
type resetter interface {
	Reset(ctx context.Context) error
}

// ResetData wipes every table. For development only.
// POST /api/admin/reset
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.Store.(resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return
	}
	if err := rs.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset data", err)
		return
	}
	h.logger.Warn("all data reset")
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func parseDateParams(w http.ResponseWriter, r *http.Request, fromKey, toKey string) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	from, err := calendar.ParseDate(q.Get(fromKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+fromKey+" date (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	to, err := calendar.ParseDate(q.Get(toKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+toKey+" date (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if year < 1 || year > 9999 {
		return 0, errors.New("year out of range")
	}
	return year, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, calendar.ErrHoursOutOfRange),
		errors.Is(err, worktime.ErrNegativeDuration):
		return http.StatusBadRequest
	case errors.Is(err, worktime.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, worktime.ErrActivityOverlap):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
