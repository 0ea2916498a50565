/*
Package sqlite provides a SQLite-backed implementation of worktime.Store.

KEY TABLES:
  holidays:    one row per non-working day
  activities:  logged work, instants stored as RFC3339Nano UTC
  vacations:   inclusive day spans
  allowances:  earned vacation per user and year (nanoseconds)

HOLIDAY CACHE:
  Holiday lookups are read on every summary and workable-day request.
  Results are cached per [from, to] window in an LRU and the whole
  cache is purged on any holiday write.

WAL MODE:
  Opened with WAL so readers never block behind the single writer.

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      return err
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/worktime"
)

const holidayCacheSize = 256

// Store implements worktime.Store using SQLite.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	holidays *lru.Cache[string, calendar.Holidays]
}

var _ worktime.Store = (*Store)(nil)

// New opens (and migrates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	cache, err := lru.New[string, calendar.Holidays](holidayCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create holiday cache: %w", err)
	}

	store := &Store{db: db, holidays: cache}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);
	-- Range lookups per user (overlap checks, yearly aggregation)
	CREATE INDEX IF NOT EXISTS idx_activities_user_start
		ON activities(user_id, start_at);

	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vacations_user
		ON vacations(user_id, start_date);

	CREATE TABLE IF NOT EXISTS allowances (
		user_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		earned_ns INTEGER NOT NULL CHECK (earned_ns >= 0),
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, year)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date, name = excluded.name
	`, h.ID, formatDate(h.Date), h.Name, now())
	if err != nil {
		return fmt.Errorf("save holiday: %w", err)
	}
	s.holidays.Purge()
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return worktime.ErrNotFound
	}
	s.holidays.Purge()
	return nil
}

func (s *Store) Holidays(ctx context.Context, from, to time.Time) (calendar.Holidays, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := formatDate(from) + "/" + formatDate(to)
	if cached, ok := s.holidays.Get(key); ok {
		return append(calendar.Holidays(nil), cached...), nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name FROM holidays
		WHERE date BETWEEN ? AND ?
		ORDER BY date ASC, id ASC
	`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	var result calendar.Holidays
	for rows.Next() {
		var h calendar.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.holidays.Add(key, result)
	return append(calendar.Holidays(nil), result...), nil
}

// =============================================================================
// ACTIVITIES
// =============================================================================

func (s *Store) SaveActivity(ctx context.Context, a worktime.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, role_id, start_at, end_at, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			role_id = excluded.role_id,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			description = excluded.description
	`, a.ID, string(a.UserID), string(a.RoleID),
		formatInstant(a.Interval.Start), formatInstant(a.Interval.End),
		nullString(a.Description), now())
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

func (s *Store) Activities(ctx context.Context, userID worktime.UserID, from, to time.Time) ([]worktime.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// RFC3339Nano in UTC with fixed-width fractions sorts lexically.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, role_id, start_at, end_at, description
		FROM activities
		WHERE user_id = ? AND start_at < ? AND end_at >= ?
		ORDER BY start_at ASC
	`, string(userID), formatInstant(to), formatInstant(from))
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var result []worktime.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanActivity(rows *sql.Rows) (worktime.Activity, error) {
	var a worktime.Activity
	var userID, roleID, start, end string
	var desc sql.NullString
	if err := rows.Scan(&a.ID, &userID, &roleID, &start, &end, &desc); err != nil {
		return a, err
	}
	a.UserID = worktime.UserID(userID)
	a.RoleID = worktime.ProjectRoleID(roleID)
	a.Description = desc.String

	var err error
	if a.Interval.Start, err = time.Parse(instantLayout, start); err != nil {
		return a, fmt.Errorf("activity %s start: %w", a.ID, err)
	}
	if a.Interval.End, err = time.Parse(instantLayout, end); err != nil {
		return a, fmt.Errorf("activity %s end: %w", a.ID, err)
	}
	return a, nil
}

// =============================================================================
// VACATIONS & ALLOWANCES
// =============================================================================

func (s *Store) SaveVacation(ctx context.Context, v worktime.Vacation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacations (id, user_id, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET start_date = excluded.start_date, end_date = excluded.end_date
	`, v.ID, string(v.UserID), formatDate(v.Start), formatDate(v.End), now())
	if err != nil {
		return fmt.Errorf("save vacation: %w", err)
	}
	return nil
}

func (s *Store) Vacations(ctx context.Context, userID worktime.UserID, from, to time.Time) ([]worktime.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_date, end_date FROM vacations
		WHERE user_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC
	`, string(userID), formatDate(to), formatDate(from))
	if err != nil {
		return nil, fmt.Errorf("query vacations: %w", err)
	}
	defer rows.Close()

	var result []worktime.Vacation
	for rows.Next() {
		var v worktime.Vacation
		var uid, start, end string
		if err := rows.Scan(&v.ID, &uid, &start, &end); err != nil {
			return nil, err
		}
		v.UserID = worktime.UserID(uid)
		if v.Start, err = calendar.ParseDate(start); err != nil {
			return nil, fmt.Errorf("vacation %s: %w", v.ID, err)
		}
		if v.End, err = calendar.ParseDate(end); err != nil {
			return nil, fmt.Errorf("vacation %s: %w", v.ID, err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (s *Store) SaveAllowance(ctx context.Context, a worktime.Allowance) error {
	if a.Earned < 0 {
		return &worktime.NegativeDurationError{Field: "earned", Value: a.Earned}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowances (user_id, year, earned_ns, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, year) DO UPDATE SET
			earned_ns = excluded.earned_ns,
			updated_at = excluded.updated_at
	`, string(a.UserID), a.Year, int64(a.Earned), now())
	if err != nil {
		return fmt.Errorf("save allowance: %w", err)
	}
	return nil
}

func (s *Store) Allowance(ctx context.Context, userID worktime.UserID, year int) (worktime.Allowance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earned int64
	err := s.db.QueryRowContext(ctx,
		"SELECT earned_ns FROM allowances WHERE user_id = ? AND year = ?",
		string(userID), year).Scan(&earned)
	if errors.Is(err, sql.ErrNoRows) {
		return worktime.Allowance{}, worktime.ErrNotFound
	}
	if err != nil {
		return worktime.Allowance{}, fmt.Errorf("query allowance: %w", err)
	}
	return worktime.Allowance{UserID: userID, Year: year, Earned: time.Duration(earned)}, nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) Users(ctx context.Context) ([]worktime.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM allowances
		UNION
		SELECT user_id FROM activities
		ORDER BY user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []worktime.UserID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, worktime.UserID(id))
	}
	return users, rows.Err()
}

// Reset wipes every table.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"holidays", "activities", "vacations", "allowances"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	s.holidays.Purge()
	return nil
}

// Helper functions

// instantLayout is RFC3339 with a fixed nine-digit fraction so stored values
// compare correctly as text.
const instantLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatInstant(t time.Time) string { return t.UTC().Format(instantLayout) }
func formatDate(t time.Time) string    { return calendar.Day(t).Format(calendar.DateLayout) }
func now() string                      { return time.Now().UTC().Format(time.RFC3339) }

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
