// Package memory provides an in-memory worktime.Store for tests and local runs.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu         sync.RWMutex
	holidays   map[string]calendar.Holiday
	activities map[worktime.UserID][]worktime.Activity
	vacations  map[worktime.UserID][]worktime.Vacation
	allowances map[allowanceKey]worktime.Allowance
}

type allowanceKey struct {
	UserID worktime.UserID
	Year   int
}

var _ worktime.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		holidays:   make(map[string]calendar.Holiday),
		activities: make(map[worktime.UserID][]worktime.Activity),
		vacations:  make(map[worktime.UserID][]worktime.Vacation),
		allowances: make(map[allowanceKey]worktime.Allowance),
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Store) SaveHoliday(_ context.Context, h calendar.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.Date = calendar.Day(h.Date)
	m.holidays[h.ID] = h
	return nil
}

func (m *Store) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return worktime.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Store) Holidays(_ context.Context, from, to time.Time) (calendar.Holidays, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to = calendar.Day(from), calendar.Day(to)
	var result calendar.Holidays
	for _, h := range m.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// SaveActivity inserts or replaces by ID, keeping each user's list ordered by
// start. IDs are global: saving an existing ID under another user moves it.
func (m *Store) SaveActivity(_ context.Context, a worktime.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for user, acts := range m.activities {
		acts = slices.DeleteFunc(acts, func(e worktime.Activity) bool {
			return e.ID == a.ID
		})
		if len(acts) == 0 {
			delete(m.activities, user)
			continue
		}
		m.activities[user] = acts
	}

	acts := m.activities[a.UserID]

	i := sort.Search(len(acts), func(i int) bool {
		return acts[i].Interval.Start.After(a.Interval.Start)
	})
	acts = slices.Insert(acts, i, a)
	m.activities[a.UserID] = acts
	return nil
}

func (m *Store) Activities(_ context.Context, userID worktime.UserID, from, to time.Time) ([]worktime.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []worktime.Activity
	for _, a := range m.activities[userID] {
		if a.Interval.Start.Before(to) && !a.Interval.End.Before(from) {
			result = append(result, a)
		}
	}
	return result, nil
}

// =============================================================================
// VACATIONS
// =============================================================================

func (m *Store) SaveVacation(_ context.Context, v worktime.Vacation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v.Start, v.End = calendar.Day(v.Start), calendar.Day(v.End)
	vs := slices.DeleteFunc(m.vacations[v.UserID], func(e worktime.Vacation) bool {
		return e.ID == v.ID
	})
	m.vacations[v.UserID] = append(vs, v)
	return nil
}

func (m *Store) Vacations(_ context.Context, userID worktime.UserID, from, to time.Time) ([]worktime.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to = calendar.Day(from), calendar.Day(to)
	var result []worktime.Vacation
	for _, v := range m.vacations[userID] {
		if !v.Start.After(to) && !v.End.Before(from) {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (m *Store) SaveAllowance(_ context.Context, a worktime.Allowance) error {
	if a.Earned < 0 {
		return &worktime.NegativeDurationError{Field: "earned", Value: a.Earned}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[allowanceKey{UserID: a.UserID, Year: a.Year}] = a
	return nil
}

func (m *Store) Allowance(_ context.Context, userID worktime.UserID, year int) (worktime.Allowance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.allowances[allowanceKey{UserID: userID, Year: year}]
	if !ok {
		return worktime.Allowance{}, worktime.ErrNotFound
	}
	return a, nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Store) Users(_ context.Context) ([]worktime.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[worktime.UserID]struct{})
	for k := range m.allowances {
		seen[k.UserID] = struct{}{}
	}
	for id, acts := range m.activities {
		if len(acts) > 0 {
			seen[id] = struct{}{}
		}
	}
	users := make([]worktime.UserID, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	slices.Sort(users)
	return users, nil
}

// Reset drops all data.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.holidays)
	clear(m.activities)
	clear(m.vacations)
	clear(m.allowances)
	return nil
}
