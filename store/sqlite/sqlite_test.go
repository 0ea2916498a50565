package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/store/sqlite"
	"github.com/warp/worktime-engine/worktime"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Holidays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHoliday(ctx, calendar.Holiday{ID: "xmas", Date: calendar.NewDate(2023, time.December, 25), Name: "Christmas"}))
	require.NoError(t, store.SaveHoliday(ctx, calendar.Holiday{ID: "epi", Date: calendar.NewDate(2023, time.January, 6), Name: "Epiphany"}))

	hs, err := store.Holidays(ctx, calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "epi", hs[0].ID, "ordered by date")
	assert.Equal(t, calendar.NewDate(2023, time.December, 25), hs[1].Date)

	// Served from cache, then invalidated by a write.
	hs, err = store.Holidays(ctx, calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	assert.Len(t, hs, 2)

	require.NoError(t, store.DeleteHoliday(ctx, "epi"))
	hs, err = store.Holidays(ctx, calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	assert.Len(t, hs, 1)

	assert.ErrorIs(t, store.DeleteHoliday(ctx, "epi"), worktime.ErrNotFound)
}

func TestStore_Activities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2023, time.March, 1, 9, 0, 0, 0, time.UTC)
	a := worktime.Activity{
		ID:          "a1",
		UserID:      "ana",
		RoleID:      "dev",
		Interval:    calendar.TimeInterval{Start: start, End: start.Add(90 * time.Minute)},
		Description: "pairing",
	}
	require.NoError(t, store.SaveActivity(ctx, a))
	require.NoError(t, store.SaveActivity(ctx, worktime.Activity{
		ID:       "b1",
		UserID:   "bob",
		RoleID:   "dev",
		Interval: calendar.TimeInterval{Start: start, End: start.Add(time.Hour)},
	}))

	got, err := store.Activities(ctx, "ana", calendar.NewDate(2023, time.March, 1), calendar.NewDate(2023, time.March, 2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Interval.Start.Equal(a.Interval.Start))
	assert.True(t, got[0].Interval.End.Equal(a.Interval.End))
	assert.Equal(t, "pairing", got[0].Description)
	assert.Equal(t, worktime.ProjectRoleID("dev"), got[0].RoleID)

	got, err = store.Activities(ctx, "ana", calendar.NewDate(2023, time.March, 2), calendar.NewDate(2023, time.March, 3))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ActivityMovesBetweenUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := calendar.NewDate(2023, time.March, 1)
	start := day.Add(9 * time.Hour)

	require.NoError(t, store.SaveActivity(ctx, worktime.Activity{ID: "shared", UserID: "ana", RoleID: "dev", Interval: calendar.TimeInterval{Start: start, End: start.Add(time.Hour)}}))
	require.NoError(t, store.SaveActivity(ctx, worktime.Activity{ID: "shared", UserID: "bob", RoleID: "dev", Interval: calendar.TimeInterval{Start: start, End: start.Add(2 * time.Hour)}}))

	got, err := store.Activities(ctx, "ana", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.Activities(ctx, "bob", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, worktime.UserID("bob"), got[0].UserID)
	assert.Equal(t, 2*time.Hour, got[0].Duration())

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []worktime.UserID{"bob"}, users)
}

func TestStore_VacationsAndAllowances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVacation(ctx, worktime.Vacation{
		ID: "v1", UserID: "ana",
		Start: calendar.NewDate(2023, time.December, 27), End: calendar.NewDate(2024, time.January, 3),
	}))

	vs, err := store.Vacations(ctx, "ana", calendar.StartOfYear(2024), calendar.EndOfYear(2024))
	require.NoError(t, err)
	require.Len(t, vs, 1, "vacation straddling the year is returned for both years")
	assert.Equal(t, calendar.NewDate(2023, time.December, 27), vs[0].Start)

	_, err = store.Allowance(ctx, "ana", 2024)
	assert.ErrorIs(t, err, worktime.ErrNotFound)

	require.NoError(t, store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2024, Earned: 176 * time.Hour}))
	require.NoError(t, store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2024, Earned: 184 * time.Hour}))
	al, err := store.Allowance(ctx, "ana", 2024)
	require.NoError(t, err)
	assert.Equal(t, 184*time.Hour, al.Earned)

	err = store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2025, Earned: -time.Hour})
	assert.ErrorIs(t, err, worktime.ErrNegativeDuration)

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []worktime.UserID{"ana"}, users)
}

func TestStore_AnnualSummaryThroughService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := worktime.NewService(store, worktime.NewRoleFilter("absence"))

	start := time.Date(2023, time.May, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, svc.AddActivity(ctx, worktime.Activity{
		ID: "a1", UserID: "ana", RoleID: "dev",
		Interval: calendar.TimeInterval{Start: start, End: start.Add(6 * time.Hour)},
	}))
	err := svc.AddActivity(ctx, worktime.Activity{
		ID: "a2", UserID: "ana", RoleID: "absence",
		Interval: calendar.TimeInterval{Start: start.Add(5 * time.Hour), End: start.Add(7 * time.Hour)},
	})
	require.ErrorIs(t, err, worktime.ErrActivityOverlap)

	s, err := svc.AnnualSummary(ctx, "ana", 2023)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, s.WorkedTime)
	assert.Equal(t, 260*worktime.DefaultWorkday, s.TargetWorkingTime)

	require.NoError(t, store.Reset(ctx))
	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
