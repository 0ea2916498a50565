package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/store/memory"
	"github.com/warp/worktime-engine/worktime"
)

func TestStore_Holidays(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveHoliday(ctx, calendar.Holiday{ID: "xmas", Date: time.Date(2023, time.December, 25, 15, 0, 0, 0, time.UTC), Name: "Christmas"}))
	require.NoError(t, store.SaveHoliday(ctx, calendar.Holiday{ID: "epi", Date: calendar.NewDate(2023, time.January, 6), Name: "Epiphany"}))
	require.NoError(t, store.SaveHoliday(ctx, calendar.Holiday{ID: "ny24", Date: calendar.NewDate(2024, time.January, 1), Name: "New Year"}))

	hs, err := store.Holidays(ctx, calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "epi", hs[0].ID, "ordered by date")
	assert.Equal(t, calendar.NewDate(2023, time.December, 25), hs[1].Date, "truncated to the day")

	require.NoError(t, store.DeleteHoliday(ctx, "epi"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "epi"), worktime.ErrNotFound)

	hs, err = store.Holidays(ctx, calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}

func TestStore_Activities(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	day := calendar.NewDate(2023, time.March, 1)

	save := func(id string, from, to time.Duration) {
		t.Helper()
		require.NoError(t, store.SaveActivity(ctx, worktime.Activity{
			ID:       id,
			UserID:   "ana",
			RoleID:   "dev",
			Interval: calendar.TimeInterval{Start: day.Add(from), End: day.Add(to)},
		}))
	}
	save("late", 14*time.Hour, 16*time.Hour)
	save("early", 9*time.Hour, 10*time.Hour)
	save("next-day", 33*time.Hour, 34*time.Hour)

	got, err := store.Activities(ctx, "ana", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID, "ordered by start")
	assert.Equal(t, "late", got[1].ID)

	// Saving an existing id replaces it.
	save("late", 17*time.Hour, 18*time.Hour)
	got, err = store.Activities(ctx, "ana", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day.Add(17*time.Hour), got[1].Interval.Start)

	got, err = store.Activities(ctx, "bob", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ActivityMovesBetweenUsers(t *testing.T) {
	store := memory.New()
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
	assert.Equal(t, 2*time.Hour, got[0].Duration())

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []worktime.UserID{"bob"}, users)
}

func TestStore_VacationsAndAllowances(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveVacation(ctx, worktime.Vacation{ID: "v2", UserID: "ana", Start: calendar.NewDate(2023, time.August, 1), End: calendar.NewDate(2023, time.August, 4)}))
	require.NoError(t, store.SaveVacation(ctx, worktime.Vacation{ID: "v1", UserID: "ana", Start: calendar.NewDate(2022, time.December, 28), End: calendar.NewDate(2023, time.January, 3)}))
	require.NoError(t, store.SaveVacation(ctx, worktime.Vacation{ID: "v0", UserID: "ana", Start: calendar.NewDate(2022, time.June, 1), End: calendar.NewDate(2022, time.June, 2)}))

	vs, err := store.Vacations(ctx, "ana", calendar.StartOfYear(2023), calendar.EndOfYear(2023))
	require.NoError(t, err)
	require.Len(t, vs, 2, "spans crossing the year start are included")
	assert.Equal(t, "v1", vs[0].ID)
	assert.Equal(t, "v2", vs[1].ID)

	_, err = store.Allowance(ctx, "ana", 2023)
	assert.ErrorIs(t, err, worktime.ErrNotFound)

	require.NoError(t, store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2023, Earned: 176 * time.Hour}))
	a, err := store.Allowance(ctx, "ana", 2023)
	require.NoError(t, err)
	assert.Equal(t, 176*time.Hour, a.Earned)

	err = store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2024, Earned: -time.Hour})
	assert.ErrorIs(t, err, worktime.ErrNegativeDuration)
}

func TestStore_Users(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	start := time.Date(2023, time.March, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveActivity(ctx, worktime.Activity{ID: "a", UserID: "zoe", Interval: calendar.TimeInterval{Start: start, End: start.Add(time.Hour)}}))
	require.NoError(t, store.SaveAllowance(ctx, worktime.Allowance{UserID: "ana", Year: 2023}))
	require.NoError(t, store.SaveAllowance(ctx, worktime.Allowance{UserID: "zoe", Year: 2023}))

	users, err = store.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []worktime.UserID{"ana", "zoe"}, users)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			from := start.Add(time.Duration(i) * time.Hour)
			store.SaveActivity(ctx, worktime.Activity{
				ID:       from.Format(time.RFC3339),
				UserID:   "ana",
				Interval: calendar.TimeInterval{Start: from, End: from.Add(30 * time.Minute)},
			})
		}()
		go func() {
			defer wg.Done()
			store.Activities(ctx, "ana", start, start.AddDate(0, 0, 1))
		}()
	}
	wg.Wait()

	got, err := store.Activities(ctx, "ana", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
