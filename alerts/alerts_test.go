package alerts_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/alerts"
	"github.com/warp/worktime-engine/worktime"
)

func summary(target, worked, earned, consumed time.Duration) worktime.AnnualWorkSummary {
	return worktime.AnnualWorkSummary{
		TargetWorkingTime: target,
		WorkedTime:        worked,
		EarnedVacations:   earned,
		ConsumedVacations: consumed,
	}
}

// randomPair returns (hi, lo) with hi > lo >= 0, or equal values when equal is set.
func randomPair(r *rand.Rand, equal bool) (time.Duration, time.Duration) {
	lo := time.Duration(r.Int63n(int64(2000 * time.Hour)))
	if equal {
		return lo, lo
	}
	return lo + time.Duration(1+r.Int63n(int64(500*time.Hour))), lo
}

// =============================================================================
// BUILT-IN RULES
// =============================================================================

func TestDefaultRegistry_TargetReachedAndVacationsConsumed(t *testing.T) {
	reg := alerts.DefaultRegistry()
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		worked, target := randomPair(r, i%3 == 0)
		consumed, earned := randomPair(r, i%4 == 0)
		assert.Empty(t, reg.Evaluate(summary(target, worked, earned, consumed)))
	}
}

func TestDefaultRegistry_BothAlerts(t *testing.T) {
	reg := alerts.DefaultRegistry()
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		target, worked := randomPair(r, false)
		earned, consumed := randomPair(r, false)
		got := reg.Evaluate(summary(target, worked, earned, consumed))

		assert.True(t, got.Contains(alerts.NotReachedTargetWork))
		assert.True(t, got.Contains(alerts.PendingVacations))
		assert.Len(t, got, 2)
	}
}

func TestDefaultRegistry_OnlyNotReachedTargetWork(t *testing.T) {
	reg := alerts.DefaultRegistry()
	r := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		target, worked := randomPair(r, false)
		consumed, earned := randomPair(r, i%2 == 0)
		got := reg.Evaluate(summary(target, worked, earned, consumed))

		assert.Equal(t, alerts.Alerts{alerts.NotReachedTargetWork}, got)
	}
}

func TestDefaultRegistry_PendingVacationsNeedsMissedTarget(t *testing.T) {
	reg := alerts.DefaultRegistry()
	r := rand.New(rand.NewSource(4))

	for i := 0; i < 200; i++ {
		worked, target := randomPair(r, i%2 == 0)
		earned, consumed := randomPair(r, false)
		got := reg.Evaluate(summary(target, worked, earned, consumed))

		assert.False(t, got.Contains(alerts.NotReachedTargetWork))
		assert.False(t, got.Contains(alerts.PendingVacations), "dependency failed, own condition alone is not enough")
	}
}

func TestDefaultRegistry_ZeroSummary(t *testing.T) {
	assert.Empty(t, alerts.DefaultRegistry().Evaluate(worktime.AnnualWorkSummary{}))
}

func TestDefaultRegistry_Alerts(t *testing.T) {
	reg := alerts.DefaultRegistry()
	assert.Equal(t, []string{"not_reached_target_work", "pending_vacations"}, reg.Alerts().Names())
	assert.Equal(t, "Not reached target work", alerts.NotReachedTargetWork.Label)
	assert.Equal(t, "Pending vacations", alerts.PendingVacations.Label)

	v, ok := reg.Validator("pending_vacations")
	require.True(t, ok)
	pv, ok := v.(*alerts.PendingVacationsValidator)
	require.True(t, ok)
	assert.Len(t, pv.Depends(), 1)

	_, ok = reg.Validator("missing")
	assert.False(t, ok)
}

// =============================================================================
// DEPENDENCY CHAINS
// =============================================================================

func TestPendingVacations_NoDependenciesIsVacuouslySatisfied(t *testing.T) {
	v := alerts.NewPendingVacationsValidator()

	assert.True(t, v.IsAlerted(summary(0, 10*time.Hour, 16*time.Hour, 8*time.Hour)))
	assert.False(t, v.IsAlerted(summary(0, 10*time.Hour, 8*time.Hour, 8*time.Hour)))
}

func TestPendingVacations_AllDependenciesMustFire(t *testing.T) {
	always := alerts.ValidatorFunc(func(worktime.AnnualWorkSummary) bool { return true })
	never := alerts.ValidatorFunc(func(worktime.AnnualWorkSummary) bool { return false })
	s := summary(0, 0, 16*time.Hour, 0)

	assert.True(t, alerts.NewPendingVacationsValidator(always, always).IsAlerted(s))
	assert.False(t, alerts.NewPendingVacationsValidator(always, never).IsAlerted(s))
}

func TestDependencies_ReevaluatedPerCall(t *testing.T) {
	calls := 0
	counting := alerts.ValidatorFunc(func(worktime.AnnualWorkSummary) bool {
		calls++
		return true
	})
	reg, err := alerts.NewRegistry(
		alerts.Rule{Alert: alerts.Alert{Name: "base"}, Validator: counting},
		alerts.Rule{Alert: alerts.Alert{Name: "first"}, Validator: alerts.NewDependentValidator(counting, counting)},
	)
	require.NoError(t, err)

	got := reg.Evaluate(worktime.AnnualWorkSummary{})
	assert.Equal(t, []string{"base", "first"}, got.Names())
	assert.Equal(t, 3, calls, "shared dependencies are not memoized")
}

func TestDependentValidator_Chain(t *testing.T) {
	notReached := alerts.NotReachedTargetWorkValidator{}
	pending := alerts.NewPendingVacationsValidator(notReached)
	bigGap := alerts.ValidatorFunc(func(s worktime.AnnualWorkSummary) bool {
		return s.MissingWork() > 100*time.Hour
	})
	escalate := alerts.NewDependentValidator(bigGap, pending)

	assert.True(t, escalate.IsAlerted(summary(500*time.Hour, 100*time.Hour, 40*time.Hour, 0)))
	assert.False(t, escalate.IsAlerted(summary(500*time.Hour, 100*time.Hour, 0, 0)), "pending vacations missing")
	assert.False(t, escalate.IsAlerted(summary(150*time.Hour, 100*time.Hour, 40*time.Hour, 0)), "gap too small")
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	_, err := alerts.NewRegistry(
		alerts.Rule{Alert: alerts.NotReachedTargetWork, Validator: alerts.NotReachedTargetWorkValidator{}},
		alerts.Rule{Alert: alerts.Alert{Name: "not_reached_target_work", Label: "again"}, Validator: alerts.NotReachedTargetWorkValidator{}},
	)
	assert.ErrorIs(t, err, alerts.ErrDuplicateAlert)
}

func TestNewRegistry_RejectsNilValidator(t *testing.T) {
	_, err := alerts.NewRegistry(alerts.Rule{Alert: alerts.PendingVacations})
	assert.ErrorIs(t, err, alerts.ErrNilValidator)
}

func TestNewRegistry_CopiesRules(t *testing.T) {
	rules := []alerts.Rule{{Alert: alerts.NotReachedTargetWork, Validator: alerts.NotReachedTargetWorkValidator{}}}
	reg, err := alerts.NewRegistry(rules...)
	require.NoError(t, err)

	rules[0] = alerts.Rule{Alert: alerts.Alert{Name: "swapped"}, Validator: alerts.NotReachedTargetWorkValidator{}}
	assert.Equal(t, []string{"not_reached_target_work"}, reg.Alerts().Names())
}

func TestRegistry_ConcurrentEvaluate(t *testing.T) {
	reg := alerts.DefaultRegistry()
	s := summary(100*time.Hour, 50*time.Hour, 40*time.Hour, 8*time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Len(t, reg.Evaluate(s), 2)
			}
		}()
	}
	wg.Wait()
}
