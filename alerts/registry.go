package alerts

import (
	"errors"
	"fmt"

	"github.com/warp/worktime-engine/worktime"
)

var (
	// ErrDuplicateAlert is returned when two rules share an alert name.
	ErrDuplicateAlert = errors.New("duplicate alert name")

	// ErrNilValidator is returned when a rule has no validator.
	ErrNilValidator = errors.New("rule has no validator")
)

// Rule pairs an alert with the validator that decides it.
type Rule struct {
	Alert     Alert
	Validator Validator
}

// Registry is an immutable, ordered set of rules. It is safe for concurrent
// use once built.
type Registry struct {
	rules []Rule
}

// NewRegistry validates and freezes rules. Later rules may reference the
// validators of earlier ones to form dependency chains.
func NewRegistry(rules ...Rule) (*Registry, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.Validator == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilValidator, r.Alert.Name)
		}
		if _, dup := seen[r.Alert.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAlert, r.Alert.Name)
		}
		seen[r.Alert.Name] = struct{}{}
	}
	return &Registry{rules: append([]Rule(nil), rules...)}, nil
}

// DefaultRegistry holds the built-in rules: pending vacations are flagged only
// for users who also did not reach their target work.
func DefaultRegistry() *Registry {
	notReached := NotReachedTargetWorkValidator{}
	r, err := NewRegistry(
		Rule{Alert: NotReachedTargetWork, Validator: notReached},
		Rule{Alert: PendingVacations, Validator: NewPendingVacationsValidator(notReached)},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Evaluate runs every rule against summary and returns the alerts that fire.
func (r *Registry) Evaluate(summary worktime.AnnualWorkSummary) Alerts {
	var triggered Alerts
	for _, rule := range r.rules {
		if rule.Validator.IsAlerted(summary) {
			triggered = append(triggered, rule.Alert)
		}
	}
	return triggered
}

// Alerts lists every registered alert in registry order.
func (r *Registry) Alerts() Alerts {
	all := make(Alerts, len(r.rules))
	for i, rule := range r.rules {
		all[i] = rule.Alert
	}
	return all
}

// Validator returns the validator registered for name.
func (r *Registry) Validator(name string) (Validator, bool) {
	for _, rule := range r.rules {
		if rule.Alert.Name == name {
			return rule.Validator, true
		}
	}
	return nil, false
}
