package alerts

import "github.com/warp/worktime-engine/worktime"

// Validator reports whether an alert's condition holds for a summary.
// Implementations must be pure: same summary, same answer.
type Validator interface {
	IsAlerted(summary worktime.AnnualWorkSummary) bool
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(worktime.AnnualWorkSummary) bool

func (f ValidatorFunc) IsAlerted(s worktime.AnnualWorkSummary) bool { return f(s) }

// allAlerted is true when every validator fires; vacuously true for none.
func allAlerted(validators []Validator, s worktime.AnnualWorkSummary) bool {
	for _, v := range validators {
		if !v.IsAlerted(s) {
			return false
		}
	}
	return true
}

// =============================================================================
// BUILT-IN VALIDATORS
// =============================================================================

// NotReachedTargetWorkValidator fires when worked time is below target.
type NotReachedTargetWorkValidator struct{}

func (NotReachedTargetWorkValidator) IsAlerted(s worktime.AnnualWorkSummary) bool {
	return s.TargetWorkingTime > s.WorkedTime
}

// PendingVacationsValidator fires when all of its dependencies fire and the
// user still has earned vacation left to consume.
type PendingVacationsValidator struct {
	depends []Validator
}

// NewPendingVacationsValidator copies depends; later changes to the caller's
// slice do not affect the validator.
func NewPendingVacationsValidator(depends ...Validator) *PendingVacationsValidator {
	return &PendingVacationsValidator{depends: append([]Validator(nil), depends...)}
}

func (v *PendingVacationsValidator) IsAlerted(s worktime.AnnualWorkSummary) bool {
	return allAlerted(v.depends, s) && s.EarnedVacations > s.ConsumedVacations
}

// Depends returns a copy of the prerequisite validators.
func (v *PendingVacationsValidator) Depends() []Validator {
	return append([]Validator(nil), v.depends...)
}

// DependentValidator wraps any validator with prerequisites: it fires only
// when every dependency fires and the wrapped condition holds.
type DependentValidator struct {
	Condition Validator
	depends   []Validator
}

func NewDependentValidator(condition Validator, depends ...Validator) *DependentValidator {
	return &DependentValidator{Condition: condition, depends: append([]Validator(nil), depends...)}
}

func (v *DependentValidator) IsAlerted(s worktime.AnnualWorkSummary) bool {
	return allAlerted(v.depends, s) && v.Condition.IsAlerted(s)
}
