/*
Package alerts decides which operational alerts an annual work summary
triggers.

KEY CONCEPTS:
  - Alert: a named condition ("Not reached target work", ...)
  - Validator: pure predicate over a worktime.AnnualWorkSummary
  - Dependencies: a validator may require other validators to fire first
  - Registry: the fixed, immutable set of (alert, validator) rules

Validators never fail. A summary with no data simply triggers nothing.

USAGE:
  registry := alerts.DefaultRegistry()
  triggered := registry.Evaluate(summary)
  if triggered.Contains(alerts.PendingVacations) { ... }
*/
package alerts

// Alert is a named condition about an annual work summary.
// Two alerts are the same alert when their names match.
type Alert struct {
	Name  string
	Label string
}

var (
	NotReachedTargetWork = Alert{Name: "not_reached_target_work", Label: "Not reached target work"}
	PendingVacations     = Alert{Name: "pending_vacations", Label: "Pending vacations"}
)

// Alerts is a set of triggered alerts, kept in registry order.
type Alerts []Alert

// Contains reports whether an alert with a's name is present.
func (as Alerts) Contains(a Alert) bool {
	for _, x := range as {
		if x.Name == a.Name {
			return true
		}
	}
	return false
}

func (as Alerts) Names() []string {
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = a.Name
	}
	return names
}
