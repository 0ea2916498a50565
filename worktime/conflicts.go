package worktime

import "github.com/warp/worktime-engine/calendar"

// Conflicts returns the activities in existing that belong to the candidate's
// user and strictly overlap it. An activity with the candidate's own ID is
// skipped so updates do not collide with themselves.
func Conflicts(existing []Activity, candidate Activity) []Activity {
	var out []Activity
	for _, a := range existing {
		if a.UserID != candidate.UserID {
			continue
		}
		if candidate.ID != "" && a.ID == candidate.ID {
			continue
		}
		if calendar.Overlaps(a.Interval, candidate.Interval) {
			out = append(out, a)
		}
	}
	return out
}
