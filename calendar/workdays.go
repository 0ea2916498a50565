package calendar

import "time"

// CountWorkableDays returns how many days of r are neither weekends nor holidays.
func CountWorkableDays(r DateRange, holidays []time.Time) int {
	n := 0
	for d := range r.All() {
		if IsWorkable(d, holidays) {
			n++
		}
	}
	return n
}

// WorkableDays returns the days of r that are neither weekends nor holidays.
func WorkableDays(r DateRange, holidays []time.Time) []time.Time {
	var days []time.Time
	for d := range r.All() {
		if IsWorkable(d, holidays) {
			days = append(days, d)
		}
	}
	return days
}
