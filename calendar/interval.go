package calendar

import "time"

// Instant is any point type that can order itself against another of its kind.
// time.Time satisfies it.
type Instant[T any] interface {
	Compare(T) int
}

// Interval is a span of instants from Start to End.
type Interval[T Instant[T]] struct {
	Start T
	End   T
}

// TimeInterval is the common Interval over wall-clock instants.
type TimeInterval = Interval[time.Time]

// NewTimeInterval returns [start, end]; an end before start is rejected.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if start.After(end) {
		return TimeInterval{}, &InvalidRangeError{Start: start, EndInclusive: end}
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share more than an endpoint:
// a.Start < b.End && a.End > b.Start. Touching intervals do not overlap, and a
// zero-length interval only overlaps an interval it sits strictly inside.
func Overlaps[T Instant[T]](a, b Interval[T]) bool {
	return a.Start.Compare(b.End) < 0 && a.End.Compare(b.Start) > 0
}

// Overlaps is the method form of the package-level Overlaps.
func (i Interval[T]) Overlaps(other Interval[T]) bool {
	return Overlaps(i, other)
}

// Duration returns End - Start for wall-clock intervals.
func Duration(i TimeInterval) time.Duration {
	return i.End.Sub(i.Start)
}
