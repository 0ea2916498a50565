package calendar

import (
	"iter"
	"time"
)

// =============================================================================
// DATE RANGE - Inclusive span of calendar days
// =============================================================================

const secondsPerDay = 24 * 60 * 60

// DateRange is an immutable span of days including both Start and EndInclusive.
// Ranges are always valid: NewDateRange rejects start > end.
//
// Iteration is lazy and restartable: every call to All or Cursor starts over
// from Start. The zero DateRange is empty.
type DateRange struct {
	start        time.Time
	endInclusive time.Time
	valid        bool
}

// NewDateRange builds the inclusive range [start, endInclusive]. Clock parts are
// dropped before comparison.
func NewDateRange(start, endInclusive time.Time) (DateRange, error) {
	s, e := Day(start), Day(endInclusive)
	if s.After(e) {
		return DateRange{}, &InvalidRangeError{Start: s, EndInclusive: e}
	}
	return DateRange{start: s, endInclusive: e, valid: true}, nil
}

// MustDateRange is like NewDateRange but panics on an inverted range.
func MustDateRange(start, endInclusive time.Time) DateRange {
	r, err := NewDateRange(start, endInclusive)
	if err != nil {
		panic(err)
	}
	return r
}

// YearRange returns Jan 1 through Dec 31 of year.
func YearRange(year int) DateRange {
	return DateRange{start: StartOfYear(year), endInclusive: EndOfYear(year), valid: true}
}

func (r DateRange) Start() time.Time        { return r.start }
func (r DateRange) EndInclusive() time.Time { return r.endInclusive }

// Contains reports whether date's calendar day is within the range.
func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	return r.valid && !d.Before(r.start) && !d.After(r.endInclusive)
}

// Len returns the number of days in the range. Always at least 1 for a valid range.
func (r DateRange) Len() int {
	if !r.valid {
		return 0
	}
	return int((r.endInclusive.Unix()-r.start.Unix())/secondsPerDay) + 1
}

// Intersect returns the overlap of r and other, or false if they share no day.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !r.valid || !other.valid {
		return DateRange{}, false
	}
	s := MaxDate(r.start, other.start)
	e := MinDate(r.endInclusive, other.endInclusive)
	if s.After(e) {
		return DateRange{}, false
	}
	return DateRange{start: s, endInclusive: e, valid: true}, true
}

// All yields each day from Start to EndInclusive, ascending.
func (r DateRange) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		c := r.Cursor()
		for {
			d, ok := c.Next()
			if !ok || !yield(d) {
				return
			}
		}
	}
}

// Days materializes the range.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Len())
	for d := range r.All() {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.start.Format(DateLayout) + ", " + r.endInclusive.Format(DateLayout) + "]"
}

// =============================================================================
// CURSOR
// =============================================================================

// Cursor walks a DateRange one day at a time. A cursor is not safe for
// concurrent use; take one per goroutine.
type Cursor struct {
	next time.Time
	end  time.Time
	done bool
}

// Cursor returns a fresh cursor positioned at Start.
func (r DateRange) Cursor() *Cursor {
	return &Cursor{next: r.start, end: r.endInclusive, done: r.Len() == 0}
}

// Next returns the next day, or false once EndInclusive has been yielded.
func (c *Cursor) Next() (time.Time, bool) {
	if c.done {
		return time.Time{}, false
	}
	d := c.next
	if !d.Before(c.end) {
		c.done = true
	} else {
		c.next = d.AddDate(0, 0, 1)
	}
	return d, true
}
