package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nanosPerHour = decimal.NewFromInt(int64(time.Hour))
	maxNanos     = decimal.NewFromInt(math.MaxInt64)
)

// DurationToDecimalHours converts d to hours with two fractional digits.
// Ties round to the even digit (banker's rounding).
func DurationToDecimalHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerHour).RoundBank(2)
}

// DecimalHoursToDuration is the inverse of DurationToDecimalHours, truncated to
// the nanosecond. Negative values and values beyond time.Duration's range
// return ErrHoursOutOfRange.
func DecimalHoursToDuration(h decimal.Decimal) (time.Duration, error) {
	ns := h.Mul(nanosPerHour)
	if ns.IsNegative() || ns.GreaterThan(maxNanos) {
		return 0, fmt.Errorf("%w: %s", ErrHoursOutOfRange, h.String())
	}
	return time.Duration(ns.IntPart()), nil
}
