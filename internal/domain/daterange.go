package domain

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days (YYYY-MM-DD).
const DayFormat = "2006-01-02"

// DateRange is a half-open stay interval [CheckIn, CheckOut) at day
// granularity. Both bounds are UTC midnights; callers normalize to a
// canonical calendar day before constructing one.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseDateRange builds a DateRange from two YYYY-MM-DD strings.
// It validates format only; call Valid for the ordering rule.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.ParseInLocation(DayFormat, checkIn, time.UTC)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "check_in", Reason: "must be a YYYY-MM-DD date"}
	}
	out, err := time.ParseInLocation(DayFormat, checkOut, time.UTC)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "check_out", Reason: "must be a YYYY-MM-DD date"}
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Valid reports whether the range is non-empty: check-in strictly before
// check-out. Zero-length and inverted ranges are invalid.
func (d DateRange) Valid() bool {
	return d.CheckIn.Before(d.CheckOut)
}

// Overlaps applies the half-open rule: [a,b) and [c,d) overlap iff
// a < d && c < b. Touching endpoints (checkout day == next check-in day)
// do not overlap, so back-to-back stays are legal.
func (d DateRange) Overlaps(o DateRange) bool {
	return d.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(d.CheckOut)
}

// Nights is the stay length in nights. Ranges are whole days, so the
// division is exact.
func (d DateRange) Nights() int {
	return int(d.CheckOut.Sub(d.CheckIn).Hours() / 24)
}

func (d DateRange) String() string {
	return fmt.Sprintf("[%s,%s)", d.CheckIn.Format(DayFormat), d.CheckOut.Format(DayFormat))
}
