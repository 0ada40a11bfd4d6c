// Package age converts calendar dates into a child's age.
//
// Three calculations are kept apart on purpose because each one feeds a different
// display: WholeMonths for the age badge and stage matching, Days for the "D+n"
// counter, and FractionalMonths for placing measurements on a chart.
package age

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// AverageMonthDays is the mean Gregorian month length used by FractionalMonths.
const AverageMonthDays = 30.44

// ParseDate parses a YYYY-MM-DD calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WholeMonths counts completed calendar months between birth and asOf.
// A partial final month is not counted and the result is never negative.
func WholeMonths(birth, asOf time.Time) int {
	months := (asOf.Year()-birth.Year())*12 + int(asOf.Month()) - int(birth.Month())
	if asOf.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Days returns the absolute number of elapsed days, rounding a partial day up.
func Days(birth, asOf time.Time) int {
	d := asOf.Sub(birth)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// FractionalMonths approximates the months between start and end using an average
// month length, rounded to one decimal. The result is signed.
func FractionalMonths(start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	return math.Round(days/AverageMonthDays*10) / 10
}
