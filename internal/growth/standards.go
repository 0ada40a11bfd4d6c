package growth

// StandardPoint is the approximate 50th-percentile reference at a given age.
type StandardPoint struct {
	Month             int     `json:"month"`
	Height            float64 `json:"height"`
	Weight            float64 `json:"weight"`
	HeadCircumference float64 `json:"head_circumference"`
}

// Value returns the reference value for m.
func (s StandardPoint) Value(m Metric) float64 {
	switch m {
	case MetricHeight:
		return s.Height
	case MetricWeight:
		return s.Weight
	default:
		return s.HeadCircumference
	}
}

// Reference tables, sorted by month. Monthly for the first half year, then
// every three and six months.
var (
	maleStandards = []StandardPoint{
		{0, 49.9, 3.3, 34.5},
		{1, 54.7, 4.5, 37.3},
		{2, 58.4, 5.6, 39.1},
		{3, 61.4, 6.4, 40.5},
		{4, 63.9, 7.0, 41.6},
		{5, 65.9, 7.5, 42.6},
		{6, 67.6, 7.9, 43.3},
		{9, 72.0, 8.9, 45.0},
		{12, 75.7, 9.6, 46.1},
		{15, 79.1, 10.3, 47.0},
		{18, 82.3, 10.9, 47.7},
		{24, 87.8, 12.2, 48.9},
		{30, 91.9, 13.3, 49.5},
		{36, 96.1, 14.3, 50.0},
		{42, 99.9, 15.3, 50.4},
		{48, 103.3, 16.3, 50.8},
		{54, 106.7, 17.3, 51.2},
		{60, 110.0, 18.3, 51.5},
	}
	femaleStandards = []StandardPoint{
		{0, 49.1, 3.2, 33.9},
		{1, 53.7, 4.2, 36.5},
		{2, 57.1, 5.1, 38.3},
		{3, 59.8, 5.8, 39.5},
		{4, 62.1, 6.4, 40.6},
		{5, 64.0, 6.9, 41.5},
		{6, 65.7, 7.3, 42.2},
		{9, 70.1, 8.2, 43.8},
		{12, 74.0, 8.9, 44.9},
		{15, 77.5, 9.6, 45.8},
		{18, 80.7, 10.2, 46.5},
		{24, 86.4, 11.5, 47.7},
		{30, 90.7, 12.7, 48.4},
		{36, 95.1, 13.9, 48.9},
		{42, 99.0, 15.0, 49.4},
		{48, 102.7, 16.1, 49.9},
		{54, 106.2, 17.2, 50.3},
		{60, 109.4, 18.2, 50.7},
	}
)

// Standards returns the reference table for g. Callers must not modify it.
func Standards(g Gender) []StandardPoint {
	if g == GenderFemale {
		return femaleStandards
	}
	return maleStandards
}

// LookupExact returns the entry for month, or the nearest tabulated month when
// there is none. Ties go to the earlier month.
func LookupExact(g Gender, month int) StandardPoint {
	table := Standards(g)
	best := table[0]
	for _, p := range table[1:] {
		if absInt(p.Month-month) < absInt(best.Month-month) {
			best = p
		}
	}
	return best
}

// Interpolate linearly interpolates metric m at a fractional month. Months
// outside the table return the boundary value.
func Interpolate(g Gender, month float64, m Metric) float64 {
	table := Standards(g)
	first, last := table[0], table[len(table)-1]
	if month <= float64(first.Month) {
		return first.Value(m)
	}
	if month >= float64(last.Month) {
		return last.Value(m)
	}

	for i := 1; i < len(table); i++ {
		hi := table[i]
		if float64(hi.Month) < month {
			continue
		}
		lo := table[i-1]
		if float64(hi.Month) == month {
			return hi.Value(m)
		}
		span := float64(hi.Month - lo.Month)
		t := (month - float64(lo.Month)) / span
		return lo.Value(m) + t*(hi.Value(m)-lo.Value(m))
	}
	return last.Value(m)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
