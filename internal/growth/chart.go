package growth

import (
	"math"
	"sort"
	"time"

	"child-health-tracker/internal/age"
)

// ChartPoint is one entry of the combined series. User samples set Value (and
// Expected, the interpolated standard at the same month); reference samples
// set only Standard.
type ChartPoint struct {
	Month    float64    `json:"month"`
	Value    *float64   `json:"value,omitempty"`
	Standard *float64   `json:"standard,omitempty"`
	Expected *float64   `json:"expected,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// Range is a closed [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

type Chart struct {
	Metric      Metric       `json:"metric"`
	Points      []ChartPoint `json:"points"`
	MonthDomain Range        `json:"month_domain"`
	ValueDomain Range        `json:"value_domain"`
}

const (
	defaultMonthSpan   = 12.0
	singlePointInfant  = 1.2 // upper bound when the only sample is under a month old
	closeSamplesMargin = 0.2
	spreadPadding      = 0.1
	valuePadding       = 0.2
	fallbackValueSpan  = 10.0
)

// BuildChart resolves the age window for the profile's samples of m and merges
// them with the reference curve into one month-sorted series.
func BuildChart(p ChildProfile, m Metric) Chart {
	var user []ChartPoint
	for _, r := range p.GrowthHistory {
		v, ok := r.Value(m)
		if !ok {
			continue
		}
		month := age.FractionalMonths(p.BirthDate, r.Date)
		expected := Interpolate(p.Gender, month, m)
		date := r.Date
		user = append(user, ChartPoint{
			Month:    month,
			Value:    &v,
			Expected: &expected,
			Date:     &date,
		})
	}

	domain := MonthDomain(user)

	points := make([]ChartPoint, 0, len(user)+len(Standards(p.Gender)))
	for _, sp := range Standards(p.Gender) {
		month := float64(sp.Month)
		if month < domain.Min-1 || month > domain.Max+1 {
			continue
		}
		std := sp.Value(m)
		points = append(points, ChartPoint{Month: month, Standard: &std})
	}
	points = append(points, user...)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Month < points[j].Month
	})

	return Chart{
		Metric:      m,
		Points:      points,
		MonthDomain: domain,
		ValueDomain: ValueDomain(points, domain),
	}
}

// MonthDomain picks the age axis for a set of user samples.
func MonthDomain(user []ChartPoint) Range {
	if len(user) == 0 {
		return Range{Min: 0, Max: defaultMonthSpan}
	}

	rawMin, rawMax := user[0].Month, user[0].Month
	for _, pt := range user[1:] {
		rawMin = math.Min(rawMin, pt.Month)
		rawMax = math.Max(rawMax, pt.Month)
	}
	diff := rawMax - rawMin

	switch {
	case diff == 0:
		if rawMin < 1 {
			return Range{Min: 0, Max: singlePointInfant}
		}
		return Range{Min: math.Max(0, rawMin-1), Max: rawMin + 1}
	case diff < 2:
		return Range{
			Min: math.Max(0, rawMin-closeSamplesMargin),
			Max: rawMax + closeSamplesMargin,
		}
	default:
		padding := diff * spreadPadding
		return Range{
			Min: math.Max(0, math.Floor(rawMin-padding)),
			Max: math.Ceil(rawMax + padding),
		}
	}
}

// ValueDomain spans every Value and Standard inside the month domain, padded
// by 20% on each side and floored at zero.
func ValueDomain(points []ChartPoint, domain Range) Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		if !domain.Contains(pt.Month) {
			continue
		}
		for _, v := range []*float64{pt.Value, pt.Standard} {
			if v == nil {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
	}
	if math.IsInf(lo, 1) {
		return Range{Min: 0, Max: fallbackValueSpan}
	}

	span := hi - lo
	if span == 0 {
		span = fallbackValueSpan
	}
	padding := span * valuePadding
	return Range{
		Min: math.Max(0, math.Floor(lo-padding)),
		Max: math.Ceil(hi + padding),
	}
}
