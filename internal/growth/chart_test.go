package growth

import (
	"testing"
)

func TestBuildChart_NoRecords(t *testing.T) {
	chart := BuildChart(profileWith(GenderMale), MetricHeight)

	if chart.MonthDomain != (Range{Min: 0, Max: 12}) {
		t.Errorf("month domain = %+v, want [0, 12]", chart.MonthDomain)
	}
	// Tabulated months 0..6, 9 and 12 fall inside [-1, 13].
	if len(chart.Points) != 9 {
		t.Fatalf("points = %d, want 9", len(chart.Points))
	}
	for _, pt := range chart.Points {
		if pt.Value != nil || pt.Standard == nil {
			t.Fatalf("expected standard-only point, got %+v", pt)
		}
	}
}

func TestBuildChart_SinglePointInfant(t *testing.T) {
	p := profileWith(GenderFemale, GrowthRecord{Date: daysAfterBirth(15), Weight: fp(3.9)})
	chart := BuildChart(p, MetricWeight)

	if chart.MonthDomain != (Range{Min: 0, Max: 1.2}) {
		t.Errorf("month domain = %+v, want [0, 1.2]", chart.MonthDomain)
	}
}

func TestBuildChart_SinglePoint(t *testing.T) {
	p := profileWith(GenderMale, GrowthRecord{Date: daysAfterBirth(609), Height: fp(85)})
	chart := BuildChart(p, MetricHeight)

	if chart.MonthDomain != (Range{Min: 19, Max: 21}) {
		t.Errorf("month domain = %+v, want [19, 21]", chart.MonthDomain)
	}

	var user, std int
	for _, pt := range chart.Points {
		if pt.Value != nil {
			user++
			if pt.Expected == nil {
				t.Error("user point lacks expected standard")
			} else if want := Interpolate(GenderMale, pt.Month, MetricHeight); *pt.Expected != want {
				t.Errorf("expected = %v, want %v", *pt.Expected, want)
			}
			if pt.Standard != nil {
				t.Error("user point must not set Standard")
			}
		} else {
			std++
		}
	}
	// Only month 18 lies in [18, 22].
	if user != 1 || std != 1 {
		t.Errorf("user=%d std=%d, want 1 and 1", user, std)
	}

	// Only the user value sits inside [19, 21]; a flat span falls back to 10.
	if chart.ValueDomain != (Range{Min: 83, Max: 87}) {
		t.Errorf("value domain = %+v, want [83, 87]", chart.ValueDomain)
	}
}

func TestBuildChart_CloseSamples(t *testing.T) {
	p := profileWith(GenderMale,
		GrowthRecord{Date: daysAfterBirth(304), Weight: fp(9.2)},
		GrowthRecord{Date: daysAfterBirth(335), Weight: fp(9.4)},
	)
	chart := BuildChart(p, MetricWeight)

	if !approxEqual(chart.MonthDomain.Min, 9.8) || !approxEqual(chart.MonthDomain.Max, 11.2) {
		t.Errorf("month domain = %+v, want [9.8, 11.2]", chart.MonthDomain)
	}
}

func TestBuildChart_SpreadSamples(t *testing.T) {
	p := profileWith(GenderMale,
		GrowthRecord{Date: daysAfterBirth(61), Height: fp(58)},
		GrowthRecord{Date: daysAfterBirth(426), Height: fp(78)},
	)
	chart := BuildChart(p, MetricHeight)

	if chart.MonthDomain != (Range{Min: 0, Max: 16}) {
		t.Errorf("month domain = %+v, want [0, 16]", chart.MonthDomain)
	}

	for i := 1; i < len(chart.Points); i++ {
		if chart.Points[i].Month < chart.Points[i-1].Month {
			t.Fatalf("points not sorted at %d", i)
		}
	}

	// Standards 0..15 plus both user samples; months are not deduplicated.
	if len(chart.Points) != 12 {
		t.Errorf("points = %d, want 12", len(chart.Points))
	}

	vd := chart.ValueDomain
	if vd.Min < 0 || vd.Min > 49.9 || vd.Max < 79.1 {
		t.Errorf("value domain %+v does not cover the data", vd)
	}
}

func TestMonthDomain_ClampsAtZero(t *testing.T) {
	got := MonthDomain([]ChartPoint{{Month: 0.1}, {Month: 0.9}})
	if got.Min != 0 {
		t.Errorf("min = %v, want 0", got.Min)
	}
	if !approxEqual(got.Max, 1.1) {
		t.Errorf("max = %v, want 1.1", got.Max)
	}
}

func TestValueDomain_Empty(t *testing.T) {
	got := ValueDomain(nil, Range{Min: 0, Max: 12})
	if got != (Range{Min: 0, Max: 10}) {
		t.Errorf("empty value domain = %+v", got)
	}
}
