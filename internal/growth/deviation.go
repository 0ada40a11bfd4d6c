package growth

import (
	"fmt"
	"math"
	"time"

	"child-health-tracker/internal/age"
)

// Percent-deviation cutoffs for the rule-based classifier.
const (
	HeightBand       = 5.0   // |d| below this is "about average"
	WeightLowCutoff  = -10.0 // d at or below this is "a bit light"
	WeightHighCutoff = 15.0  // d at or above this is "sturdy build"
	HeadBand         = 5.0

	// WarningThreshold is the only boundary at which any analyzer may report
	// StatusWarning. The rule-based classifier never reaches it.
	WarningThreshold = 20.0
)

// Comparison is the numeric part of a deviation analysis.
type Comparison struct {
	Metric        Metric    `json:"metric"`
	Date          time.Time `json:"date"`
	Value         float64   `json:"value"`
	StandardValue float64   `json:"standard_value"`
	PercentDiff   float64   `json:"percent_diff"`
	AgeMonths     int       `json:"age_months"`
}

// Compare measures the latest record carrying m against the nearest-month
// standard. It returns false when the history holds no such record.
func Compare(p ChildProfile, m Metric) (Comparison, bool) {
	rec, ok := p.Latest(m)
	if !ok {
		return Comparison{}, false
	}
	value, _ := rec.Value(m)

	ageMonths := int(roundHalfUp(age.FractionalMonths(p.BirthDate, rec.Date)))
	std := LookupExact(p.Gender, ageMonths).Value(m)

	return Comparison{
		Metric:        m,
		Date:          rec.Date,
		Value:         value,
		StandardValue: std,
		PercentDiff:   (value - std) / std * 100,
		AgeMonths:     ageMonths,
	}, true
}

// Analyze classifies the latest measurement of m against the growth standard.
// A history without m yields a "data needed" insight rather than an error.
func Analyze(p ChildProfile, m Metric) Insight {
	c, ok := Compare(p, m)
	if !ok {
		return DataNeededInsight(m)
	}

	var title, content string
	var status Status
	d := c.PercentDiff
	pct := fmt.Sprintf("%.1f", math.Abs(d))

	switch m {
	case MetricHeight:
		switch {
		case d >= HeightBand:
			title = "또래보다 큰 편이에요! 🦒"
			content = fmt.Sprintf("평균보다 약 %s%% 더 큽니다. 튼튼하게 자라고 있네요!", pct)
			status = StatusPositive
		case d <= -HeightBand:
			title = "조금 천천히 자라고 있어요 🐣"
			content = fmt.Sprintf("평균보다 약 %s%% 작지만, 꾸준히 자라고 있다면 걱정하지 마세요. 정기적으로 기록해 주세요.", pct)
			status = StatusCaution
		default:
			title = "평균과 아주 비슷해요! ⚖️"
			content = "또래 아이들의 평균 키와 거의 같습니다. 아주 건강하게 잘 자라고 있어요."
			status = StatusPositive
		}
	case MetricWeight:
		switch {
		case d >= WeightHighCutoff:
			title = "튼튼한 체격이에요 🍎"
			content = fmt.Sprintf("평균보다 약 %s%% 더 나갑니다. 간식과 식사량을 조금만 조절해 주세요.", pct)
			status = StatusCaution
		case d <= WeightLowCutoff:
			title = "조금 가벼운 편이에요 🥣"
			content = fmt.Sprintf("평균보다 약 %s%% 가볍습니다. 균형 잡힌 식사로 충분한 영양을 챙겨 주세요.", pct)
			status = StatusCaution
		default:
			title = "적정 체중이에요! ⚖️"
			content = fmt.Sprintf("또래 평균 몸무게와 %s%% 차이로 건강한 범위에 있어요.", pct)
			status = StatusPositive
		}
	default:
		status = StatusPositive
		switch {
		case d > HeadBand:
			title = "머리둘레가 큰 편이에요 🧠"
			content = fmt.Sprintf("평균보다 약 %s%% 큽니다. 꾸준히 기록하며 변화를 지켜봐 주세요.", pct)
		case d < -HeadBand:
			title = "머리둘레가 작은 편이에요 🧠"
			content = fmt.Sprintf("평균보다 약 %s%% 작습니다. 꾸준히 기록하며 변화를 지켜봐 주세요.", pct)
		default:
			title = "머리둘레가 평균 범위예요 🧠"
			content = "또래 아이들의 평균 머리둘레와 비슷하게 잘 자라고 있어요."
		}
	}

	return Insight{
		Title:         title,
		Content:       content,
		Status:        status,
		Metric:        m,
		Value:         c.Value,
		StandardValue: c.StandardValue,
		PercentDiff:   c.PercentDiff,
		AgeMonths:     c.AgeMonths,
		HasComparison: true,
	}
}

// DataNeededInsight is returned when no record carries the metric.
func DataNeededInsight(m Metric) Insight {
	return Insight{
		Title:   "데이터 필요",
		Content: "성장 기록을 입력하면 또래와 비교해드려요.",
		Status:  StatusCaution,
		Metric:  m,
	}
}

// FallbackInsight replaces a failed remote analysis.
func FallbackInsight(m Metric) Insight {
	return Insight{
		Title:   "분석 오류",
		Content: "분석 정보를 불러오지 못했습니다.",
		Status:  StatusPositive,
		Metric:  m,
	}
}

// NormalizeStatus enforces the canonical threshold table on a status produced
// elsewhere: warning requires |d| >= WarningThreshold, and unknown values
// become caution.
func NormalizeStatus(s Status, percentDiff float64) Status {
	switch s {
	case StatusPositive, StatusCaution:
		return s
	case StatusWarning:
		if math.Abs(percentDiff) >= WarningThreshold {
			return StatusWarning
		}
		return StatusCaution
	default:
		return StatusCaution
	}
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
