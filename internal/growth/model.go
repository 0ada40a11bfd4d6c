package growth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Metric selects one of the three tracked measurements.
type Metric string

const (
	MetricHeight Metric = "height"
	MetricWeight Metric = "weight"
	MetricHead   Metric = "head"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricHeight, MetricWeight, MetricHead:
		return true
	}
	return false
}

// Label is the Korean name shown to parents.
func (m Metric) Label() string {
	switch m {
	case MetricHeight:
		return "키"
	case MetricWeight:
		return "몸무게"
	default:
		return "머리둘레"
	}
}

func (m Metric) Unit() string {
	if m == MetricWeight {
		return "kg"
	}
	return "cm"
}

// Status is the qualitative verdict attached to an insight.
type Status string

const (
	StatusPositive Status = "positive" // Within or above the expected range
	StatusCaution  Status = "caution"  // Worth watching, or not enough data
	StatusWarning  Status = "warning"  // Significant deviation
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyRecord     = errors.New("growth record has no measurements")
	ErrInvalidMetric   = errors.New("unknown growth metric")
)

// GrowthRecord is one measurement session. Any non-empty subset of the
// three measurements may be present.
type GrowthRecord struct {
	Date              time.Time `json:"date"`
	Height            *float64  `json:"height,omitempty"`             // cm
	Weight            *float64  `json:"weight,omitempty"`             // kg
	HeadCircumference *float64  `json:"head_circumference,omitempty"` // cm
}

// Value returns the measurement for m, or false when the record lacks it.
func (r GrowthRecord) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricHeight:
		v = r.Height
	case MetricWeight:
		v = r.Weight
	case MetricHead:
		v = r.HeadCircumference
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (r GrowthRecord) IsEmpty() bool {
	return r.Height == nil && r.Weight == nil && r.HeadCircumference == nil
}

// ChildProfile is the aggregate root. GrowthHistory is kept sorted by date
// with at most one record per date.
type ChildProfile struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	BirthDate     time.Time      `json:"birth_date" db:"birth_date"`
	Gender        Gender         `json:"gender" db:"gender"`
	GrowthHistory []GrowthRecord `json:"growth_history" db:"growth_history"`

	// Revision increases with every update so that asynchronous results can be
	// tied to the profile value they were computed from.
	Revision  int64     `json:"revision" db:"revision"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Insight is the narrative verdict for one metric.
type Insight struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  Status `json:"status"`

	// Comparison details, zero when there was no data to compare.
	Metric        Metric  `json:"metric"`
	Value         float64 `json:"value,omitempty"`
	StandardValue float64 `json:"standard_value,omitempty"`
	PercentDiff   float64 `json:"percent_diff,omitempty"`
	AgeMonths     int     `json:"age_months,omitempty"`
	HasComparison bool    `json:"has_comparison"`
}
