package growth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"child-health-tracker/internal/age"
	"child-health-tracker/internal/insight"
)

// Summary is the profile header: ages and the latest value of each metric.
type Summary struct {
	Profile     ChildProfile        `json:"profile"`
	AgeMonths   int                 `json:"age_months"`
	DaysOld     int                 `json:"days_old"`
	LatestValue map[Metric]*float64 `json:"latest_value"`
}

type CreateProfileInput struct {
	Name      string
	BirthDate time.Time
	Gender    Gender
	Birth     *GrowthRecord
}

type Service interface {
	CreateProfile(ctx context.Context, in CreateProfileInput) (*ChildProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*ChildProfile, error)
	ListProfiles(ctx context.Context) ([]ChildProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, birthDate time.Time, gender Gender) (*ChildProfile, error)
	AddRecord(ctx context.Context, id uuid.UUID, r GrowthRecord) (*ChildProfile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, id uuid.UUID, asOf time.Time) (*Summary, error)
	Insight(ctx context.Context, id uuid.UUID, m Metric) (Insight, error)
	Chart(ctx context.Context, id uuid.UUID, m Metric) (Chart, error)
}

type service struct {
	repo     Repository
	provider InsightProvider
	gate     *insight.Gate[Insight]
	logger   zerolog.Logger

	// serializes read-modify-write of profiles
	mu sync.Mutex
}

func NewService(repo Repository, provider InsightProvider, gate *insight.Gate[Insight], logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		provider: provider,
		gate:     gate,
		logger:   logger,
	}
}

func (s *service) CreateProfile(ctx context.Context, in CreateProfileInput) (*ChildProfile, error) {
	p := NewProfile(in.Name, in.BirthDate, in.Gender, in.Birth)
	if err := s.repo.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info().Str("profile_id", p.ID.String()).Msg("profile created")
	return &p, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*ChildProfile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProfiles(ctx context.Context) ([]ChildProfile, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, name string, birthDate time.Time, gender Gender) (*ChildProfile, error) {
	return s.update(ctx, id, func(p ChildProfile) ChildProfile {
		return p.WithDetails(name, birthDate, gender)
	})
}

func (s *service) AddRecord(ctx context.Context, id uuid.UUID, r GrowthRecord) (*ChildProfile, error) {
	if r.IsEmpty() {
		return nil, ErrEmptyRecord
	}
	return s.update(ctx, id, func(p ChildProfile) ChildProfile {
		return p.WithRecord(r)
	})
}

// DeleteProfile removes the profile; its assessment results go with it.
func (s *service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("profile_id", id.String()).Msg("profile deleted")
	return nil
}

func (s *service) update(ctx context.Context, id uuid.UUID, change func(ChildProfile) ChildProfile) (*ChildProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := change(*current)
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.gate.Observe(next.ID.String(), next.Revision)

	s.logger.Debug().
		Str("profile_id", next.ID.String()).
		Int64("revision", next.Revision).
		Msg("profile updated")
	return &next, nil
}

func (s *service) Summary(ctx context.Context, id uuid.UUID, asOf time.Time) (*Summary, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	latest := make(map[Metric]*float64, 3)
	for _, m := range []Metric{MetricHeight, MetricWeight, MetricHead} {
		if r, ok := p.Latest(m); ok {
			v, _ := r.Value(m)
			latest[m] = &v
		} else {
			latest[m] = nil
		}
	}

	return &Summary{
		Profile:     *p,
		AgeMonths:   age.WholeMonths(p.BirthDate, asOf),
		DaysOld:     age.Days(p.BirthDate, asOf),
		LatestValue: latest,
	}, nil
}

// Insight runs the configured provider through the gate. A result computed for
// a profile revision that was replaced meanwhile is dropped and the analysis
// is repeated once on the fresh profile.
func (s *service) Insight(ctx context.Context, id uuid.UUID, m Metric) (Insight, error) {
	if !m.Valid() {
		return Insight{}, ErrInvalidMetric
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return Insight{}, err
		}
		if _, ok := p.Latest(m); !ok {
			return DataNeededInsight(m), nil
		}

		snapshot := *p
		key := insight.Key{Scope: p.ID.String(), Subject: "growth:" + string(m)}
		res, err := s.gate.Do(ctx, key, p.Revision,
			func(ctx context.Context) (Insight, error) {
				return s.provider.Analyze(ctx, snapshot, m)
			},
			func() Insight { return FallbackInsight(m) },
		)
		if errors.Is(err, insight.ErrSuperseded) {
			lastErr = err
			continue
		}
		return res, err
	}
	return Insight{}, lastErr
}

func (s *service) Chart(ctx context.Context, id uuid.UUID, m Metric) (Chart, error) {
	if !m.Valid() {
		return Chart{}, ErrInvalidMetric
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Chart{}, err
	}
	return BuildChart(*p, m), nil
}
