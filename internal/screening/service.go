package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"child-health-tracker/internal/age"
	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/insight"
)

// ProfileGetter is the part of the growth service screening depends on.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*growth.ChildProfile, error)
}

// Assessment is a stored result together with its scores and narrative.
type Assessment struct {
	Result    Result    `json:"result"`
	Stage     Stage     `json:"stage"`
	Summary   Summary   `json:"summary"`
	Narrative Narrative `json:"narrative"`
}

type Service interface {
	Overview(ctx context.Context, profileID uuid.UUID, asOf time.Time) (*Overview, error)
	Submit(ctx context.Context, profileID uuid.UUID, stageID string, answers []Answer, takenAt time.Time) (*Result, error)
	Results(ctx context.Context, profileID uuid.UUID) ([]Result, error)
	Assessment(ctx context.Context, profileID uuid.UUID, stageID string) (*Assessment, error)
}

type service struct {
	repo     Repository
	profiles ProfileGetter
	provider InsightProvider
	gate     *insight.Gate[Narrative]
	logger   zerolog.Logger

	mu sync.Mutex
}

func NewService(repo Repository, profiles ProfileGetter, provider InsightProvider, gate *insight.Gate[Narrative], logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		profiles: profiles,
		provider: provider,
		gate:     gate,
		logger:   logger,
	}
}

func (s *service) Overview(ctx context.Context, profileID uuid.UUID, asOf time.Time) (*Overview, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	byStage := make(map[string]Result, len(results))
	for _, r := range results {
		byStage[r.StageID] = r
	}
	ov := StageOverview(age.WholeMonths(p.BirthDate, asOf), byStage)
	return &ov, nil
}

func (s *service) Submit(ctx context.Context, profileID uuid.UUID, stageID string, answers []Answer, takenAt time.Time) (*Result, error) {
	stage, err := StageByID(stageID)
	if err != nil {
		return nil, err
	}
	if err := ValidateAnswers(stage, answers); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rev := int64(1)
	prev, err := s.repo.Get(ctx, profileID, stageID)
	switch {
	case err == nil:
		rev = prev.Revision + 1
	case !errors.Is(err, ErrResultNotFound):
		return nil, fmt.Errorf("load result: %w", err)
	}

	res := Result{
		ProfileID:      profileID,
		StageID:        stageID,
		TakenAt:        takenAt,
		ChildAgeMonths: age.WholeMonths(p.BirthDate, takenAt),
		Answers:        append([]Answer(nil), answers...),
		Revision:       rev,
	}
	if err := s.repo.Save(ctx, &res); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	s.gate.Observe(scope(profileID, stageID), rev)

	s.logger.Info().
		Str("profile_id", profileID.String()).
		Str("stage_id", stageID).
		Int64("revision", rev).
		Msg("assessment submitted")
	return &res, nil
}

func (s *service) Results(ctx context.Context, profileID uuid.UUID) ([]Result, error) {
	if _, err := s.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return s.repo.ListByProfile(ctx, profileID)
}

// Assessment scores the stored result and attaches its narrative. A narrative
// computed for a result that was resubmitted meanwhile is dropped and
// recomputed once for the new result.
func (s *service) Assessment(ctx context.Context, profileID uuid.UUID, stageID string) (*Assessment, error) {
	stage, err := StageByID(stageID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		res, err := s.repo.Get(ctx, profileID, stageID)
		if err != nil {
			return nil, err
		}

		snapshot := *res
		key := insight.Key{Scope: scope(profileID, stageID), Subject: "development"}
		narrative, err := s.gate.Do(ctx, key, res.Revision,
			func(ctx context.Context) (Narrative, error) {
				return s.provider.Analyze(ctx, stage, snapshot)
			},
			FallbackNarrative,
		)
		if errors.Is(err, insight.ErrSuperseded) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		return &Assessment{
			Result:    snapshot,
			Stage:     stage,
			Summary:   Aggregate(stage, snapshot.Answers),
			Narrative: narrative,
		}, nil
	}
	return nil, lastErr
}

func scope(profileID uuid.UUID, stageID string) string {
	return profileID.String() + "/" + stageID
}
