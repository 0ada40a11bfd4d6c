package growth

import "context"

// InsightProvider produces the narrative for one metric. Implementations may
// be remote and fail; callers substitute FallbackInsight on error.
type InsightProvider interface {
	Analyze(ctx context.Context, p ChildProfile, m Metric) (Insight, error)
}

// RuleBasedProvider is the deterministic, always-available provider.
type RuleBasedProvider struct{}

func (RuleBasedProvider) Analyze(_ context.Context, p ChildProfile, m Metric) (Insight, error) {
	return Analyze(p, m), nil
}
