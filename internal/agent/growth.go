package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"child-health-tracker/internal/growth"
)

const growthSystemPrompt = `당신은 소아 성장 발달을 설명해주는 친절한 상담가입니다.
부모에게 아이의 측정값을 또래 평균과 비교해 짧고 따뜻하게 설명하세요.
반드시 다음 형식의 JSON 객체 하나로만 답하세요:
{"title": "이모지를 포함한 한 줄 제목", "content": "두세 문장의 설명", "status": "positive|caution|warning"}
warning은 평균과 %.0f%% 이상 차이가 날 때만 사용하세요.`

// GrowthAnalyst implements growth.InsightProvider with the remote model.
type GrowthAnalyst struct {
	client DeepSeekClient
}

func NewGrowthAnalyst(client DeepSeekClient) *GrowthAnalyst {
	return &GrowthAnalyst{client: client}
}

type growthReply struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (a *GrowthAnalyst) Analyze(ctx context.Context, p growth.ChildProfile, m growth.Metric) (growth.Insight, error) {
	cmp, ok := growth.Compare(p, m)
	if !ok {
		return growth.DataNeededInsight(m), nil
	}

	reply, err := a.client.Complete(ctx, fmt.Sprintf(growthSystemPrompt, growth.WarningThreshold), growthPrompt(p, cmp))
	if err != nil {
		return growth.Insight{}, err
	}

	var r growthReply
	if err := decodeReply(reply, &r); err != nil {
		return growth.Insight{}, err
	}
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Content) == "" {
		return growth.Insight{}, errors.New("reply is missing title or content")
	}

	return growth.Insight{
		Title:         r.Title,
		Content:       r.Content,
		Status:        growth.NormalizeStatus(growth.Status(strings.ToLower(r.Status)), cmp.PercentDiff),
		Metric:        m,
		Value:         cmp.Value,
		StandardValue: cmp.StandardValue,
		PercentDiff:   cmp.PercentDiff,
		AgeMonths:     cmp.AgeMonths,
		HasComparison: true,
	}, nil
}

func growthPrompt(p growth.ChildProfile, cmp growth.Comparison) string {
	gender := "남아"
	if p.Gender == growth.GenderFemale {
		gender = "여아"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "아이: %s, %d개월\n", gender, cmp.AgeMonths)
	fmt.Fprintf(&b, "항목: %s\n", cmp.Metric.Label())
	fmt.Fprintf(&b, "측정값: %.1f%s (측정일 %s)\n", cmp.Value, cmp.Metric.Unit(), cmp.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "또래 평균: %.1f%s\n", cmp.StandardValue, cmp.Metric.Unit())
	fmt.Fprintf(&b, "평균 대비 차이: %+.1f%%\n", cmp.PercentDiff)

	history := p.Records(cmp.Metric)
	if len(history) > 1 {
		b.WriteString("이전 기록:\n")
		for _, r := range history[:len(history)-1] {
			v, _ := r.Value(cmp.Metric)
			fmt.Fprintf(&b, "- %s: %.1f%s\n", r.Date.Format("2006-01-02"), v, cmp.Metric.Unit())
		}
	}
	return b.String()
}
