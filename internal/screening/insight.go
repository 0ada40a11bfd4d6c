package screening

import (
	"context"
	"fmt"
	"strings"
)

// Section is one titled block of a narrative, rendered in order.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type Narrative struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Text renders the narrative as markdown.
func (n Narrative) Text() string {
	var b strings.Builder
	if n.Title != "" {
		fmt.Fprintf(&b, "### %s\n\n", n.Title)
	}
	for i, s := range n.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			fmt.Fprintf(&b, "**%s**\n", s.Heading)
		}
		b.WriteString(s.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// InsightProvider writes the narrative for a submitted stage. Implementations
// may be remote and fail; callers substitute FallbackNarrative on error.
type InsightProvider interface {
	Analyze(ctx context.Context, stage Stage, result Result) (Narrative, error)
}

const FallbackMessage = "분석을 불러오지 못했습니다. 잠시 후 다시 시도해주세요."

func FallbackNarrative() Narrative {
	return Narrative{Sections: []Section{{Body: FallbackMessage}}}
}

var tierSummaries = map[Tier]string{
	TierExcellent: "전반적으로 발달 상태가 **매우 우수**합니다! 🎉 또래보다 빠른 발달을 보이고 있어요.",
	TierGood:      "발달 상태가 **양호**합니다. 🌱 또래 아이들과 비슷하게 잘 자라고 있어요.",
	TierAttention: "일부 영역에서 세심한 관찰이 필요할 수 있습니다. 🏥 점수가 낮은 영역은 놀이를 통해 자극을 주세요.",
}

const ruleBasedNotice = "_(이 리포트는 AI 연결 없이 생성된 기본 분석 결과입니다)_"

// Narrate builds the deterministic narrative: overall tier, then tips for low
// domains or general encouragement, then a notice.
func Narrate(stage Stage, sum Summary) Narrative {
	n := Narrative{Title: fmt.Sprintf("📊 %s 발달 검사 결과", stage.Label)}

	n.Sections = append(n.Sections, Section{
		Heading: fmt.Sprintf("종합 점수: %d점", sum.Score()),
		Body:    tierSummaries[sum.Tier],
	})

	if len(sum.LowDomains) > 0 {
		lines := make([]string, 0, len(sum.LowDomains))
		for _, d := range sum.LowDomains {
			lines = append(lines, fmt.Sprintf("* %s: %s", d.Label, Advice(d.Domain)))
		}
		n.Sections = append(n.Sections, Section{
			Heading: "🧩 더 살펴볼 영역",
			Body:    strings.Join(lines, "\n"),
		})
	} else {
		n.Sections = append(n.Sections, Section{
			Heading: "💡 육아 가이드",
			Body: strings.Join([]string{
				"* 아이가 잘하는 행동에는 아낌없이 칭찬해주세요.",
				"* 새로운 놀이를 함께 시도하며 호기심을 키워주세요.",
				"* 구체적인 발달 상담은 전문의와 상의하는 것이 가장 정확합니다.",
			}, "\n"),
		})
	}

	n.Sections = append(n.Sections, Section{Body: ruleBasedNotice})
	return n
}

// RuleBasedProvider is the deterministic, always-available provider.
type RuleBasedProvider struct{}

func (RuleBasedProvider) Analyze(_ context.Context, stage Stage, result Result) (Narrative, error) {
	return Narrate(stage, Aggregate(stage, result.Answers)), nil
}
