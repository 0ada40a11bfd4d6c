package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"child-health-tracker/internal/screening"
)

const developmentSystemPrompt = `당신은 영유아 발달 선별검사 결과를 부모에게 설명하는 전문가입니다.
점수를 진단처럼 단정하지 말고, 잘하는 점을 먼저 칭찬한 뒤 점수가 낮은 영역에는 집에서 할 수 있는 놀이를 제안하세요.
반드시 다음 형식의 JSON 객체 하나로만 답하세요:
{"title": "제목", "sections": [{"heading": "소제목", "body": "본문(마크다운 가능)"}]}`

const disclaimer = "_(이 결과는 참고용이며 정확한 평가는 전문의와 상담하세요)_"

// DevelopmentAnalyst implements screening.InsightProvider with the remote model.
type DevelopmentAnalyst struct {
	client DeepSeekClient
}

func NewDevelopmentAnalyst(client DeepSeekClient) *DevelopmentAnalyst {
	return &DevelopmentAnalyst{client: client}
}

type developmentReply struct {
	Title    string              `json:"title"`
	Sections []screening.Section `json:"sections"`
}

func (a *DevelopmentAnalyst) Analyze(ctx context.Context, stage screening.Stage, result screening.Result) (screening.Narrative, error) {
	sum := screening.Aggregate(stage, result.Answers)

	reply, err := a.client.Complete(ctx, developmentSystemPrompt, developmentPrompt(stage, result, sum))
	if err != nil {
		return screening.Narrative{}, err
	}

	var r developmentReply
	if err := decodeReply(reply, &r); err != nil {
		return screening.Narrative{}, err
	}

	n := screening.Narrative{Title: r.Title}
	for _, s := range r.Sections {
		if strings.TrimSpace(s.Body) != "" {
			n.Sections = append(n.Sections, s)
		}
	}
	if len(n.Sections) == 0 {
		return screening.Narrative{}, errors.New("reply has no sections")
	}
	if n.Title == "" {
		n.Title = fmt.Sprintf("📊 %s 발달 검사 결과", stage.Label)
	}
	n.Sections = append(n.Sections, screening.Section{Body: disclaimer})
	return n, nil
}

func developmentPrompt(stage screening.Stage, result screening.Result, sum screening.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "검사 단계: %s (검사 시 %d개월)\n", stage.Label, result.ChildAgeMonths)
	fmt.Fprintf(&b, "종합 점수: %d점 (%d/%d)\n", sum.Score(), sum.Total, sum.Max)
	b.WriteString("영역별 점수:\n")
	for _, d := range sum.Domains {
		mark := ""
		if d.Low {
			mark = " (낮음)"
		}
		fmt.Fprintf(&b, "- %s: %d/%d%s\n", d.Label, d.RawScore, d.MaxScore, mark)
	}

	scores := make(map[string]int, len(result.Answers))
	for _, ans := range result.Answers {
		scores[ans.QuestionID] = ans.Score
	}
	b.WriteString("문항별 응답 (0: 전혀 못함 ~ 3: 매우 잘함):\n")
	for _, q := range stage.Questions {
		fmt.Fprintf(&b, "- [%s] %s → %d\n", q.Domain.Label(), q.Text, scores[q.ID])
	}
	return b.String()
}
