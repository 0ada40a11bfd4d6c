package report

import (
	"fmt"
	"strings"

	"child-health-tracker/internal/growth"
)

// Line is one paragraph of the report at a font size, followed by Gap points
// of vertical space.
type Line struct {
	Text string
	Size float64
	Gap  float64
}

const (
	sizeTitle   = 20
	sizeHeading = 14
	sizeBody    = 11
	sizeFooter  = 9
)

var statusLabels = map[growth.Status]string{
	growth.StatusPositive: "양호",
	growth.StatusCaution:  "관찰",
	growth.StatusWarning:  "주의",
}

// BuildLines lays out the report content top to bottom.
func BuildLines(c Content) []Line {
	p := c.Summary.Profile
	gender := "남아"
	if p.Gender == growth.GenderFemale {
		gender = "여아"
	}

	lines := []Line{
		{Text: "우리 아이 성장 리포트", Size: sizeTitle, Gap: 10},
		{Text: fmt.Sprintf("작성일: %s", c.GeneratedAt.Format("2006.01.02 15:04")), Size: sizeBody},
		{Text: fmt.Sprintf("이름: %s (%s)", p.Name, gender), Size: sizeBody},
		{Text: fmt.Sprintf("생년월일: %s · %d개월 · D+%d", p.BirthDate.Format("2006.01.02"), c.Summary.AgeMonths, c.Summary.DaysOld), Size: sizeBody, Gap: 12},
		{Text: "성장 분석", Size: sizeHeading, Gap: 4},
	}

	for _, ins := range c.Insights {
		head := fmt.Sprintf("%s [%s] %s", ins.Metric.Label(), statusLabels[ins.Status], ins.Title)
		lines = append(lines, Line{Text: head, Size: sizeBody})
		if ins.HasComparison {
			lines = append(lines, Line{
				Text: fmt.Sprintf("측정값 %.1f%s / 또래 평균 %.1f%s (%+.1f%%, %d개월 기준)",
					ins.Value, ins.Metric.Unit(), ins.StandardValue, ins.Metric.Unit(), ins.PercentDiff, ins.AgeMonths),
				Size: sizeBody,
			})
		}
		lines = append(lines, Line{Text: ins.Content, Size: sizeBody, Gap: 6})
	}

	lines = append(lines, Line{Text: "발달 선별검사", Size: sizeHeading, Gap: 4})
	if len(c.Assessments) == 0 {
		lines = append(lines, Line{Text: "- 완료한 검사가 없습니다.", Size: sizeBody, Gap: 6})
	}
	for _, a := range c.Assessments {
		lines = append(lines, Line{
			Text: fmt.Sprintf("%s (%s, 검사 시 %d개월): %d점",
				a.Stage.Label, a.Result.TakenAt.Format("2006.01.02"), a.Result.ChildAgeMonths, a.Summary.Score()),
			Size: sizeBody,
		})
		for _, d := range a.Summary.Domains {
			mark := ""
			if d.Low {
				mark = " ▼"
			}
			lines = append(lines, Line{
				Text: fmt.Sprintf("  - %s %d/%d%s", d.Label, d.RawScore, d.MaxScore, mark),
				Size: sizeBody,
			})
		}
		for _, sec := range a.Narrative.Sections {
			if sec.Heading != "" {
				lines = append(lines, Line{Text: sec.Heading, Size: sizeBody})
			}
			for _, para := range strings.Split(stripMarkdown(sec.Body), "\n") {
				if strings.TrimSpace(para) != "" {
					lines = append(lines, Line{Text: para, Size: sizeBody})
				}
			}
		}
		lines[len(lines)-1].Gap = 8
	}

	lines = append(lines, Line{
		Text: "이 리포트는 참고용이며 의학적 진단을 대신하지 않습니다.",
		Size: sizeFooter,
	})
	return lines
}

// SummaryText is the short chat message that accompanies the PDF.
func SummaryText(c Content) string {
	p := c.Summary.Profile
	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s (%d개월) 성장 리포트\n", p.Name, c.Summary.AgeMonths)
	for _, ins := range c.Insights {
		fmt.Fprintf(&b, "• %s [%s] %s\n", ins.Metric.Label(), statusLabels[ins.Status], ins.Title)
	}
	for _, a := range c.Assessments {
		fmt.Fprintf(&b, "• %s 발달검사 %d점\n", a.Stage.Label, a.Summary.Score())
	}
	b.WriteString("자세한 내용은 첨부된 PDF를 확인해주세요.")
	return b.String()
}

var markdownReplacer = strings.NewReplacer("**", "", "__", "", "### ", "", "_(", "(", ")_", ")")

func stripMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}
