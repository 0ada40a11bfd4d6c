package screening

import "math"

type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierAttention Tier = "attention"
)

const (
	ExcellentThreshold = 85.0
	GoodThreshold      = 60.0

	// A domain below this share of its maximum is flagged low.
	LowDomainRatio = 0.6
)

func TierFor(percent float64) Tier {
	switch {
	case percent >= ExcellentThreshold:
		return TierExcellent
	case percent >= GoodThreshold:
		return TierGood
	default:
		return TierAttention
	}
}

type DomainScore struct {
	Domain   Domain  `json:"domain"`
	Label    string  `json:"label"`
	RawScore int     `json:"raw_score"`
	MaxScore int     `json:"max_score"`
	Percent  float64 `json:"percent"`
	Low      bool    `json:"low"`
}

type Summary struct {
	Domains    []DomainScore `json:"domains"`
	Total      int           `json:"total"`
	Max        int           `json:"max"`
	Percent    float64       `json:"percent"`
	Tier       Tier          `json:"tier"`
	LowDomains []DomainScore `json:"low_domains"`
}

// Score is Percent rounded for display.
func (s Summary) Score() int {
	return int(math.Floor(s.Percent + 0.5))
}

// Aggregate sums answers per domain in the order domains first appear in the
// stage. Unanswered questions score 0.
func Aggregate(stage Stage, answers []Answer) Summary {
	idx := answerIndex(answers)

	var order []Domain
	byDomain := make(map[Domain]*DomainScore)
	for _, q := range stage.Questions {
		ds, ok := byDomain[q.Domain]
		if !ok {
			ds = &DomainScore{Domain: q.Domain, Label: q.Domain.Label()}
			byDomain[q.Domain] = ds
			order = append(order, q.Domain)
		}
		ds.RawScore += idx[q.ID]
		ds.MaxScore += MaxScore
	}

	sum := Summary{Domains: make([]DomainScore, 0, len(order)), LowDomains: []DomainScore{}}
	for _, d := range order {
		ds := *byDomain[d]
		if ds.MaxScore > 0 {
			ratio := float64(ds.RawScore) / float64(ds.MaxScore)
			ds.Percent = ratio * 100
			ds.Low = ratio < LowDomainRatio
		}
		sum.Total += ds.RawScore
		sum.Max += ds.MaxScore
		sum.Domains = append(sum.Domains, ds)
		if ds.Low {
			sum.LowDomains = append(sum.LowDomains, ds)
		}
	}

	if sum.Max > 0 {
		sum.Percent = float64(sum.Total) / float64(sum.Max) * 100
	}
	sum.Tier = TierFor(sum.Percent)
	return sum
}

var domainAdvice = map[Domain]string{
	DomainGrossMotor: "공 굴리기, 계단 오르기처럼 온몸을 쓰는 바깥 놀이 시간을 늘려주세요.",
	DomainFineMotor:  "블록 쌓기, 점토 놀이, 스티커 붙이기로 손가락을 섬세하게 쓰도록 해주세요.",
	DomainCognition:  "숨바꼭질, 까꿍 놀이, 모양 맞추기처럼 생각하며 찾는 놀이를 함께해주세요.",
	DomainLanguage:   "그림책을 읽어주고 아이의 말을 한 단어씩 늘려서 되돌려 말해주세요.",
	DomainSocial:     "또래와 어울리는 시간을 만들고 차례 지키기 놀이를 연습해보세요.",
	DomainSelfHelp:   "컵으로 마시기, 옷 입기처럼 스스로 해볼 기회를 자주 주세요.",
}

const genericAdvice = "일상 놀이 속에서 이 영역을 자연스럽게 자극해주세요."

// Advice returns the remediation tip for a domain.
func Advice(d Domain) string {
	if a, ok := domainAdvice[d]; ok {
		return a
	}
	return genericAdvice
}
