package screening

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStageNotFound  = errors.New("screening stage not found")
	ErrResultNotFound = errors.New("assessment result not found")
	ErrInvalidAnswer  = errors.New("invalid assessment answer")
)

// Domain is a developmental area a question belongs to.
type Domain string

const (
	DomainGrossMotor Domain = "gross_motor"
	DomainFineMotor  Domain = "fine_motor"
	DomainCognition  Domain = "cognition"
	DomainLanguage   Domain = "language"
	DomainSocial     Domain = "social"
	DomainSelfHelp   Domain = "self_help"
)

var domainLabels = map[Domain]string{
	DomainGrossMotor: "대근육 운동",
	DomainFineMotor:  "소근육 운동",
	DomainCognition:  "인지",
	DomainLanguage:   "언어",
	DomainSocial:     "사회성",
	DomainSelfHelp:   "자조",
}

func (d Domain) Label() string {
	if l, ok := domainLabels[d]; ok {
		return l
	}
	return string(d)
}

const (
	MinScore = 0
	MaxScore = 3
)

type Question struct {
	ID     string `json:"id"`
	Domain Domain `json:"domain"`
	Text   string `json:"text"`
}

type Stage struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	MinMonths int        `json:"min_months"`
	MaxMonths int        `json:"max_months"`
	Questions []Question `json:"questions"`
}

// Contains reports whether a whole-month age falls inside the stage band.
func (s Stage) Contains(months int) bool {
	return months >= s.MinMonths && months <= s.MaxMonths
}

func (s Stage) distance(months int) int {
	switch {
	case months < s.MinMonths:
		return s.MinMonths - months
	case months > s.MaxMonths:
		return months - s.MaxMonths
	default:
		return 0
	}
}

func (s Stage) question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Answer scores: 0 not at all, 1 sometimes, 2 well, 3 very well.
type Answer struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
}

// Result is one submitted questionnaire. There is at most one per profile and
// stage; resubmitting replaces it and bumps Revision.
type Result struct {
	ProfileID      uuid.UUID `json:"profile_id" db:"profile_id"`
	StageID        string    `json:"stage_id" db:"stage_id"`
	TakenAt        time.Time `json:"taken_at" db:"taken_at"`
	ChildAgeMonths int       `json:"child_age_months" db:"child_age_months"`
	Answers        []Answer  `json:"answers" db:"answers"`
	Revision       int64     `json:"revision" db:"revision"`
}

// answerIndex keys answers by question id; a later duplicate wins.
func answerIndex(answers []Answer) map[string]int {
	idx := make(map[string]int, len(answers))
	for _, a := range answers {
		idx[a.QuestionID] = a.Score
	}
	return idx
}

// ValidateAnswers checks that every answer targets a question of the stage and
// carries a score in [MinScore, MaxScore]. Unanswered questions are allowed.
func ValidateAnswers(stage Stage, answers []Answer) error {
	for _, a := range answers {
		if _, ok := stage.question(a.QuestionID); !ok {
			return fmt.Errorf("%w: unknown question %s", ErrInvalidAnswer, a.QuestionID)
		}
		if a.Score < MinScore || a.Score > MaxScore {
			return fmt.Errorf("%w: score %d out of range for %s", ErrInvalidAnswer, a.Score, a.QuestionID)
		}
	}
	return nil
}
