package growth

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// NewProfile builds a profile. A non-empty birth record is stored as the first
// growth entry, dated at the birth date.
func NewProfile(name string, birthDate time.Time, gender Gender, birth *GrowthRecord) ChildProfile {
	now := time.Now()
	p := ChildProfile{
		ID:            uuid.New(),
		Name:          name,
		BirthDate:     birthDate,
		Gender:        gender,
		GrowthHistory: []GrowthRecord{},
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if birth != nil && !birth.IsEmpty() {
		r := *birth
		r.Date = birthDate
		p.GrowthHistory = append(p.GrowthHistory, r)
	}
	return p
}

// WithRecord returns a copy of p with r merged into its history. A record for a
// date that already exists only overwrites the fields r provides. p is not modified.
func (p ChildProfile) WithRecord(r GrowthRecord) ChildProfile {
	history := make([]GrowthRecord, len(p.GrowthHistory), len(p.GrowthHistory)+1)
	copy(history, p.GrowthHistory)

	merged := false
	for i, existing := range history {
		if !sameDay(existing.Date, r.Date) {
			continue
		}
		if r.Height != nil {
			existing.Height = r.Height
		}
		if r.Weight != nil {
			existing.Weight = r.Weight
		}
		if r.HeadCircumference != nil {
			existing.HeadCircumference = r.HeadCircumference
		}
		history[i] = existing
		merged = true
		break
	}
	if !merged {
		history = append(history, r)
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	next := p
	next.GrowthHistory = history
	next.Revision = p.Revision + 1
	next.UpdatedAt = time.Now()
	return next
}

// WithDetails returns a copy of p with edited name, birth date and gender.
func (p ChildProfile) WithDetails(name string, birthDate time.Time, gender Gender) ChildProfile {
	next := p
	next.GrowthHistory = append([]GrowthRecord(nil), p.GrowthHistory...)
	next.Name = name
	next.BirthDate = birthDate
	next.Gender = gender
	next.Revision = p.Revision + 1
	next.UpdatedAt = time.Now()
	return next
}

// Records returns the history entries that carry metric m, oldest first.
func (p ChildProfile) Records(m Metric) []GrowthRecord {
	var out []GrowthRecord
	for _, r := range p.GrowthHistory {
		if _, ok := r.Value(m); ok {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the most recent record carrying metric m.
func (p ChildProfile) Latest(m Metric) (GrowthRecord, bool) {
	for i := len(p.GrowthHistory) - 1; i >= 0; i-- {
		if _, ok := p.GrowthHistory[i].Value(m); ok {
			return p.GrowthHistory[i], true
		}
	}
	return GrowthRecord{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
