package mastery

import (
	"math"
	"strings"

	"signs-study-service/internal/domain"
)

// State is the learner-facing bucket of a sign.
type State string

const (
	StateNew       State = "new"
	StateLearning  State = "learning"
	StateReviewing State = "reviewing"
	StateMastered  State = "mastered"
)

// Classify places one sign in exactly one bucket. Rules are checked in order.
func Classify(p domain.Lookup[domain.SignProgress]) State {
	rec, ok := domain.Get(p)
	switch {
	case !ok:
		return StateNew
	case rec.Mastered:
		return StateMastered
	case rec.CorrectCount > 0 && rec.IncorrectCount > 0:
		return StateReviewing
	case rec.CorrectCount > 0 || rec.IncorrectCount > 0:
		return StateLearning
	default:
		return StateNew
	}
}

// Counts is the global new/learning/reviewing/mastered breakdown.
type Counts struct {
	New       int `json:"new"`
	Learning  int `json:"learning"`
	Reviewing int `json:"reviewing"`
	Mastered  int `json:"mastered"`
}

// Total is the number of classified signs.
func (c Counts) Total() int {
	return c.New + c.Learning + c.Reviewing + c.Mastered
}

// CompletionPercent is mastered / total as a rounded percentage.
func (c Counts) CompletionPercent() int {
	return Percent(c.Mastered, c.Total())
}

// CategoryCounts is the per-category mastery tally.
type CategoryCounts struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
}

// Percent is Mastered / Total as a rounded percentage.
func (c CategoryCounts) Percent() int {
	return Percent(c.Mastered, c.Total)
}

// Overview is the result of Aggregate.
type Overview struct {
	Global      Counts                   `json:"global"`
	PerCategory map[int64]CategoryCounts `json:"perCategory"`
}

// ProgressIndex maps sign IDs to their progress record.
type ProgressIndex map[int64]domain.SignProgress

// IndexProgress builds a ProgressIndex from a flat list of records.
func IndexProgress(records []domain.SignProgress) ProgressIndex {
	idx := make(ProgressIndex, len(records))
	for _, r := range records {
		idx[r.SignID] = r
	}
	return idx
}

// Lookup returns the record for a sign, if any.
func (idx ProgressIndex) Lookup(signID int64) domain.Lookup[domain.SignProgress] {
	rec, ok := idx[signID]
	return domain.FoundOrAbsent(rec, ok)
}

// Aggregate rolls per-sign progress into global and per-category counts.
// Signs without a category only contribute to the global counts.
func Aggregate(signs []domain.Sign, progress ProgressIndex) Overview {
	out := Overview{PerCategory: make(map[int64]CategoryCounts)}
	for _, sign := range signs {
		state := Classify(progress.Lookup(sign.ID))
		switch state {
		case StateNew:
			out.Global.New++
		case StateLearning:
			out.Global.Learning++
		case StateReviewing:
			out.Global.Reviewing++
		case StateMastered:
			out.Global.Mastered++
		}

		if sign.CategoryID == 0 {
			continue
		}
		cat := out.PerCategory[sign.CategoryID]
		cat.Total++
		if state == StateMastered {
			cat.Mastered++
		}
		out.PerCategory[sign.CategoryID] = cat
	}
	return out
}

// MasteredSigns filters the signs whose record is mastered.
func MasteredSigns(signs []domain.Sign, progress ProgressIndex) []domain.Sign {
	var out []domain.Sign
	for _, s := range signs {
		if rec, ok := progress[s.ID]; ok && rec.Mastered {
			out = append(out, s)
		}
	}
	return out
}

// LearningSigns filters the signs that were answered at least once but are not mastered.
func LearningSigns(signs []domain.Sign, progress ProgressIndex) []domain.Sign {
	var out []domain.Sign
	for _, s := range signs {
		rec, ok := progress[s.ID]
		if ok && !rec.Mastered && (rec.CorrectCount > 0 || rec.IncorrectCount > 0) {
			out = append(out, s)
		}
	}
	return out
}

// SearchSigns does a case-insensitive title match. A blank query returns every sign.
func SearchSigns(signs []domain.Sign, query string) []domain.Sign {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return signs
	}
	var out []domain.Sign
	for _, s := range signs {
		if strings.Contains(strings.ToLower(s.Title), q) {
			out = append(out, s)
		}
	}
	return out
}

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
