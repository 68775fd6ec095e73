package practice

import (
	"sort"

	"signs-study-service/internal/domain"
	"signs-study-service/internal/mastery"
)

// DefaultLimit is the Quick Practice set size.
const DefaultLimit = 20

// Priority tiers, lower is picked first.
const (
	PriorityUnseen     = 1
	PriorityStruggling = 2
	PriorityInProgress = 3
	PriorityReview     = 4
)

// Candidate is a sign ranked for a practice set.
type Candidate struct {
	Sign     domain.Sign
	Priority int
	TieBreak float64
}

// PriorityOf assigns the tier for one sign. First matching rule wins.
func PriorityOf(p domain.Lookup[domain.SignProgress]) int {
	rec, ok := domain.Get(p)
	switch {
	case !ok:
		return PriorityUnseen
	case !rec.Mastered && rec.IncorrectCount > rec.CorrectCount:
		return PriorityStruggling
	case !rec.Mastered && rec.Streak < mastery.MasteryStreak:
		return PriorityInProgress
	case rec.Mastered:
		return PriorityReview
	default:
		return PriorityInProgress
	}
}

// Rank returns every sign as a candidate, ordered by tier then by a fresh
// random tie-break, so order is shuffled within a tier only.
func Rank(signs []domain.Sign, progress mastery.ProgressIndex, rnd Rand) []Candidate {
	out := make([]Candidate, 0, len(signs))
	for _, s := range signs {
		out = append(out, Candidate{
			Sign:     s,
			Priority: PriorityOf(progress.Lookup(s.ID)),
			TieBreak: rnd.Float64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].TieBreak < out[j].TieBreak
	})
	return out
}

// SelectPracticeSet picks up to limit signs for adaptive practice.
// A non-positive limit falls back to DefaultLimit.
func SelectPracticeSet(signs []domain.Sign, progress mastery.ProgressIndex, limit int, rnd Rand) []domain.Sign {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked := Rank(signs, progress, rnd)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]domain.Sign, len(ranked))
	for i, c := range ranked {
		out[i] = c.Sign
	}
	return out
}
