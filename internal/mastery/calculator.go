// Package mastery holds the per-sign mastery rules and the roll-ups built on them.
package mastery

import (
	"time"

	"signs-study-service/internal/domain"
)

// MasteryStreak is the number of consecutive correct answers that masters a sign.
const MasteryStreak = 3

// Outcome classifies a single answer for session statistics.
type Outcome struct {
	Correct       bool
	NewSign       bool
	NewlyMastered bool
}

// ApplyAnswer computes the next progress record for a sign after one answer.
// Mastery is sticky: once set it is never cleared here.
func ApplyAnswer(existing domain.Lookup[domain.SignProgress], userID string, signID int64, wasCorrect bool, now time.Time) (domain.SignProgress, Outcome) {
	switch prev := existing.(type) {
	case domain.Found[domain.SignProgress]:
		next := prev.Record
		if wasCorrect {
			next.CorrectCount++
			next.Streak++
		} else {
			next.IncorrectCount++
			next.Streak = 0
		}
		next.Mastered = prev.Record.Mastered || next.Streak >= MasteryStreak
		next.LastReviewed = now
		return next, Outcome{
			Correct:       wasCorrect,
			NewlyMastered: next.Mastered && !prev.Record.Mastered,
		}
	default:
		rec := domain.SignProgress{
			UserID:       userID,
			SignID:       signID,
			Mastered:     false,
			LastReviewed: now,
		}
		if wasCorrect {
			rec.CorrectCount = 1
			rec.Streak = 1
		} else {
			rec.IncorrectCount = 1
		}
		return rec, Outcome{Correct: wasCorrect, NewSign: true}
	}
}

// SessionStats are the running totals shown at the end of a flashcard session.
type SessionStats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	NewSigns  int `json:"newSigns"`
	Mastered  int `json:"mastered"`
}

// Record folds an answer outcome into the totals.
func (s *SessionStats) Record(o Outcome) {
	if o.Correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
	if o.NewSign {
		s.NewSigns++
	}
	if o.NewlyMastered {
		s.Mastered++
	}
}

// Answered is the number of answers recorded so far.
func (s SessionStats) Answered() int {
	return s.Correct + s.Incorrect
}

// Accuracy is the rounded percentage of correct answers, 0 when nothing was answered.
func (s SessionStats) Accuracy() int {
	return Percent(s.Correct, s.Answered())
}
