package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signs-study-service/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestApplyAnswer_FirstAnswerCreatesRecord(t *testing.T) {
	rec, out := ApplyAnswer(domain.Absent[domain.SignProgress]{}, "u1", 7, true, t0)
	assert.Equal(t, domain.SignProgress{
		UserID: "u1", SignID: 7, CorrectCount: 1, Streak: 1, LastReviewed: t0,
	}, rec)
	assert.True(t, out.NewSign)
	assert.True(t, out.Correct)
	assert.False(t, out.NewlyMastered)

	rec, out = ApplyAnswer(nil, "u1", 7, false, t0)
	assert.Equal(t, 0, rec.CorrectCount)
	assert.Equal(t, 1, rec.IncorrectCount)
	assert.Equal(t, 0, rec.Streak)
	assert.True(t, out.NewSign)
}

func TestApplyAnswer_ThreeCorrectMasters(t *testing.T) {
	var lookup domain.Lookup[domain.SignProgress] = domain.Absent[domain.SignProgress]{}
	var rec domain.SignProgress
	var out Outcome
	for i := 0; i < 3; i++ {
		rec, out = ApplyAnswer(lookup, "u1", 1, true, t0.Add(time.Duration(i)*time.Minute))
		lookup = domain.Found[domain.SignProgress]{Record: rec}
	}
	assert.Equal(t, 3, rec.CorrectCount)
	assert.Equal(t, 0, rec.IncorrectCount)
	assert.Equal(t, 3, rec.Streak)
	assert.True(t, rec.Mastered)
	assert.True(t, out.NewlyMastered)
	assert.Equal(t, t0.Add(2*time.Minute), rec.LastReviewed)
}

func TestApplyAnswer_StreakAndMasteryProperties(t *testing.T) {
	answers := []bool{true, false, true, true, true, false, false, true, false, true}
	var lookup domain.Lookup[domain.SignProgress] = domain.Absent[domain.SignProgress]{}
	prevStreak := 0
	wasMastered := false
	for i, correct := range answers {
		rec, _ := ApplyAnswer(lookup, "u1", 1, correct, t0)
		if correct {
			require.Equal(t, prevStreak+1, rec.Streak, "answer %d", i)
		} else {
			require.Zero(t, rec.Streak, "answer %d", i)
		}
		if wasMastered {
			require.True(t, rec.Mastered, "mastery reverted at answer %d", i)
		}
		prevStreak = rec.Streak
		wasMastered = rec.Mastered
		lookup = domain.Found[domain.SignProgress]{Record: rec}
	}
	assert.True(t, wasMastered)
}

func TestApplyAnswer_AlreadyMasteredIsNotNewlyMastered(t *testing.T) {
	prev := domain.SignProgress{CorrectCount: 5, Streak: 4, Mastered: true}
	rec, out := ApplyAnswer(domain.Found[domain.SignProgress]{Record: prev}, "u1", 1, true, t0)
	assert.True(t, rec.Mastered)
	assert.False(t, out.NewlyMastered)
	assert.False(t, out.NewSign)
}

func TestSessionStats(t *testing.T) {
	var s SessionStats
	s.Record(Outcome{Correct: true, NewSign: true})
	s.Record(Outcome{Correct: false})
	s.Record(Outcome{Correct: true, NewlyMastered: true})

	assert.Equal(t, SessionStats{Correct: 2, Incorrect: 1, NewSigns: 1, Mastered: 1}, s)
	assert.Equal(t, 3, s.Answered())
	assert.Equal(t, 67, s.Accuracy())
	assert.Zero(t, SessionStats{}.Accuracy())
}
