package app

import (
	"sync"
	"time"

	"signs-study-service/internal/domain"
	"signs-study-service/internal/mastery"
)

// Kind identifies what a session is drilling.
type Kind string

const (
	KindFlashcards  Kind = "flashcards"
	KindPractice    Kind = "practice"
	KindChapterTest Kind = "chapter"
	KindMiniQuiz    Kind = "lesson"
	KindMockExam    Kind = "mock"
)

// TracksMastery reports whether answers in this kind update sign progress.
func (k Kind) TracksMastery() bool {
	return k == KindFlashcards || k == KindPractice
}

// PassRule decides pass/fail on completion. Zero fields are ignored.
type PassRule struct {
	MinCorrect int
	MinPercent int
}

func (r PassRule) passed(correct, percent int) bool {
	if r.MinCorrect > 0 && correct < r.MinCorrect {
		return false
	}
	if r.MinPercent > 0 && percent < r.MinPercent {
		return false
	}
	return true
}

// Phase is the coarse session state.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// noAnswer marks an unanswered question.
const noAnswer = -1

// AnswerFeedback is returned for every accepted answer.
type AnswerFeedback struct {
	Index         int  `json:"index"`
	Selected      int  `json:"selected"`
	Correct       bool `json:"correct"`
	CorrectOption int  `json:"correctOption"`
	Complete      bool `json:"complete"`
}

// ReviewItem is the per-question breakdown of a finished session.
type ReviewItem struct {
	Prompt        string `json:"prompt"`
	Selected      string `json:"selected,omitempty"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// Result summarizes a completed session.
type Result struct {
	SessionID  string                `json:"sessionId"`
	Kind       Kind                  `json:"kind"`
	Correct    int                   `json:"correct"`
	Total      int                   `json:"total"`
	Percentage int                   `json:"percentage"`
	Passed     bool                  `json:"passed"`
	Stats      *mastery.SessionStats `json:"stats,omitempty"`
	Review     []ReviewItem          `json:"review"`
}

// Snapshot is a read-only view of a session's state.
type Snapshot struct {
	ID           string                `json:"id"`
	Kind         Kind                  `json:"kind"`
	Phase        Phase                 `json:"phase"`
	CurrentIndex int                   `json:"currentIndex"`
	Questions    []domain.QuizQuestion `json:"questions"`
	Answers      []int                 `json:"answers"`
}

// Session is one flashcard run, quiz or exam: InProgress until the last
// question is answered, then Complete until Retry.
type Session struct {
	id         string
	userID     string
	kind       Kind
	rule       PassRule
	createdAt  time.Time
	regenerate func() []domain.QuizQuestion

	mu        sync.Mutex
	questions []domain.QuizQuestion
	answers   []int
	current   int
	complete  bool
	stats     mastery.SessionStats
}

// NewSession starts a session in InProgress(0, empty).
func NewSession(id, userID string, kind Kind, questions []domain.QuizQuestion, rule PassRule) *Session {
	return newSessionWithClock(id, userID, kind, questions, rule, time.Now)
}

func newSessionWithClock(id, userID string, kind Kind, questions []domain.QuizQuestion, rule PassRule, now func() time.Time) *Session {
	return &Session{
		id:        id,
		userID:    userID,
		kind:      kind,
		rule:      rule,
		createdAt: now(),
		questions: questions,
		answers:   blankAnswers(len(questions)),
	}
}

func blankAnswers(n int) []int {
	answers := make([]int, n)
	for i := range answers {
		answers[i] = noAnswer
	}
	return answers
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the learner the session belongs to.
func (s *Session) UserID() string { return s.userID }

// Kind returns the session kind.
func (s *Session) Kind() Kind { return s.kind }

// CreatedAt is when the session was started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Answer records the selected option for the current question and advances.
func (s *Session) Answer(option int) (AnswerFeedback, domain.QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return AnswerFeedback{}, domain.QuizQuestion{}, domain.ErrEmptySession
	}
	if s.complete {
		return AnswerFeedback{}, domain.QuizQuestion{}, domain.ErrSessionComplete
	}
	q := s.questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return AnswerFeedback{}, domain.QuizQuestion{}, domain.ErrInvalidOption
	}

	idx := s.current
	s.answers[idx] = option
	if idx+1 < len(s.questions) {
		s.current++
	} else {
		s.complete = true
	}
	return AnswerFeedback{
		Index:         idx,
		Selected:      option,
		Correct:       option == q.CorrectOption,
		CorrectOption: q.CorrectOption,
		Complete:      s.complete,
	}, q, nil
}

// RecordOutcome folds a persisted answer into the session statistics.
func (s *Session) RecordOutcome(o mastery.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Record(o)
}

// Retry resets to InProgress(0, empty). Flashcard sessions draw fresh options.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.regenerate != nil {
		if qs := s.regenerate(); len(qs) > 0 {
			s.questions = qs
		}
	}
	s.answers = blankAnswers(len(s.questions))
	s.current = 0
	s.complete = false
	s.stats = mastery.SessionStats{}
}

// Score is only available once the session is Complete.
func (s *Session) Score() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.complete {
		return Result{}, domain.ErrSessionInProgress
	}

	res := Result{SessionID: s.id, Kind: s.kind, Total: len(s.questions)}
	res.Review = make([]ReviewItem, 0, len(s.questions))
	for i, q := range s.questions {
		item := ReviewItem{Prompt: q.Prompt, CorrectAnswer: optionText(q, q.CorrectOption)}
		if a := s.answers[i]; a != noAnswer {
			item.Selected = optionText(q, a)
			item.Correct = a == q.CorrectOption
		}
		if item.Correct {
			res.Correct++
		}
		res.Review = append(res.Review, item)
	}
	res.Percentage = mastery.Percent(res.Correct, res.Total)

	if s.kind.TracksMastery() {
		stats := s.stats
		res.Stats = &stats
		res.Passed = s.rule.passed(stats.Correct, stats.Accuracy())
	} else {
		res.Passed = s.rule.passed(res.Correct, res.Percentage)
	}
	return res, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase := PhaseInProgress
	if s.complete {
		phase = PhaseComplete
	}
	return Snapshot{
		ID:           s.id,
		Kind:         s.kind,
		Phase:        phase,
		CurrentIndex: s.current,
		Questions:    append([]domain.QuizQuestion(nil), s.questions...),
		Answers:      append([]int(nil), s.answers...),
	}
}

func optionText(q domain.QuizQuestion, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}
