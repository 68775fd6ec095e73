package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"signs-study-service/internal/domain"
	"signs-study-service/internal/mastery"
	"signs-study-service/internal/practice"
)

// StudyConfig holds the tunable study rules.
type StudyConfig struct {
	PracticeLimit   int
	Distractors     int
	MockPassCorrect int
	PassPercent     int
}

// DefaultStudyConfig mirrors the rules of the printed driver's exam.
func DefaultStudyConfig() StudyConfig {
	return StudyConfig{
		PracticeLimit:   practice.DefaultLimit,
		Distractors:     practice.DefaultDistractors,
		MockPassCorrect: 32,
		PassPercent:     80,
	}
}

// ProgressOverview is the signs dashboard for one learner.
type ProgressOverview struct {
	UserID            string             `json:"userId"`
	Global            mastery.Counts     `json:"global"`
	CompletionPercent int                `json:"completionPercent"`
	Categories        []CategoryProgress `json:"categories"`
	Mastered          []domain.Sign      `json:"mastered"`
	Learning          []domain.Sign      `json:"learning"`
}

// CategoryProgress is one row of the category list.
type CategoryProgress struct {
	Category domain.Category `json:"category"`
	Total    int             `json:"total"`
	Mastered int             `json:"mastered"`
	Percent  int             `json:"percent"`
}

// StudyService contains the flashcard, practice and exam use cases.
type StudyService struct {
	progress ProgressStore
	catalog  CatalogRepository
	sessions SessionRepository
	cfg      StudyConfig
	rnd      practice.Rand
	now      func() time.Time
	newID    func() string
}

func NewStudyService(p Persistence, cfg StudyConfig, rnd practice.Rand) *StudyService {
	if rnd == nil {
		rnd = practice.NewSharedRand()
	}
	return &StudyService{
		progress: p.Progress,
		catalog:  p.Catalog,
		sessions: p.Sessions,
		cfg:      cfg,
		rnd:      rnd,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock overrides the time source; used by tests.
func (s *StudyService) WithClock(now func() time.Time) *StudyService {
	s.now = now
	return s
}

// RecordAnswer applies one flashcard answer to the learner's stored progress.
// A failed write still reports the computed outcome alongside the error.
func (s *StudyService) RecordAnswer(ctx context.Context, userID string, signID int64, correct bool) (mastery.Outcome, error) {
	outcome, _, err := s.recordAnswer(ctx, userID, signID, correct)
	return outcome, err
}

// recordAnswer reports counted=false when the existing record could not be
// read; such answers are left out of session statistics.
func (s *StudyService) recordAnswer(ctx context.Context, userID string, signID int64, correct bool) (mastery.Outcome, bool, error) {
	if s.progress == nil {
		return mastery.Outcome{}, false, domain.ErrNotInitialized
	}
	existing, err := s.progress.GetSignProgress(ctx, userID, signID)
	if err != nil {
		return mastery.Outcome{}, false, err
	}
	next, outcome := mastery.ApplyAnswer(existing, userID, signID, correct, s.now())
	if next.ID == "" {
		next.ID = s.newID()
	}
	if err := s.progress.UpsertSignProgress(ctx, next); err != nil {
		return outcome, true, err
	}
	return outcome, true, nil
}

// Overview aggregates the learner's sign progress. Failed reads degrade to
// empty data rather than an error.
func (s *StudyService) Overview(ctx context.Context, userID string) ProgressOverview {
	catalog := s.loadCatalog(ctx)
	index := s.loadProgress(ctx, userID)

	agg := mastery.Aggregate(catalog.Signs, index)
	out := ProgressOverview{
		UserID:            userID,
		Global:            agg.Global,
		CompletionPercent: agg.Global.CompletionPercent(),
		Mastered:          mastery.MasteredSigns(catalog.Signs, index),
		Learning:          mastery.LearningSigns(catalog.Signs, index),
	}
	for _, c := range catalog.Categories {
		counts, ok := agg.PerCategory[c.ID]
		if !ok {
			counts = mastery.CategoryCounts{Total: len(catalog.SignsInCategory(c.ID))}
		}
		out.Categories = append(out.Categories, CategoryProgress{
			Category: c,
			Total:    counts.Total,
			Mastered: counts.Mastered,
			Percent:  counts.Percent(),
		})
	}
	return out
}

// QuickPractice returns the prioritized practice set for a learner.
func (s *StudyService) QuickPractice(ctx context.Context, userID string) []domain.Sign {
	catalog := s.loadCatalog(ctx)
	index := s.loadProgress(ctx, userID)
	return practice.SelectPracticeSet(catalog.Signs, index, s.cfg.PracticeLimit, s.rnd)
}

// SearchCategory filters a category's signs by title.
func (s *StudyService) SearchCategory(ctx context.Context, categoryID int64, query string) ([]domain.Sign, error) {
	catalog := s.loadCatalog(ctx)
	if !hasCategory(catalog, categoryID) {
		return nil, domain.ErrCategoryNotFound
	}
	return mastery.SearchSigns(catalog.SignsInCategory(categoryID), query), nil
}

// StartFlashcards opens a flashcard session over every sign of a category.
func (s *StudyService) StartFlashcards(ctx context.Context, userID string, categoryID int64) (*Session, error) {
	catalog := s.loadCatalog(ctx)
	if !hasCategory(catalog, categoryID) {
		return nil, domain.ErrCategoryNotFound
	}
	return s.startFlashcardSession(userID, KindFlashcards, catalog.SignsInCategory(categoryID))
}

// StartQuickPractice opens a flashcard session over the adaptive practice set.
func (s *StudyService) StartQuickPractice(ctx context.Context, userID string) (*Session, error) {
	return s.startFlashcardSession(userID, KindPractice, s.QuickPractice(ctx, userID))
}

// StartChapterTest opens a test over all quiz questions of a topic.
func (s *StudyService) StartChapterTest(ctx context.Context, userID string, topicID int64) (*Session, error) {
	catalog := s.loadCatalog(ctx)
	questions, ok := catalog.TopicQuizzes[topicID]
	if !ok && !hasTopic(catalog, topicID) {
		return nil, domain.ErrTopicNotFound
	}
	return s.startFixedSession(userID, KindChapterTest, questions, PassRule{MinPercent: s.cfg.PassPercent})
}

// StartMiniQuiz opens the short quiz attached to a lesson.
func (s *StudyService) StartMiniQuiz(ctx context.Context, userID string, lessonID int64) (*Session, error) {
	catalog := s.loadCatalog(ctx)
	if _, ok := domain.Get(catalog.Lesson(lessonID)); !ok {
		return nil, domain.ErrLessonNotFound
	}
	return s.startFixedSession(userID, KindMiniQuiz, catalog.LessonQuizzes[lessonID], PassRule{MinPercent: s.cfg.PassPercent})
}

// StartMockExam opens a full mock exam.
func (s *StudyService) StartMockExam(ctx context.Context, userID string, testID int64) (*Session, error) {
	catalog := s.loadCatalog(ctx)
	test, ok := domain.Get(catalog.MockTest(testID))
	if !ok {
		return nil, domain.ErrMockTestNotFound
	}
	return s.startFixedSession(userID, KindMockExam, test.Questions, PassRule{MinCorrect: s.cfg.MockPassCorrect})
}

// SubmitAnswer answers the current question of a session. For flashcard
// kinds the answer is also persisted; a persistence failure is logged and
// the session still advances. An answer whose stored record could not be
// read is left out of the session statistics, as is one whose ctx was
// cancelled before the write returned.
func (s *StudyService) SubmitAnswer(ctx context.Context, sessionID string, option int) (AnswerFeedback, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return AnswerFeedback{}, domain.ErrSessionNotFound
	}
	feedback, question, err := session.Answer(option)
	if err != nil {
		return AnswerFeedback{}, err
	}
	if !session.Kind().TracksMastery() {
		return feedback, nil
	}

	outcome, counted, err := s.recordAnswer(ctx, session.UserID(), question.SignID, feedback.Correct)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return feedback, ctxErr
	}
	if err != nil {
		log.Printf("save progress user=%s sign=%d: %v", session.UserID(), question.SignID, err)
	}
	if counted {
		session.RecordOutcome(outcome)
	}
	return feedback, nil
}

// Retry resets a session to its first question.
func (s *StudyService) Retry(_ context.Context, sessionID string) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	session.Retry()
	return session.Snapshot(), nil
}

// Result scores a completed session.
func (s *StudyService) Result(_ context.Context, sessionID string) (Result, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Result{}, domain.ErrSessionNotFound
	}
	return session.Score()
}

// End drops a session.
func (s *StudyService) End(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *StudyService) startFlashcardSession(userID string, kind Kind, cards []domain.Sign) (*Session, error) {
	questions := practice.Generate(cards, s.cfg.Distractors, s.rnd)
	if len(questions) == 0 {
		return nil, domain.ErrEmptySession
	}
	session := newSessionWithClock(s.newID(), userID, kind, questions, PassRule{MinPercent: s.cfg.PassPercent}, s.now)
	session.regenerate = func() []domain.QuizQuestion {
		return practice.Generate(cards, s.cfg.Distractors, s.rnd)
	}
	s.sessions.Put(session)
	return session, nil
}

func (s *StudyService) startFixedSession(userID string, kind Kind, questions []domain.QuizQuestion, rule PassRule) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptySession
	}
	session := newSessionWithClock(s.newID(), userID, kind, questions, rule, s.now)
	s.sessions.Put(session)
	return session, nil
}

func (s *StudyService) loadCatalog(ctx context.Context) domain.Catalog {
	if s.catalog == nil {
		log.Printf("load catalog: %v", domain.ErrNotInitialized)
		return domain.Catalog{}
	}
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		log.Printf("load catalog: %v", err)
		return domain.Catalog{}
	}
	return catalog
}

func (s *StudyService) loadProgress(ctx context.Context, userID string) mastery.ProgressIndex {
	if s.progress == nil {
		log.Printf("load progress user=%s: %v", userID, domain.ErrNotInitialized)
		return mastery.ProgressIndex{}
	}
	records, err := s.progress.ListSignProgress(ctx, userID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("load progress user=%s: %v", userID, err)
		}
		return mastery.ProgressIndex{}
	}
	return mastery.IndexProgress(records)
}

func hasCategory(c domain.Catalog, id int64) bool {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func hasTopic(c domain.Catalog, id int64) bool {
	for _, t := range c.Topics {
		if t.ID == id {
			return true
		}
	}
	return false
}
