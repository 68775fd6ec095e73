package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signs-study-service/internal/app"
	"signs-study-service/internal/domain"
	"signs-study-service/internal/infra/memory"
	"signs-study-service/internal/mastery"
	"signs-study-service/internal/practice"
)

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestFlashcardSessionPersistsMastery(t *testing.T) {
	ctx := context.Background()
	progress := memory.NewProgressStore()
	service, sessions := newTestService(progress)

	for round := 0; round < 3; round++ {
		session, err := service.StartFlashcards(ctx, "u1", 1)
		require.NoError(t, err)
		answerAllCorrect(t, service, session)
		sessions.Delete(session.ID())
	}

	records, err := progress.ListSignProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, 3, r.CorrectCount)
		assert.Zero(t, r.IncorrectCount)
		assert.Equal(t, 3, r.Streak)
		assert.True(t, r.Mastered)
		assert.True(t, r.LastReviewed.Equal(fixedNow))
		assert.NotEmpty(t, r.ID)
	}

	overview := service.Overview(ctx, "u1")
	assert.Equal(t, 4, overview.Global.Mastered)
	assert.Equal(t, 2, overview.Global.New)
	assert.Equal(t, 67, overview.CompletionPercent)
	require.Len(t, overview.Categories, 2)
	assert.Equal(t, 100, overview.Categories[0].Percent)
	assert.Equal(t, 0, overview.Categories[1].Percent)
}

func TestFlashcardStatsCountNewAndMastered(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(memory.NewProgressStore())

	session, err := service.StartFlashcards(ctx, "u1", 2)
	require.NoError(t, err)
	snap := session.Snapshot()
	wrong := (snap.Questions[0].CorrectOption + 1) % len(snap.Questions[0].Options)
	_, err = service.SubmitAnswer(ctx, session.ID(), wrong)
	require.NoError(t, err)
	_, err = service.SubmitAnswer(ctx, session.ID(), snap.Questions[1].CorrectOption)
	require.NoError(t, err)

	res, err := service.Result(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, mastery.SessionStats{Correct: 1, Incorrect: 1, NewSigns: 2}, *res.Stats)
	assert.False(t, res.Passed)
}

func TestUnreadableProgressLeavesStatsUntouched(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(brokenStore{})

	session, err := service.StartFlashcards(ctx, "u1", 2)
	require.NoError(t, err)
	answerAllCorrect(t, service, session)

	res, err := service.Result(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, mastery.SessionStats{}, *res.Stats)

	got := service.Overview(ctx, "u1")
	assert.Equal(t, 6, got.Global.New, "every sign is new when progress is unreadable")
}

func TestFailedWriteStillCountsOutcome(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(readOnlyStore{memory.NewProgressStore()})

	session, err := service.StartFlashcards(ctx, "u1", 2)
	require.NoError(t, err)
	answerAllCorrect(t, service, session)

	res, err := service.Result(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, mastery.SessionStats{Correct: 2, NewSigns: 2}, *res.Stats)

	outcome, err := service.RecordAnswer(ctx, "u1", 5, true)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, mastery.Outcome{Correct: true, NewSign: true}, outcome)
}

func TestCancelledAnswerIsDropped(t *testing.T) {
	service, _ := newTestService(memory.NewProgressStore())
	session, err := service.StartFlashcards(context.Background(), "u1", 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := session.Snapshot().Questions[0]
	_, err = service.SubmitAnswer(ctx, session.ID(), q.CorrectOption)
	require.ErrorIs(t, err, context.Canceled)

	_, err = service.SubmitAnswer(context.Background(), session.ID(), session.Snapshot().Questions[1].CorrectOption)
	require.NoError(t, err)
	res, err := service.Result(context.Background(), session.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Answered())
}

func TestQuickPracticePrefersUnseen(t *testing.T) {
	ctx := context.Background()
	progress := memory.NewProgressStore()
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, progress.UpsertSignProgress(ctx, domain.SignProgress{UserID: "u1", SignID: id, CorrectCount: 3, Streak: 3, Mastered: true}))
	}
	service, _ := newTestService(progress)

	set := service.QuickPractice(ctx, "u1")
	require.Len(t, set, 6)
	for i, s := range set[:3] {
		assert.Greater(t, s.ID, int64(3), "position %d: mastered sign ahead of unseen", i)
	}

	session, err := service.StartQuickPractice(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, app.KindPractice, session.Kind())
	assert.Len(t, session.Snapshot().Questions, 6)
}

func TestStartErrors(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(memory.NewProgressStore())

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"unknown category", func() error { _, err := service.StartFlashcards(ctx, "u1", 99); return err }, domain.ErrCategoryNotFound},
		{"unknown topic", func() error { _, err := service.StartChapterTest(ctx, "u1", 99); return err }, domain.ErrTopicNotFound},
		{"topic without quiz", func() error { _, err := service.StartChapterTest(ctx, "u1", 2); return err }, domain.ErrEmptySession},
		{"unknown lesson", func() error { _, err := service.StartMiniQuiz(ctx, "u1", 99); return err }, domain.ErrLessonNotFound},
		{"unknown exam", func() error { _, err := service.StartMockExam(ctx, "u1", 99); return err }, domain.ErrMockTestNotFound},
		{"unknown session", func() error { _, err := service.SubmitAnswer(ctx, "nope", 0); return err }, domain.ErrSessionNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), tc.want)
		})
	}
}

func TestMockExamThroughService(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(memory.NewProgressStore())

	session, err := service.StartMockExam(ctx, "u1", 1)
	require.NoError(t, err)
	for i, q := range session.Snapshot().Questions {
		opt := q.CorrectOption
		if i >= 32 {
			opt = (opt + 1) % len(q.Options)
		}
		_, err := service.SubmitAnswer(ctx, session.ID(), opt)
		require.NoError(t, err, "answer %d", i)
	}
	res, err := service.Result(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, 80, res.Percentage)
	assert.True(t, res.Passed)
	assert.Nil(t, res.Stats)

	snap, err := service.Retry(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, app.PhaseInProgress, snap.Phase)
	assert.Equal(t, 0, snap.CurrentIndex)
}

func TestSearchCategory(t *testing.T) {
	service, _ := newTestService(memory.NewProgressStore())
	got, err := service.SearchCategory(context.Background(), 1, "STOP")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Stop", got[0].Title)
}

func answerAllCorrect(t *testing.T, service *app.StudyService, session *app.Session) {
	t.Helper()
	for _, q := range session.Snapshot().Questions {
		fb, err := service.SubmitAnswer(context.Background(), session.ID(), q.CorrectOption)
		require.NoError(t, err)
		require.True(t, fb.Correct)
	}
}

func newTestService(progress app.ProgressStore) (*app.StudyService, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(testCatalog()), 5*time.Minute)
	service := app.NewStudyService(app.Persistence{
		Progress: progress,
		Catalog:  catalog,
		Sessions: sessions,
	}, app.DefaultStudyConfig(), practice.NewRand(1))
	return service.WithClock(func() time.Time { return fixedNow }), sessions
}

func testCatalog() domain.Catalog {
	exam := domain.MockTest{ID: 1, Title: "Mock Test 1"}
	for i := 0; i < 40; i++ {
		exam.Questions = append(exam.Questions, domain.QuizQuestion{
			ID:            int64(i + 1),
			Prompt:        fmt.Sprintf("Exam question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: i % 4,
		})
	}
	return domain.Catalog{
		Categories: []domain.Category{
			{ID: 1, Key: "regulatory", Title: "Regulatory"},
			{ID: 2, Key: "warning", Title: "Warning"},
		},
		Signs: []domain.Sign{
			{ID: 1, CategoryID: 1, Title: "Stop", Description: "Come to a full stop"},
			{ID: 2, CategoryID: 1, Title: "Yield", Description: "Give way"},
			{ID: 3, CategoryID: 1, Title: "No Entry", Description: "Do not enter"},
			{ID: 4, CategoryID: 1, Title: "Speed Limit", Description: "Maximum speed"},
			{ID: 5, CategoryID: 2, Title: "Slippery Road", Description: "Road may be slippery"},
			{ID: 6, CategoryID: 2, Title: "Deer Crossing", Description: "Watch for deer"},
		},
		Topics: []domain.Topic{
			{ID: 1, Title: "Introduction", Order: 1},
			{ID: 2, Title: "Road Signs", Order: 2},
		},
		Lessons: []domain.Lesson{
			{ID: 11, TopicID: 1, Title: "Welcome", Order: 1},
			{ID: 13, TopicID: 1, Title: "Right of Way", Order: 3},
			{ID: 12, TopicID: 1, Title: "Licences", Order: 2},
			{ID: 21, TopicID: 2, Title: "Shapes", Order: 1},
		},
		LessonQuizzes: map[int64][]domain.QuizQuestion{
			13: {{Prompt: "Who goes first?", Options: []string{"Left", "Right"}, CorrectOption: 1}},
		},
		TopicQuizzes: map[int64][]domain.QuizQuestion{
			1: {{Prompt: "Minimum age?", Options: []string{"16", "18"}, CorrectOption: 0}},
		},
		MockTests: []domain.MockTest{exam},
	}
}

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) ListSignProgress(context.Context, string) ([]domain.SignProgress, error) {
	return nil, errStoreDown
}
func (brokenStore) GetSignProgress(context.Context, string, int64) (domain.Lookup[domain.SignProgress], error) {
	return nil, errStoreDown
}
func (brokenStore) UpsertSignProgress(context.Context, domain.SignProgress) error {
	return errStoreDown
}
func (brokenStore) GetChapterProgress(context.Context, string, int64) (domain.Lookup[domain.ChapterProgress], error) {
	return nil, errStoreDown
}
func (brokenStore) UpsertChapterProgress(context.Context, domain.ChapterProgress) error {
	return errStoreDown
}

// readOnlyStore serves reads but rejects sign progress writes.
type readOnlyStore struct {
	*memory.ProgressStore
}

func (readOnlyStore) UpsertSignProgress(context.Context, domain.SignProgress) error {
	return errStoreDown
}
