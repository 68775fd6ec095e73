package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v4/pgxpool"

	"signs-study-service/internal/domain"
)

// CatalogLoader reads the reference content tables into one Catalog.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var c domain.Catalog
	steps := []struct {
		name string
		run  func(context.Context, *domain.Catalog) error
	}{
		{"categories", l.loadCategories},
		{"signs", l.loadSigns},
		{"topics", l.loadTopics},
		{"lessons", l.loadLessons},
		{"quizzes", l.loadQuizzes},
		{"mock tests", l.loadMockTests},
	}
	for _, step := range steps {
		if err := step.run(ctx, &c); err != nil {
			return domain.Catalog{}, fmt.Errorf("load %s: %w: %v", step.name, domain.ErrQueryFailed, err)
		}
	}
	return c, nil
}

func (l *CatalogLoader) loadCategories(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `SELECT id, key, title, COALESCE(icon, '') FROM sign_categories ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Key, &cat.Title, &cat.Icon); err != nil {
			return err
		}
		c.Categories = append(c.Categories, cat)
	}
	return rows.Err()
}

func (l *CatalogLoader) loadSigns(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `
		SELECT id, category_id, title, COALESCE(description, ''), COALESCE(image_url, '')
		FROM signs ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.Sign
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Title, &s.Description, &s.ImageRef); err != nil {
			return err
		}
		c.Signs = append(c.Signs, s)
	}
	return rows.Err()
}

func (l *CatalogLoader) loadTopics(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `SELECT id, title, "order" FROM study_topics ORDER BY "order", id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.Order); err != nil {
			return err
		}
		c.Topics = append(c.Topics, t)
	}
	return rows.Err()
}

func (l *CatalogLoader) loadLessons(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `
		SELECT id, topic_id, title, COALESCE(content, ''), "order"
		FROM study_lessons ORDER BY topic_id, "order", id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ls domain.Lesson
		if err := rows.Scan(&ls.ID, &ls.TopicID, &ls.Title, &ls.Content, &ls.Order); err != nil {
			return err
		}
		c.Lessons = append(c.Lessons, ls)
	}
	return rows.Err()
}

// loadQuizzes groups lesson_quizzes by topic (chapter tests) and by lesson
// (mini quizzes). A row may feed both.
func (l *CatalogLoader) loadQuizzes(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `
		SELECT q.id, COALESCE(q.topic_id, 0), COALESCE(q.lesson_id, 0), q.question_text,
		       o.option_text, o.is_correct
		FROM lesson_quizzes q
		JOIN quiz_options o ON o.quiz_id = q.id
		ORDER BY q.id, o.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type quizRow struct {
		topicID, lessonID int64
		builder           questionBuilder
	}
	var quizzes []*quizRow
	byID := map[int64]*quizRow{}
	for rows.Next() {
		var (
			id, topicID, lessonID int64
			prompt, text          string
			correct               bool
		)
		if err := rows.Scan(&id, &topicID, &lessonID, &prompt, &text, &correct); err != nil {
			return err
		}
		q, ok := byID[id]
		if !ok {
			q = &quizRow{topicID: topicID, lessonID: lessonID, builder: questionBuilder{id: id, prompt: prompt}}
			byID[id] = q
			quizzes = append(quizzes, q)
		}
		q.builder.add(text, correct)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.TopicQuizzes = map[int64][]domain.QuizQuestion{}
	c.LessonQuizzes = map[int64][]domain.QuizQuestion{}
	for _, q := range quizzes {
		question := q.builder.build()
		if q.topicID != 0 {
			c.TopicQuizzes[q.topicID] = append(c.TopicQuizzes[q.topicID], question)
		}
		if q.lessonID != 0 {
			c.LessonQuizzes[q.lessonID] = append(c.LessonQuizzes[q.lessonID], question)
		}
	}
	return nil
}

func (l *CatalogLoader) loadMockTests(ctx context.Context, c *domain.Catalog) error {
	rows, err := l.pool.Query(ctx, `
		SELECT t.id, t.title, COALESCE(t.description, ''), q.id, q.question_text, o.option_text, o.is_correct
		FROM mock_tests t
		JOIN mock_test_questions q ON q.mock_test_id = t.id
		JOIN mock_test_options o ON o.question_id = q.id
		ORDER BY t.id, q.id, o.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	tests := map[int64]*domain.MockTest{}
	questions := map[int64]*questionBuilder{}
	var testOrder []int64
	questionOrder := map[int64][]int64{}
	for rows.Next() {
		var (
			testID, questionID int64
			title, desc        string
			prompt, text       string
			correct            bool
		)
		if err := rows.Scan(&testID, &title, &desc, &questionID, &prompt, &text, &correct); err != nil {
			return err
		}
		if _, ok := tests[testID]; !ok {
			tests[testID] = &domain.MockTest{ID: testID, Title: title, Description: desc}
			testOrder = append(testOrder, testID)
		}
		b, ok := questions[questionID]
		if !ok {
			b = &questionBuilder{id: questionID, prompt: prompt}
			questions[questionID] = b
			questionOrder[testID] = append(questionOrder[testID], questionID)
		}
		b.add(text, correct)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Slice(testOrder, func(i, j int) bool { return testOrder[i] < testOrder[j] })
	for _, id := range testOrder {
		test := tests[id]
		for _, qid := range questionOrder[id] {
			test.Questions = append(test.Questions, questions[qid].build())
		}
		c.MockTests = append(c.MockTests, *test)
	}
	return nil
}

// questionBuilder accumulates joined option rows for one question.
type questionBuilder struct {
	id      int64
	prompt  string
	options []string
	correct []bool
}

func (b *questionBuilder) add(text string, correct bool) {
	b.options = append(b.options, text)
	b.correct = append(b.correct, correct)
}

func (b *questionBuilder) build() domain.QuizQuestion {
	return domain.QuizQuestion{
		ID:            b.id,
		Prompt:        b.prompt,
		Options:       b.options,
		CorrectOption: CorrectIndex(b.correct),
	}
}

// CorrectIndex picks the first option flagged correct, or 0 when none is.
func CorrectIndex(flags []bool) int {
	for i, ok := range flags {
		if ok {
			return i
		}
	}
	return 0
}
