package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signs-study-service/internal/app"
	"signs-study-service/internal/domain"
	"signs-study-service/internal/infra/memory"
)

func TestNextLesson(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(testCatalog()), time.Minute)
	guide := app.NewGuideService(app.Persistence{Catalog: catalog})

	next, err := guide.NextLesson(ctx, 11)
	require.NoError(t, err)
	l, ok := domain.Get(next)
	require.True(t, ok)
	assert.Equal(t, int64(12), l.ID)

	last, err := guide.NextLesson(ctx, 13)
	require.NoError(t, err)
	assert.IsType(t, domain.Absent[domain.Lesson]{}, last)

	_, err = guide.NextLesson(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)

	lessons, err := guide.Lessons(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, int64(13), lessons[2].ID)
}

func TestMiniQuizVisible(t *testing.T) {
	cases := []struct {
		lesson domain.Lesson
		want   bool
	}{
		{domain.Lesson{TopicID: 1, Order: 1}, false},
		{domain.Lesson{TopicID: 1, Order: 2}, false},
		{domain.Lesson{TopicID: 1, Order: 3}, true},
		{domain.Lesson{TopicID: 2, Order: 1}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, app.MiniQuizVisible(tc.lesson), "lesson %+v", tc.lesson)
	}
}
