package app

import (
	"context"

	"signs-study-service/internal/domain"
)

// GuideService serves lesson navigation over the catalog.
type GuideService struct {
	catalog CatalogRepository
}

func NewGuideService(p Persistence) *GuideService {
	return &GuideService{catalog: p.Catalog}
}

// Lessons lists a topic's lessons in reading order.
func (g *GuideService) Lessons(ctx context.Context, topicID int64) ([]domain.Lesson, error) {
	catalog, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	if !hasTopic(catalog, topicID) {
		return nil, domain.ErrTopicNotFound
	}
	return catalog.LessonsForTopic(topicID), nil
}

// NextLesson returns the lesson after lessonID in the same topic, or Absent
// when lessonID is the last one.
func (g *GuideService) NextLesson(ctx context.Context, lessonID int64) (domain.Lookup[domain.Lesson], error) {
	catalog, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	lesson, ok := domain.Get(catalog.Lesson(lessonID))
	if !ok {
		return nil, domain.ErrLessonNotFound
	}
	ordered := catalog.LessonsForTopic(lesson.TopicID)
	for i, l := range ordered {
		if l.ID == lessonID && i+1 < len(ordered) {
			return domain.Found[domain.Lesson]{Record: ordered[i+1]}, nil
		}
	}
	return domain.Absent[domain.Lesson]{}, nil
}

// MiniQuizVisible reports whether a lesson offers its mini quiz. The two
// introductory lessons of the first topic have none.
func MiniQuizVisible(l domain.Lesson) bool {
	return !(l.TopicID == 1 && l.Order <= 2)
}

func (g *GuideService) load(ctx context.Context) (domain.Catalog, error) {
	if g.catalog == nil {
		return domain.Catalog{}, domain.ErrNotInitialized
	}
	return g.catalog.GetCatalog(ctx)
}
