package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"signs-study-service/internal/domain"
	"signs-study-service/internal/mastery"
)

// minutesPerLesson is the reading-time estimate per lesson.
const minutesPerLesson = 8

// ChapterCard is one topic row in the chapter list.
type ChapterCard struct {
	Topic            domain.Topic `json:"topic"`
	TotalLessons     int          `json:"totalLessons"`
	CompletedLessons int          `json:"completedLessons"`
	LastAccessed     *time.Time   `json:"lastAccessed,omitempty"`
	LastAccessedText string       `json:"lastAccessedText,omitempty"`
	IsCompleted      bool         `json:"isCompleted"`
	IsStarted        bool         `json:"isStarted"`
	EstimatedMinutes int          `json:"estimatedMinutes"`
	Percent          int          `json:"percent"`
}

// ChapterTracker records topic visits and builds the chapter list.
type ChapterTracker struct {
	progress ProgressStore
	catalog  CatalogRepository
	now      func() time.Time
	newID    func() string
}

func NewChapterTracker(p Persistence) *ChapterTracker {
	return &ChapterTracker{
		progress: p.Progress,
		catalog:  p.Catalog,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock overrides the time source; used by tests.
func (t *ChapterTracker) WithClock(now func() time.Time) *ChapterTracker {
	t.now = now
	return t
}

// Touch marks a topic as visited. It only refreshes LastAccessed and never
// changes CompletedLessons. Failures are logged and swallowed.
func (t *ChapterTracker) Touch(ctx context.Context, userID string, topicID int64) {
	if t.progress == nil {
		log.Printf("touch chapter user=%s topic=%d: %v", userID, topicID, domain.ErrNotInitialized)
		return
	}
	existing, err := t.progress.GetChapterProgress(ctx, userID, topicID)
	if err != nil {
		log.Printf("touch chapter user=%s topic=%d: %v", userID, topicID, err)
		return
	}

	var rec domain.ChapterProgress
	switch prev := existing.(type) {
	case domain.Found[domain.ChapterProgress]:
		rec = prev.Record
		rec.LastAccessed = t.now()
	default:
		rec = domain.ChapterProgress{
			ID:               t.newID(),
			UserID:           userID,
			TopicID:          topicID,
			CompletedLessons: 0,
			LastAccessed:     t.now(),
		}
	}
	if err := t.progress.UpsertChapterProgress(ctx, rec); err != nil {
		log.Printf("touch chapter user=%s topic=%d: %v", userID, topicID, err)
	}
}

// Overview builds a card per topic in topic order. A topic whose progress
// cannot be read falls back to zero progress.
func (t *ChapterTracker) Overview(ctx context.Context, userID string) []ChapterCard {
	if t.catalog == nil {
		log.Printf("chapter overview: %v", domain.ErrNotInitialized)
		return nil
	}
	catalog, err := t.catalog.GetCatalog(ctx)
	if err != nil {
		log.Printf("chapter overview: %v", err)
		return nil
	}

	now := t.now()
	cards := make([]ChapterCard, 0, len(catalog.Topics))
	for _, topic := range sortedTopics(catalog.Topics) {
		total := len(catalog.LessonsForTopic(topic.ID))
		card := ChapterCard{
			Topic:            topic,
			TotalLessons:     total,
			EstimatedMinutes: total * minutesPerLesson,
		}
		if rec, ok := t.chapterProgress(ctx, userID, topic.ID); ok {
			last := rec.LastAccessed
			card.CompletedLessons = rec.CompletedLessons
			card.LastAccessed = &last
			card.LastAccessedText = FormatLastAccessed(last, now)
		}
		card.IsCompleted = total > 0 && card.CompletedLessons == total
		card.IsStarted = card.CompletedLessons > 0
		card.Percent = mastery.Percent(card.CompletedLessons, total)
		cards = append(cards, card)
	}
	return cards
}

func (t *ChapterTracker) chapterProgress(ctx context.Context, userID string, topicID int64) (domain.ChapterProgress, bool) {
	if t.progress == nil {
		return domain.ChapterProgress{}, false
	}
	l, err := t.progress.GetChapterProgress(ctx, userID, topicID)
	if err != nil {
		log.Printf("chapter progress user=%s topic=%d: %v", userID, topicID, err)
		return domain.ChapterProgress{}, false
	}
	return domain.Get(l)
}

// FormatLastAccessed renders a visit time relative to now.
func FormatLastAccessed(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	diff := now.Sub(at)
	if diff < 0 {
		// a visit stamped by a device whose clock runs ahead
		diff = 0
	}
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))
	switch {
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	case days < 7:
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	default:
		return at.Format("2006-01-02")
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func sortedTopics(topics []domain.Topic) []domain.Topic {
	out := append([]domain.Topic(nil), topics...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
