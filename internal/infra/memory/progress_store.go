package memory

import (
	"context"
	"sort"
	"sync"

	"signs-study-service/internal/domain"
)

type signKey struct {
	userID string
	signID int64
}

type chapterKey struct {
	userID  string
	topicID int64
}

// ProgressStore keeps learner progress in process memory. It is the default
// when no database is configured; data is lost on restart.
type ProgressStore struct {
	mu       sync.RWMutex
	signs    map[signKey]domain.SignProgress
	chapters map[chapterKey]domain.ChapterProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		signs:    make(map[signKey]domain.SignProgress),
		chapters: make(map[chapterKey]domain.ChapterProgress),
	}
}

func (s *ProgressStore) ListSignProgress(ctx context.Context, userID string) ([]domain.SignProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SignProgress
	for k, rec := range s.signs {
		if k.userID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignID < out[j].SignID })
	return out, nil
}

func (s *ProgressStore) GetSignProgress(ctx context.Context, userID string, signID int64) (domain.Lookup[domain.SignProgress], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.signs[signKey{userID, signID}]
	return domain.FoundOrAbsent(rec, ok), nil
}

func (s *ProgressStore) UpsertSignProgress(ctx context.Context, rec domain.SignProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signs[signKey{rec.UserID, rec.SignID}] = rec
	return nil
}

func (s *ProgressStore) GetChapterProgress(ctx context.Context, userID string, topicID int64) (domain.Lookup[domain.ChapterProgress], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.chapters[chapterKey{userID, topicID}]
	return domain.FoundOrAbsent(rec, ok), nil
}

func (s *ProgressStore) UpsertChapterProgress(ctx context.Context, rec domain.ChapterProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapters[chapterKey{rec.UserID, rec.TopicID}] = rec
	return nil
}
