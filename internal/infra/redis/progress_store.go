package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"signs-study-service/internal/domain"
)

// ProgressStore keeps learner progress in Redis hashes:
//
//	HSET progress:{userID}:signs    {signID}  {json SignProgress}
//	HSET progress:{userID}:chapters {topicID} {json ChapterProgress}
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) ListSignProgress(ctx context.Context, userID string) ([]domain.SignProgress, error) {
	fields, err := s.client.HGetAll(ctx, signsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sign progress: %w: %v", domain.ErrQueryFailed, err)
	}
	out := make([]domain.SignProgress, 0, len(fields))
	for field, raw := range fields {
		var rec domain.SignProgress
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode sign progress %s: %w", field, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignID < out[j].SignID })
	return out, nil
}

func (s *ProgressStore) GetSignProgress(ctx context.Context, userID string, signID int64) (domain.Lookup[domain.SignProgress], error) {
	var rec domain.SignProgress
	ok, err := s.hget(ctx, signsKey(userID), signID, &rec)
	if err != nil {
		return nil, fmt.Errorf("get sign progress: %w", err)
	}
	return domain.FoundOrAbsent(rec, ok), nil
}

func (s *ProgressStore) UpsertSignProgress(ctx context.Context, rec domain.SignProgress) error {
	if err := s.hset(ctx, signsKey(rec.UserID), rec.SignID, rec); err != nil {
		return fmt.Errorf("upsert sign progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) GetChapterProgress(ctx context.Context, userID string, topicID int64) (domain.Lookup[domain.ChapterProgress], error) {
	var rec domain.ChapterProgress
	ok, err := s.hget(ctx, chaptersKey(userID), topicID, &rec)
	if err != nil {
		return nil, fmt.Errorf("get chapter progress: %w", err)
	}
	return domain.FoundOrAbsent(rec, ok), nil
}

func (s *ProgressStore) UpsertChapterProgress(ctx context.Context, rec domain.ChapterProgress) error {
	if err := s.hset(ctx, chaptersKey(rec.UserID), rec.TopicID, rec); err != nil {
		return fmt.Errorf("upsert chapter progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) hget(ctx context.Context, key string, id int64, dst any) (bool, error) {
	raw, err := s.client.HGet(ctx, key, strconv.FormatInt(id, 10)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ProgressStore) hset(ctx context.Context, key string, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, key, strconv.FormatInt(id, 10), data).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	return nil
}

func signsKey(userID string) string {
	return "progress:" + userID + ":signs"
}

func chaptersKey(userID string) string {
	return "progress:" + userID + ":chapters"
}
