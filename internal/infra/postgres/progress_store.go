package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"signs-study-service/internal/domain"
)

// ProgressStore persists learner progress in the sign_progress and
// chapter_progress tables. Upserts are last-write-wins on the natural key.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

const signProgressColumns = `id, user_id, sign_id, correct_count, incorrect_count, streak, mastered, last_reviewed`

func (s *ProgressStore) ListSignProgress(ctx context.Context, userID string) ([]domain.SignProgress, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+signProgressColumns+` FROM sign_progress WHERE user_id=$1 ORDER BY sign_id`, userID)
	if err != nil {
		return nil, queryFailed("list sign progress", err)
	}
	defer rows.Close()

	var out []domain.SignProgress
	for rows.Next() {
		rec, err := scanSignProgress(rows)
		if err != nil {
			return nil, queryFailed("scan sign progress", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("list sign progress", err)
	}
	return out, nil
}

func (s *ProgressStore) GetSignProgress(ctx context.Context, userID string, signID int64) (domain.Lookup[domain.SignProgress], error) {
	row := s.pool.QueryRow(ctx, `SELECT `+signProgressColumns+` FROM sign_progress WHERE user_id=$1 AND sign_id=$2`, userID, signID)
	rec, err := scanSignProgress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Absent[domain.SignProgress]{}, nil
	}
	if err != nil {
		return nil, queryFailed("get sign progress", err)
	}
	return domain.Found[domain.SignProgress]{Record: rec}, nil
}

func (s *ProgressStore) UpsertSignProgress(ctx context.Context, rec domain.SignProgress) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sign_progress (`+signProgressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, sign_id) DO UPDATE SET
			correct_count = EXCLUDED.correct_count,
			incorrect_count = EXCLUDED.incorrect_count,
			streak = EXCLUDED.streak,
			mastered = EXCLUDED.mastered,
			last_reviewed = EXCLUDED.last_reviewed`,
		rec.ID, rec.UserID, rec.SignID, rec.CorrectCount, rec.IncorrectCount, rec.Streak, rec.Mastered, rec.LastReviewed)
	if err != nil {
		return queryFailed("upsert sign progress", err)
	}
	return nil
}

func (s *ProgressStore) GetChapterProgress(ctx context.Context, userID string, topicID int64) (domain.Lookup[domain.ChapterProgress], error) {
	var rec domain.ChapterProgress
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, topic_id, completed_lessons, last_accessed
		FROM chapter_progress WHERE user_id=$1 AND topic_id=$2`, userID, topicID).
		Scan(&rec.ID, &rec.UserID, &rec.TopicID, &rec.CompletedLessons, &rec.LastAccessed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Absent[domain.ChapterProgress]{}, nil
	}
	if err != nil {
		return nil, queryFailed("get chapter progress", err)
	}
	return domain.Found[domain.ChapterProgress]{Record: rec}, nil
}

func (s *ProgressStore) UpsertChapterProgress(ctx context.Context, rec domain.ChapterProgress) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chapter_progress (id, user_id, topic_id, completed_lessons, last_accessed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, topic_id) DO UPDATE SET
			completed_lessons = EXCLUDED.completed_lessons,
			last_accessed = EXCLUDED.last_accessed`,
		rec.ID, rec.UserID, rec.TopicID, rec.CompletedLessons, rec.LastAccessed)
	if err != nil {
		return queryFailed("upsert chapter progress", err)
	}
	return nil
}

func scanSignProgress(row pgx.Row) (domain.SignProgress, error) {
	var rec domain.SignProgress
	err := row.Scan(&rec.ID, &rec.UserID, &rec.SignID, &rec.CorrectCount, &rec.IncorrectCount,
		&rec.Streak, &rec.Mastered, &rec.LastReviewed)
	return rec, err
}

func queryFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrQueryFailed, err)
}
