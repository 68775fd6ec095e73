package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"signs-study-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sign_progress (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    sign_id         INTEGER NOT NULL,
    correct_count   INTEGER NOT NULL DEFAULT 0,
    incorrect_count INTEGER NOT NULL DEFAULT 0,
    streak          INTEGER NOT NULL DEFAULT 0,
    mastered        INTEGER NOT NULL DEFAULT 0,
    last_reviewed   INTEGER NOT NULL,
    UNIQUE (user_id, sign_id)
);
CREATE TABLE IF NOT EXISTS chapter_progress (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL,
    topic_id          INTEGER NOT NULL,
    completed_lessons INTEGER NOT NULL DEFAULT 0,
    last_accessed     INTEGER NOT NULL,
    UNIQUE (user_id, topic_id)
);`

// ProgressStore keeps learner progress in a local SQLite file, for
// single-user installs that run without a database server.
type ProgressStore struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn and creates the schema.
func Open(dsn string) (*ProgressStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	for _, p := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA synchronous = NORMAL"} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &ProgressStore{db: db}, nil
}

func (s *ProgressStore) Close() error {
	return s.db.Close()
}

type signRow struct {
	ID             string `db:"id"`
	UserID         string `db:"user_id"`
	SignID         int64  `db:"sign_id"`
	CorrectCount   int    `db:"correct_count"`
	IncorrectCount int    `db:"incorrect_count"`
	Streak         int    `db:"streak"`
	Mastered       bool   `db:"mastered"`
	LastReviewed   int64  `db:"last_reviewed"`
}

func (r signRow) record() domain.SignProgress {
	return domain.SignProgress{
		ID:             r.ID,
		UserID:         r.UserID,
		SignID:         r.SignID,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		Streak:         r.Streak,
		Mastered:       r.Mastered,
		LastReviewed:   time.Unix(0, r.LastReviewed).UTC(),
	}
}

type chapterRow struct {
	ID               string `db:"id"`
	UserID           string `db:"user_id"`
	TopicID          int64  `db:"topic_id"`
	CompletedLessons int    `db:"completed_lessons"`
	LastAccessed     int64  `db:"last_accessed"`
}

func (r chapterRow) record() domain.ChapterProgress {
	return domain.ChapterProgress{
		ID:               r.ID,
		UserID:           r.UserID,
		TopicID:          r.TopicID,
		CompletedLessons: r.CompletedLessons,
		LastAccessed:     time.Unix(0, r.LastAccessed).UTC(),
	}
}

func (s *ProgressStore) ListSignProgress(ctx context.Context, userID string) ([]domain.SignProgress, error) {
	var rows []signRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM sign_progress WHERE user_id = ? ORDER BY sign_id`, userID); err != nil {
		return nil, queryFailed("list sign progress", err)
	}
	out := make([]domain.SignProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *ProgressStore) GetSignProgress(ctx context.Context, userID string, signID int64) (domain.Lookup[domain.SignProgress], error) {
	var row signRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM sign_progress WHERE user_id = ? AND sign_id = ?`, userID, signID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Absent[domain.SignProgress]{}, nil
	}
	if err != nil {
		return nil, queryFailed("get sign progress", err)
	}
	return domain.Found[domain.SignProgress]{Record: row.record()}, nil
}

func (s *ProgressStore) UpsertSignProgress(ctx context.Context, rec domain.SignProgress) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sign_progress (id, user_id, sign_id, correct_count, incorrect_count, streak, mastered, last_reviewed)
		VALUES (:id, :user_id, :sign_id, :correct_count, :incorrect_count, :streak, :mastered, :last_reviewed)
		ON CONFLICT (user_id, sign_id) DO UPDATE SET
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count,
			streak = excluded.streak,
			mastered = excluded.mastered,
			last_reviewed = excluded.last_reviewed`,
		signRow{
			ID:             rec.ID,
			UserID:         rec.UserID,
			SignID:         rec.SignID,
			CorrectCount:   rec.CorrectCount,
			IncorrectCount: rec.IncorrectCount,
			Streak:         rec.Streak,
			Mastered:       rec.Mastered,
			LastReviewed:   rec.LastReviewed.UnixNano(),
		})
	if err != nil {
		return queryFailed("upsert sign progress", err)
	}
	return nil
}

func (s *ProgressStore) GetChapterProgress(ctx context.Context, userID string, topicID int64) (domain.Lookup[domain.ChapterProgress], error) {
	var row chapterRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM chapter_progress WHERE user_id = ? AND topic_id = ?`, userID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Absent[domain.ChapterProgress]{}, nil
	}
	if err != nil {
		return nil, queryFailed("get chapter progress", err)
	}
	return domain.Found[domain.ChapterProgress]{Record: row.record()}, nil
}

func (s *ProgressStore) UpsertChapterProgress(ctx context.Context, rec domain.ChapterProgress) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO chapter_progress (id, user_id, topic_id, completed_lessons, last_accessed)
		VALUES (:id, :user_id, :topic_id, :completed_lessons, :last_accessed)
		ON CONFLICT (user_id, topic_id) DO UPDATE SET
			completed_lessons = excluded.completed_lessons,
			last_accessed = excluded.last_accessed`,
		chapterRow{
			ID:               rec.ID,
			UserID:           rec.UserID,
			TopicID:          rec.TopicID,
			CompletedLessons: rec.CompletedLessons,
			LastAccessed:     rec.LastAccessed.UnixNano(),
		})
	if err != nil {
		return queryFailed("upsert chapter progress", err)
	}
	return nil
}

func queryFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrQueryFailed, err)
}
