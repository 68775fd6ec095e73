package app

import (
	"context"

	"signs-study-service/internal/domain"
)

// ProgressStore persists per-user progress (in-memory, Redis, Postgres, SQLite).
type ProgressStore interface {
	ListSignProgress(ctx context.Context, userID string) ([]domain.SignProgress, error)
	GetSignProgress(ctx context.Context, userID string, signID int64) (domain.Lookup[domain.SignProgress], error)
	UpsertSignProgress(ctx context.Context, rec domain.SignProgress) error
	GetChapterProgress(ctx context.Context, userID string, topicID int64) (domain.Lookup[domain.ChapterProgress], error)
	UpsertChapterProgress(ctx context.Context, rec domain.ChapterProgress) error
}

// CatalogRepository loads reference content (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// SessionRepository abstracts where live study sessions are kept.
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// Persistence is the handle built once at startup and passed to every service.
type Persistence struct {
	Progress ProgressStore
	Catalog  CatalogRepository
	Sessions SessionRepository
}
