package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v4/pgxpool"

	"signs-study-service/internal/importer"
)

// SignWriter upserts imported signs, creating categories on first sight.
type SignWriter struct {
	pool *pgxpool.Pool

	mu         sync.Mutex
	categories map[string]int64
}

func NewSignWriter(pool *pgxpool.Pool) *SignWriter {
	return &SignWriter{pool: pool, categories: make(map[string]int64)}
}

func (w *SignWriter) WriteSign(ctx context.Context, row importer.Row) (bool, error) {
	categoryID, err := w.categoryID(ctx, row)
	if err != nil {
		return false, err
	}
	var inserted bool
	err = w.pool.QueryRow(ctx, `
		INSERT INTO signs (category_id, title, description, image_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (category_id, title) DO UPDATE SET
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url
		RETURNING (xmax = 0)`,
		categoryID, row.Title, row.Description, row.ImageURL).Scan(&inserted)
	if err != nil {
		return false, queryFailed("write sign", err)
	}
	return inserted, nil
}

func (w *SignWriter) categoryID(ctx context.Context, row importer.Row) (int64, error) {
	key := row.CategoryKey()
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.categories[key]; ok {
		return id, nil
	}
	var id int64
	err := w.pool.QueryRow(ctx, `
		INSERT INTO sign_categories (key, title) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		RETURNING id`, key, row.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("category %q: %w", row.Category, queryFailed("upsert category", err))
	}
	w.categories[key] = id
	return id, nil
}

var _ importer.Writer = (*SignWriter)(nil)
