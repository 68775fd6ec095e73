package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signs-study-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	c, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
	if len(c.Signs) != 2 {
		t.Fatalf("expected 2 signs, got %d", len(c.Signs))
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background())
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryPropagatesLoaderError(t *testing.T) {
	boom := errors.New("boom")
	repo := NewCatalogRepository(failingLoader{err: boom}, time.Minute)
	if _, err := repo.GetCatalog(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.CatalogLoader.LoadCatalog(ctx)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type failingLoader struct{ err error }

func (f failingLoader) LoadCatalog(context.Context) (domain.Catalog, error) {
	return domain.Catalog{}, f.err
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{{ID: 1, Key: "warning", Title: "Warning"}},
		Signs: []domain.Sign{
			{ID: 1, CategoryID: 1, Title: "Stop"},
			{ID: 2, CategoryID: 1, Title: "Yield"},
		},
	}
}
