package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"signs-study-service/internal/domain"
	"signs-study-service/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, client := newMiniredis(t)
	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(client, loader, time.Minute)

	got, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected catalog cached in redis")
	}

	// A second repository sharing the same redis must not hit the loader.
	other := NewCatalogRepository(client, loader, time.Minute)
	cached, err := other.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if len(cached.Signs) != len(got.Signs) || cached.LessonQuizzes[5][0].Options[1] != "Right" {
		t.Fatalf("cached catalog differs: %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.count())
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(catalogKey) {
		t.Fatalf("expected key removed")
	}
}

type countingLoader struct {
	memory.CatalogLoader
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

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{{ID: 1, Key: "regulatory", Title: "Regulatory"}},
		Signs: []domain.Sign{
			{ID: 1, CategoryID: 1, Title: "Stop"},
			{ID: 2, CategoryID: 1, Title: "Yield"},
		},
		LessonQuizzes: map[int64][]domain.QuizQuestion{
			5: {{Prompt: "Who goes first?", Options: []string{"Left", "Right"}, CorrectOption: 1}},
		},
	}
}
