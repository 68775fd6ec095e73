package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"signs-study-service/internal/domain"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	store := NewProgressStore(client)
	reviewed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	missing, err := store.GetSignProgress(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if _, ok := missing.(domain.Absent[domain.SignProgress]); !ok {
		t.Fatalf("expected absent, got %+v", missing)
	}

	for _, id := range []int64{9, 7} {
		rec := domain.SignProgress{ID: "p", UserID: "u1", SignID: id, CorrectCount: 2, Streak: 2, LastReviewed: reviewed}
		if err := store.UpsertSignProgress(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if !mr.Exists("progress:u1:signs") {
		t.Fatalf("expected signs hash")
	}

	got, err := store.GetSignProgress(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	rec, ok := domain.Get(got)
	if !ok || rec.CorrectCount != 2 || !rec.LastReviewed.Equal(reviewed) {
		t.Fatalf("unexpected record %+v", rec)
	}

	list, err := store.ListSignProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].SignID != 7 || list[1].SignID != 9 {
		t.Fatalf("expected records sorted by sign, got %+v", list)
	}
	if other, _ := store.ListSignProgress(ctx, "u2"); len(other) != 0 {
		t.Fatalf("expected no records for other user, got %+v", other)
	}
}

func TestProgressStoreChapters(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniredis(t)
	store := NewProgressStore(client)

	rec := domain.ChapterProgress{ID: "c1", UserID: "u1", TopicID: 3, CompletedLessons: 1, LastAccessed: time.Unix(1700000000, 0).UTC()}
	if err := store.UpsertChapterProgress(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := store.GetChapterProgress(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found, ok := domain.Get(got); !ok || found.ID != "c1" || found.CompletedLessons != 1 {
		t.Fatalf("unexpected chapter %+v", got)
	}
}

func TestProgressStoreWrapsQueryErrors(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewProgressStore(client)
	mr.Close()

	if _, err := store.GetSignProgress(context.Background(), "u1", 1); !errors.Is(err, domain.ErrQueryFailed) {
		t.Fatalf("expected query failure, got %v", err)
	}
	if err := store.UpsertChapterProgress(context.Background(), domain.ChapterProgress{UserID: "u1", TopicID: 1}); !errors.Is(err, domain.ErrQueryFailed) {
		t.Fatalf("expected query failure, got %v", err)
	}
}
