package memstore

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

func testStore(cfg Config) *Store {
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testDoc(pages int) *domain.Document {
	doc := &domain.Document{TotalPages: pages}
	for i := 1; i <= pages; i++ {
		doc.Pages = append(doc.Pages, domain.Page{Number: i})
	}
	return doc
}

func TestCreateAndGet(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})

	sess, err := store.Create(context.Background(), testDoc(3), "deck.pptx", ".pptx", domain.LocaleArabic)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.CurrentPage != 1 {
		t.Fatalf("expected cursor at page 1, got %d", sess.CurrentPage)
	}

	got, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "deck.pptx" || got.Language != domain.LocaleArabic {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})
	sess, _ := store.Create(context.Background(), testDoc(3), "a", ".pdf", domain.LocaleEnglish)

	got, _ := store.Get(context.Background(), sess.ID)
	got.CurrentPage = 99

	fresh, _ := store.Get(context.Background(), sess.ID)
	if fresh.CurrentPage != 1 {
		t.Fatalf("expected cursor writes through copies to be lost, got %d", fresh.CurrentPage)
	}
}

func TestUpdateCursorBounds(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})
	sess, _ := store.Create(context.Background(), testDoc(4), "a", ".pdf", domain.LocaleEnglish)

	if err := store.UpdateCursor(context.Background(), sess.ID, 4); err != nil {
		t.Fatalf("update cursor: %v", err)
	}
	got, _ := store.Get(context.Background(), sess.ID)
	if got.CurrentPage != 4 {
		t.Fatalf("expected cursor 4, got %d", got.CurrentPage)
	}

	for _, page := range []int{0, 5} {
		if err := store.UpdateCursor(context.Background(), sess.ID, page); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("page %d: expected invalid input, got %v", page, err)
		}
	}
}

func TestMoveCursorResolvesAgainstLiveCursor(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})
	sess, _ := store.Create(context.Background(), testDoc(10), "a", ".pdf", domain.LocaleEnglish)

	// Each increment must see the cursor left by the previous one,
	// regardless of interleaving.
	const moves = 8
	var wg sync.WaitGroup
	for i := 0; i < moves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.MoveCursor(context.Background(), sess.ID, func(current, total int) (int, bool) {
				if current >= total {
					return 0, false
				}
				return current + 1, true
			})
			if err != nil {
				t.Errorf("move cursor: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(context.Background(), sess.ID)
	if got.CurrentPage != 1+moves {
		t.Fatalf("expected cursor %d after %d moves, got %d", 1+moves, moves, got.CurrentPage)
	}
}

func TestMoveCursorDeclinedLeavesCursor(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})
	sess, _ := store.Create(context.Background(), testDoc(3), "a", ".pdf", domain.LocaleEnglish)

	page, err := store.MoveCursor(context.Background(), sess.ID, func(current, total int) (int, bool) {
		return 0, false
	})
	if err != nil {
		t.Fatalf("move cursor: %v", err)
	}
	if page != 1 {
		t.Fatalf("expected declined move to report current page 1, got %d", page)
	}

	if _, err := store.MoveCursor(context.Background(), "missing", func(current, total int) (int, bool) {
		return current, true
	}); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	store := testStore(Config{MaxSessions: 2, IdleTimeout: time.Hour})

	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	evicted := map[string]int{}
	store.OnEvict(func(reason string) { evicted[reason]++ })

	first, _ := store.Create(context.Background(), testDoc(1), "first", ".pdf", domain.LocaleEnglish)
	clock = clock.Add(time.Minute)
	second, _ := store.Create(context.Background(), testDoc(1), "second", ".pdf", domain.LocaleEnglish)

	// Touch the first so the second becomes stalest.
	clock = clock.Add(time.Minute)
	if err := store.Touch(context.Background(), first.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	clock = clock.Add(time.Minute)
	third, _ := store.Create(context.Background(), testDoc(1), "third", ".pdf", domain.LocaleEnglish)

	if store.Len() != 2 {
		t.Fatalf("expected capacity held at 2, got %d", store.Len())
	}
	if _, err := store.Get(context.Background(), second.ID); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected stalest session evicted, got %v", err)
	}
	if _, err := store.Get(context.Background(), first.ID); err != nil {
		t.Fatalf("expected touched session kept: %v", err)
	}
	if _, err := store.Get(context.Background(), third.ID); err != nil {
		t.Fatalf("expected new session kept: %v", err)
	}
	if evicted["capacity"] != 1 {
		t.Fatalf("expected one capacity eviction, got %v", evicted)
	}
}

func TestLazyExpiry(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: 30 * time.Minute})

	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	evicted := map[string]int{}
	store.OnEvict(func(reason string) { evicted[reason]++ })

	sess, _ := store.Create(context.Background(), testDoc(1), "a", ".pdf", domain.LocaleEnglish)

	clock = clock.Add(29 * time.Minute)
	if _, err := store.Get(context.Background(), sess.ID); err != nil {
		t.Fatalf("expected session alive within timeout: %v", err)
	}

	// The access above refreshed last access; idle past the timeout now.
	clock = clock.Add(31 * time.Minute)
	if _, err := store.Get(context.Background(), sess.ID); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session gone, got %v", err)
	}
	if evicted["expired"] != 1 {
		t.Fatalf("expected one expiry eviction, got %v", evicted)
	}
	if store.Len() != 0 {
		t.Fatalf("expected store drained, got %d", store.Len())
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: 10 * time.Minute})

	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Create(context.Background(), testDoc(1), "old", ".pdf", domain.LocaleEnglish)
	clock = clock.Add(5 * time.Minute)
	fresh, _ := store.Create(context.Background(), testDoc(1), "fresh", ".pdf", domain.LocaleEnglish)

	clock = clock.Add(6 * time.Minute)
	store.sweep()

	if store.Len() != 1 {
		t.Fatalf("expected one survivor, got %d", store.Len())
	}
	if _, err := store.Get(context.Background(), fresh.ID); err != nil {
		t.Fatalf("expected fresh session kept: %v", err)
	}
}

func TestListSkipsExpired(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: 10 * time.Minute})

	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Create(context.Background(), testDoc(2), "old", ".pdf", domain.LocaleEnglish)
	clock = clock.Add(5 * time.Minute)
	store.Create(context.Background(), testDoc(2), "fresh", ".pptx", domain.LocaleArabic)
	clock = clock.Add(6 * time.Minute)

	list := store.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("expected 1 live session listed, got %d", len(list))
	}
	if list[0].Filename != "fresh" {
		t.Fatalf("unexpected survivor %+v", list[0])
	}
}

func TestDelete(t *testing.T) {
	store := testStore(Config{MaxSessions: 10, IdleTimeout: time.Hour})
	sess, _ := store.Create(context.Background(), testDoc(1), "a", ".pdf", domain.LocaleEnglish)

	if !store.Delete(context.Background(), sess.ID) {
		t.Fatal("expected delete to succeed")
	}
	if store.Delete(context.Background(), sess.ID) {
		t.Fatal("expected second delete to report missing")
	}
}
