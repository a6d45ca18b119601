package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore[string](time.Minute)

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.Set(ctx, "lineups:55", "4-3-3")
	got, ok := s.Get(ctx, "lineups:55")
	if !ok || got != "4-3-3" {
		t.Fatalf("expected hit with 4-3-3, got %q ok=%v", got, ok)
	}

	s.Delete(ctx, "lineups:55")
	if _, ok := s.Get(ctx, "lineups:55"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore[int](10 * time.Millisecond)

	s.Set(ctx, "fixtures", 7)
	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get(ctx, "fixtures"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore[int](time.Minute)

	s.Set(ctx, "lineups:1", 1)
	s.Set(ctx, "lineups:2", 2)
	s.Set(ctx, "fixtures:1", 3)

	s.DeletePrefix(ctx, "lineups:")

	if _, ok := s.Get(ctx, "lineups:1"); ok {
		t.Fatal("expected lineups:1 to be dropped")
	}
	if _, ok := s.Get(ctx, "lineups:2"); ok {
		t.Fatal("expected lineups:2 to be dropped")
	}
	if _, ok := s.Get(ctx, "fixtures:1"); !ok {
		t.Fatal("expected fixtures:1 to survive")
	}
}

func TestStoreGetOrLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore[string](time.Minute)

	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(ctx, "squad", loader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "loaded" {
			t.Fatalf("expected loaded, got %q", got)
		}
	}

	if loads != 1 {
		t.Fatalf("expected single load, got %d", loads)
	}
}

func TestStoreGetOrLoadPropagatesError(t *testing.T) {
	ctx := context.Background()
	s := NewStore[string](time.Minute)

	wantErr := errors.New("provider down")
	_, err := s.GetOrLoad(ctx, "squad", func(context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error, got %v", err)
	}

	// Failed loads must not poison the cache.
	if _, ok := s.Get(ctx, "squad"); ok {
		t.Fatal("expected no cached value after failed load")
	}
}
