package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDateFolderKey(t *testing.T) {
	got := DateFolderKey(time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC))
	if got != "2026-10-16" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestFolderCache_LookupBeforeCreate(t *testing.T) {
	c := NewFolderCache()
	var lookups, creates int
	lookup := func(_ context.Context, key string) (string, bool, error) {
		lookups++
		return "existing-" + key, true, nil
	}
	create := func(_ context.Context, key string) (string, error) {
		creates++
		return "new-" + key, nil
	}
	for i := 0; i < 3; i++ {
		id, err := c.Resolve(context.Background(), "2026-10-16", lookup, create)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if id != "existing-2026-10-16" {
			t.Fatalf("unexpected id %q", id)
		}
	}
	if lookups != 1 || creates != 0 {
		t.Fatalf("expected 1 lookup and 0 creates, got %d and %d", lookups, creates)
	}
}

func TestFolderCache_CreatesOnceUnderConcurrency(t *testing.T) {
	c := NewFolderCache()
	var mu sync.Mutex
	creates := 0
	lookup := func(context.Context, string) (string, bool, error) { return "", false, nil }
	create := func(_ context.Context, key string) (string, error) {
		mu.Lock()
		creates++
		mu.Unlock()
		return "id-" + key, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve(context.Background(), "k", lookup, create); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
	}
	wg.Wait()
	if creates != 1 {
		t.Fatalf("expected exactly one create, got %d", creates)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cached folder, got %d", c.Len())
	}
}

func TestFolderCache_ErrorsAreNotCached(t *testing.T) {
	c := NewFolderCache()
	fail := true
	lookup := func(context.Context, string) (string, bool, error) {
		if fail {
			return "", false, errors.New("list failed")
		}
		return "ok", true, nil
	}
	create := func(context.Context, string) (string, error) { return "", nil }

	if _, err := c.Resolve(context.Background(), "k", lookup, create); err == nil {
		t.Fatalf("expected error")
	}
	fail = false
	id, err := c.Resolve(context.Background(), "k", lookup, create)
	if err != nil || id != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", id, err)
	}
}
