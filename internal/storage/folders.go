package storage

import (
	"context"
	"sync"
	"time"
)

// DateFolderKey is the folder naming convention for disseminated clips.
func DateFolderKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// FolderCache remembers resolved destination folders per key. Each storage
// adapter owns one; there is no package-level cache.
type FolderCache struct {
	mu      sync.Mutex
	folders map[string]string
}

func NewFolderCache() *FolderCache {
	return &FolderCache{folders: map[string]string{}}
}

// Lookup finds an existing folder id for key. ok is false when none exists.
type Lookup func(ctx context.Context, key string) (id string, ok bool, err error)

// Create makes a new folder for key and returns its id.
type Create func(ctx context.Context, key string) (string, error)

// Resolve returns the folder id for key: cached, then looked up, then created.
// Concurrent callers for the same cache are serialised so a folder is created once.
func (c *FolderCache) Resolve(ctx context.Context, key string, lookup Lookup, create Create) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.folders[key]; ok {
		return id, nil
	}
	id, ok, err := lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		if id, err = create(ctx, key); err != nil {
			return "", err
		}
	}
	c.folders[key] = id
	return id, nil
}

func (c *FolderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.folders)
}
