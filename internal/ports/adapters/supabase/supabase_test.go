package supabase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	storage_go "github.com/supabase-community/storage-go"
)

type fakeStore struct {
	mu       sync.Mutex
	existing []string
	uploads  []string
	lists    int
	failOn   string
}

func (f *fakeStore) UploadFile(bucketId string, relativePath string, data io.Reader, _ ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(relativePath, f.failOn) {
		return storage_go.FileUploadResponse{}, errors.New("quota exceeded")
	}
	if _, err := io.ReadAll(data); err != nil {
		return storage_go.FileUploadResponse{}, err
	}
	f.uploads = append(f.uploads, relativePath)
	return storage_go.FileUploadResponse{Key: bucketId + "/" + relativePath}, nil
}

func (f *fakeStore) ListFiles(_ string, _ string, _ storage_go.FileSearchOptions) ([]storage_go.FileObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []storage_go.FileObject
	for _, n := range f.existing {
		out = append(out, storage_go.FileObject{Name: n})
	}
	return out, nil
}

func (f *fakeStore) GetPublicUrl(bucketId string, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://cdn.example/" + bucketId + "/" + filePath}
}

func writeClip(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return p
}

func TestUpload_CreatesFolderOnce(t *testing.T) {
	store := &fakeStore{}
	a := newWithStore(zerolog.Nop(), store, "clips")
	src := writeClip(t)

	for i := 0; i < 2; i++ {
		res, err := a.Upload(context.Background(), src, "My Clip.mp4", "2026-10-16")
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if !strings.HasPrefix(res.StorageID, "clips/2026-10-16/") {
			t.Fatalf("unexpected storage id %q", res.StorageID)
		}
		if !strings.HasSuffix(res.StorageURL, "-My-Clip.mp4") {
			t.Fatalf("unexpected url %q", res.StorageURL)
		}
	}
	if store.lists != 1 {
		t.Fatalf("expected folder lookup once, got %d", store.lists)
	}
	placeholders := 0
	for _, u := range store.uploads {
		if strings.HasSuffix(u, placeholder) {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Fatalf("expected folder created once, got %d placeholder uploads", placeholders)
	}
}

func TestUpload_ReusesExistingFolder(t *testing.T) {
	store := &fakeStore{existing: []string{"2026-10-16"}}
	a := newWithStore(zerolog.Nop(), store, "clips")
	if _, err := a.Upload(context.Background(), writeClip(t), "a.mp4", "2026-10-16"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	for _, u := range store.uploads {
		if strings.HasSuffix(u, placeholder) {
			t.Fatalf("did not expect a folder to be created, uploads: %v", store.uploads)
		}
	}
}

func TestUpload_Error(t *testing.T) {
	store := &fakeStore{existing: []string{"2026-10-16"}, failOn: "bad"}
	a := newWithStore(zerolog.Nop(), store, "clips")
	_, err := a.Upload(context.Background(), writeClip(t), "bad.mp4", "2026-10-16")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(zerolog.Nop(), "", "key", "clips"); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("../we ird/na:me.mp4"); got != "na-me.mp4" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}
