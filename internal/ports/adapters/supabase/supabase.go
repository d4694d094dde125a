package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/forPelevin/vodclip/internal/storage"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// placeholder is the object Supabase Studio writes to materialise an empty folder.
const placeholder = ".emptyFolderPlaceholder"

// objectStore is the slice of the storage-go client this adapter uses.
type objectStore interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	ListFiles(bucketId string, queryPath string, options storage_go.FileSearchOptions) ([]storage_go.FileObject, error)
	GetPublicUrl(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// Adapter disseminates clips into a Supabase Storage bucket under date folders.
type Adapter struct {
	store   objectStore
	bucket  string
	folders *storage.FolderCache
	logger  zerolog.Logger
}

func New(logger zerolog.Logger, url, key, bucket string) (*Adapter, error) {
	if url == "" || key == "" || bucket == "" {
		return nil, fmt.Errorf("%w: supabase url, key and bucket are required", types.ErrConfig)
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return newWithStore(logger, client.Storage, bucket), nil
}

func newWithStore(logger zerolog.Logger, store objectStore, bucket string) *Adapter {
	return &Adapter{
		store:   store,
		bucket:  bucket,
		folders: storage.NewFolderCache(),
		logger:  logger.With().Str("component", "supabase-storage").Logger(),
	}
}

func (a *Adapter) Upload(ctx context.Context, localPath, displayName, folderKey string) (types.UploadResult, error) {
	folder, err := a.folders.Resolve(ctx, folderKey, a.lookup, a.create)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("resolve folder %s: %w", folderKey, err)
	}
	if err := ctx.Err(); err != nil {
		return types.UploadResult{}, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return types.UploadResult{}, err
	}
	defer f.Close()

	objectPath := path.Join(folder, uuid.NewString()[:8]+"-"+sanitize(displayName))
	contentType := "video/mp4"
	upsert := false
	resp, err := a.store.UploadFile(a.bucket, objectPath, f, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("supabase upload %s: %w", objectPath, err)
	}

	id := resp.Key
	if id == "" {
		id = a.bucket + "/" + objectPath
	}
	url := a.store.GetPublicUrl(a.bucket, objectPath).SignedURL
	a.logger.Debug().Str("object", objectPath).Str("url", url).Msg("clip uploaded")
	return types.UploadResult{StorageID: id, StorageURL: url}, nil
}

func (a *Adapter) lookup(_ context.Context, key string) (string, bool, error) {
	objs, err := a.store.ListFiles(a.bucket, "", storage_go.FileSearchOptions{Limit: 1000})
	if err != nil {
		return "", false, fmt.Errorf("list bucket %s: %w", a.bucket, err)
	}
	for _, o := range objs {
		if o.Name == key {
			return key, true, nil
		}
	}
	return "", false, nil
}

func (a *Adapter) create(_ context.Context, key string) (string, error) {
	_, err := a.store.UploadFile(a.bucket, path.Join(key, placeholder), bytes.NewReader(nil))
	if err != nil && !isDuplicate(err) {
		return "", fmt.Errorf("create folder %s: %w", key, err)
	}
	a.logger.Info().Str("folder", key).Msg("storage folder created")
	return key, nil
}

func isDuplicate(err error) bool {
	var msg string
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg += e.Error()
	}
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists")
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}
