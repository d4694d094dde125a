package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/forPelevin/vodclip/internal/storage"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/google/uuid"
)

// Adapter disseminates clips into a local directory tree: <root>/<YYYY-MM-DD>/<id>-<name>.
type Adapter struct {
	root    string
	folders *storage.FolderCache
}

func New(root string) *Adapter {
	return &Adapter{root: root, folders: storage.NewFolderCache()}
}

func (a *Adapter) Upload(ctx context.Context, localPath, displayName, folderKey string) (types.UploadResult, error) {
	dir, err := a.folders.Resolve(ctx, folderKey, a.lookup, a.create)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("resolve folder %s: %w", folderKey, err)
	}
	if err := ctx.Err(); err != nil {
		return types.UploadResult{}, err
	}

	id := uuid.NewString()
	dst := filepath.Join(dir, id[:8]+"-"+filepath.Base(displayName))
	if err := copyFile(localPath, dst); err != nil {
		return types.UploadResult{}, fmt.Errorf("copy %s: %w", displayName, err)
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		abs = dst
	}
	return types.UploadResult{StorageID: id, StorageURL: "file://" + filepath.ToSlash(abs)}, nil
}

func (a *Adapter) lookup(_ context.Context, key string) (string, bool, error) {
	dir := filepath.Join(a.root, key)
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		return dir, true, nil
	case err == nil:
		return "", false, fmt.Errorf("%s exists and is not a directory", dir)
	case os.IsNotExist(err):
		return "", false, nil
	default:
		return "", false, err
	}
}

func (a *Adapter) create(_ context.Context, key string) (string, error) {
	dir := filepath.Join(a.root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
