package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores uploaded assets on the local filesystem under a single
// directory served as static files.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Store(ctx context.Context, name string, data []byte) (StoredAsset, error) {
	filename := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	if err := os.WriteFile(filepath.Join(l.dir, filename), data, 0o644); err != nil {
		return StoredAsset{}, err
	}

	return StoredAsset{
		URL:       l.baseURL + "/" + filename,
		StorageID: filename,
	}, nil
}

func (l *Local) Delete(ctx context.Context, storageID string) error {
	if storageID == "" || storageID != filepath.Base(storageID) {
		return fmt.Errorf("invalid storage id %q", storageID)
	}
	return os.Remove(filepath.Join(l.dir, storageID))
}
