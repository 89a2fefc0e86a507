package storage

import "context"

// StoredAsset identifies an uploaded file in the backing store.
type StoredAsset struct {
	URL       string
	StorageID string
}

// Storage persists uploaded listing images.
type Storage interface {
	Store(ctx context.Context, name string, data []byte) (StoredAsset, error)
	Delete(ctx context.Context, storageID string) error
}
