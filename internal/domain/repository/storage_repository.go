package repository

import "context"

// StorageRepository publishes generated artifacts to remote object storage.
type StorageRepository interface {
	GetAccountID(ctx context.Context, profile string) (string, error)
	Upload(ctx context.Context, profile, bucket, key, localPath, contentType string) (string, error)
}
