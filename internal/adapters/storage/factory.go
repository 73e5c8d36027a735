package storage

import (
	"context"
	"fmt"

	"property_portal_backend/platform/config"
)

// New builds the Backend selected by the configured driver.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.GetStorageDriver() {
	case config.StorageDriverMinIO:
		var s *MinIOStore
		s, err = NewMinIOStore(cfg)
		backend = s
	case config.StorageDriverS3:
		var s *S3Store
		s, err = NewS3Store(ctx, cfg)
		backend = s
	case config.StorageDriverLocal:
		var s *LocalStore
		s, err = NewLocalStore(cfg)
		backend = s
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.GetStorageDriver())
	}

	if err != nil {
		return nil, err
	}
	return backend, nil
}
