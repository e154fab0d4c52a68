// internal/app/bootstrap/storage.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// buildBlobStore creates the photo blob store from app config.
// "local" serves files from disk under StorageLocalPath; "s3" uses
// the configured bucket.
func buildBlobStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local", "":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		logger.Info("using local photo storage",
			zap.String("path", appCfg.StorageLocalPath))
		return store, nil
	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
			Prefix: appCfg.StorageS3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		logger.Info("using S3 photo storage",
			zap.String("bucket", appCfg.StorageS3Bucket))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}
}
