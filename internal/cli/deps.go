package cli

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"qrmenu/internal/config"
	"qrmenu/internal/database"
	"qrmenu/internal/storage"
)

// openDB connects to PostgreSQL with the configured pool and applies
// pending migrations.
func openDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(cfg.DSN(), database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openImageStore selects the S3 backend when it is configured and the
// upload directory otherwise.
func openImageStore(cfg *config.Config) (*storage.ImageStore, error) {
	if cfg.UseS3() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		if s3 != nil {
			slog.Info("image storage: s3", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
			return storage.NewImageStore(s3), nil
		}
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	slog.Info("image storage: disk", "dir", disk.Root())
	return storage.NewImageStore(disk), nil
}
