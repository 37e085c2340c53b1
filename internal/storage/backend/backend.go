// Package backend выбирает реализацию storage.BlobStore по конфигурации.
package backend

import (
	"context"
	"fmt"

	"github.com/Totarae/batchshortener/internal/config"
	"github.com/Totarae/batchshortener/internal/database"
	"github.com/Totarae/batchshortener/internal/storage"
	"github.com/Totarae/batchshortener/internal/storage/file"
	"github.com/Totarae/batchshortener/internal/storage/memory"
	"github.com/Totarae/batchshortener/internal/storage/postgres"
	redisstore "github.com/Totarae/batchshortener/internal/storage/redis"
	"go.uber.org/zap"
)

var (
	_ storage.BlobStore = (*memory.Store)(nil)
	_ storage.BlobStore = (*file.Store)(nil)
	_ storage.BlobStore = (*redisstore.Store)(nil)
	_ storage.BlobStore = (*postgres.Store)(nil)
)

// Open открывает хранилище согласно cfg.Mode.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.BlobStore, error) {
	switch cfg.Mode {
	case config.ModeDatabase:
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(cfg.DatabaseDSN, logger); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Используется хранилище PostgreSQL")
		return postgres.NewStore(db), nil

	case config.ModeRedis:
		store, err := redisstore.NewStore(ctx, cfg.RedisAddress, cfg.RedisKeyPrefix, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Используется хранилище Redis", zap.String("addr", cfg.RedisAddress))
		return store, nil

	case config.ModeFile:
		store, err := file.NewStore(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Используется файловое хранилище", zap.String("path", cfg.FileStoragePath))
		return store, nil

	case config.ModeMemory, "":
		logger.Info("Используется хранилище в памяти")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}
