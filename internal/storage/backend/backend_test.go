package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Totarae/batchshortener/internal/config"
	"github.com/Totarae/batchshortener/internal/storage/file"
	"github.com/Totarae/batchshortener/internal/storage/memory"
	redisstore "github.com/Totarae/batchshortener/internal/storage/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{Mode: config.ModeMemory}, logger)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("file", func(t *testing.T) {
		cfg := &config.Config{Mode: config.ModeFile, FileStoragePath: filepath.Join(t.TempDir(), "c.json")}
		store, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &file.Store{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Mode: config.ModeRedis, RedisAddress: mr.Addr(), RedisKeyPrefix: "s"}
		store, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &redisstore.Store{}, store)
	})

	t.Run("database with bad DSN", func(t *testing.T) {
		cfg := &config.Config{Mode: config.ModeDatabase, DatabaseDSN: "://bad"}
		_, err := Open(ctx, cfg, logger)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{Mode: "tape"}, logger)
		assert.Error(t, err)
	})
}
