// Package redis - BlobStore поверх Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Store хранит документы строковыми значениями с общим префиксом ключей.
type Store struct {
	rdb    *goredis.Client
	prefix string
	logger *zap.Logger
}

// NewStore подключается к Redis по адресу addr и проверяет соединение.
func NewStore(ctx context.Context, addr, prefix string, logger *zap.Logger) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis store: missing address")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	s := NewWithClient(rdb, prefix, logger)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}
	s.logger.Info("Подключение к Redis установлено", zap.String("addr", addr))
	return s, nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(rdb *goredis.Client, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, prefix: prefix, logger: logger}
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get возвращает документ. redis.Nil означает отсутствие ключа.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis store: get %s: %w", key, err)
	}
	return blob, true, nil
}

// Put записывает документ без срока жизни.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), blob, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %s: %w", key, err)
	}
	return nil
}

// Ping проверяет соединение.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close закрывает клиент.
func (s *Store) Close() error {
	return s.rdb.Close()
}
