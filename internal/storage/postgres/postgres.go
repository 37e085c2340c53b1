// Package postgres - BlobStore поверх таблицы blobs в PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Totarae/batchshortener/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier - часть pgxpool.Pool, которой пользуется хранилище.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store хранит документы в таблице blobs.
type Store struct {
	q  Querier
	db database.DBInterface
}

// NewStore создаёт хранилище поверх подключения db.
func NewStore(db *database.DB) *Store {
	return &Store{q: db.Pool, db: db}
}

// NewWithQuerier собирает хранилище из произвольного Querier; db может быть nil.
func NewWithQuerier(q Querier, db database.DBInterface) *Store {
	return &Store{q: q, db: db}
}

// Get возвращает документ по ключу.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := s.q.QueryRow(ctx, `SELECT value FROM blobs WHERE key = $1`, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("database query error: %w", err)
	}
	return blob, true, nil
}

// Put вставляет или заменяет документ.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	query := `INSERT INTO blobs (key, value, updated_at)
              VALUES ($1, $2, now())
              ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := s.q.Exec(ctx, query, key, blob); err != nil {
		return fmt.Errorf("database upsert error: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы данных.
func (s *Store) Ping(ctx context.Context) error {
	if s.db != nil {
		return s.db.Ping(ctx)
	}
	_, err := s.q.Exec(ctx, "SELECT 1")
	return err
}

// Close закрывает подключение.
func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}
