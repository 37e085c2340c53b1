// Package storage описывает долговременное хранилище именованных документов.
package storage

import (
	"context"
	"errors"
)

// ErrCorrupt - хранилище прочитано, но его содержимое повреждено.
var ErrCorrupt = errors.New("storage: corrupt data")

//go:generate mockgen -destination=mocks/blobstore.go -package=mocks github.com/Totarae/batchshortener/internal/storage BlobStore

// BlobStore хранит по строковому ключу произвольный документ.
type BlobStore interface {
	// Get возвращает документ. found == false, если ключа нет.
	Get(ctx context.Context, key string) (blob []byte, found bool, err error)
	// Put полностью заменяет документ по ключу.
	Put(ctx context.Context, key string, blob []byte) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы.
	Close() error
}
