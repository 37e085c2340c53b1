// Package file - BlobStore поверх одного JSON-файла.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Totarae/batchshortener/internal/storage"
	"go.uber.org/zap"
)

// Store хранит все документы в одном файле вида {"ключ": документ, ...}.
// Документы должны быть корректным JSON.
type Store struct {
	mutex  sync.Mutex
	path   string
	logger *zap.Logger
}

// NewStore создаёт хранилище. Файл создаётся при первой записи.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file store: create dir: %w", err)
		}
	}
	return &Store{path: path, logger: logger}, nil
}

// Get возвращает документ по ключу.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	docs, err := s.load()
	if err != nil {
		return nil, false, err
	}
	doc, ok := docs[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(doc), true, nil
}

// Put заменяет документ по ключу. Файл перезаписывается целиком через
// временный файл и rename.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(blob) {
		return fmt.Errorf("file store: document %q is not valid JSON", key)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	docs, err := s.load()
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return err
		}
		// Повреждённый файл заменяем новым содержимым
		s.logger.Warn("Повреждённый файл хранилища будет перезаписан", zap.String("path", s.path))
		docs = make(map[string]json.RawMessage)
	}
	docs[key] = json.RawMessage(blob)

	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	return s.writeAtomic(data)
}

// load читает файл целиком. Отсутствующий или пустой файл - пустой набор.
func (s *Store) load() (map[string]json.RawMessage, error) {
	docs := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return docs, nil // Файл ещё не создан, это не ошибка
		}
		return nil, fmt.Errorf("file store: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w: %v", s.path, storage.ErrCorrupt, err)
	}
	return docs, nil
}

func (s *Store) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}

// Ping проверяет, что каталог файла доступен.
func (s *Store) Ping(context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// Close ничего не делает: файл открывается только на время операции.
func (s *Store) Close() error {
	return nil
}
