// Package memory - BlobStore в памяти процесса.
package memory

import (
	"context"
	"sync"
)

// Store хранит документы в map. Потокобезопасен.
type Store struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failPut error
	puts    int
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get возвращает копию документа.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Put сохраняет копию документа. Если задан FailPut, возвращает эту ошибку
// и ничего не меняет.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPut != nil {
		return s.failPut
	}
	s.data[key] = append([]byte(nil), blob...)
	s.puts++
	return nil
}

// FailPut заставляет последующие Put возвращать err. nil снимает сбой.
func (s *Store) FailPut(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut = err
}

// Puts возвращает число успешных записей.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Ping всегда успешен.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close ничего не делает.
func (s *Store) Close() error {
	return nil
}
