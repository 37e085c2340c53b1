package service

import "sync"

// DefaultRegistryCapacity - сколько последних кодов помнит реестр сервиса.
const DefaultRegistryCapacity = 100_000

// MemoryRegistry - потокобезопасный Registry в памяти процесса.
// При заданной ёмкости помнит только последние capacity кодов:
// самый старый код вытесняется первым.
type MemoryRegistry struct {
	mu       sync.RWMutex
	codes    map[string]struct{}
	order    []string
	next     int
	capacity int
}

// NewMemoryRegistry создаёт пустой реестр. capacity <= 0 - без ограничения.
func NewMemoryRegistry(capacity int) *MemoryRegistry {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryRegistry{
		codes:    make(map[string]struct{}),
		capacity: capacity,
	}
}

// Exists сообщает, выдавался ли code среди запомненных.
func (r *MemoryRegistry) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codes[code]
	return ok
}

// Register запоминает code.
func (r *MemoryRegistry) Register(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[code]; ok {
		return
	}
	r.codes[code] = struct{}{}

	if r.capacity == 0 {
		return
	}
	if len(r.order) < r.capacity {
		r.order = append(r.order, code)
		return
	}
	// кольцевой буфер заполнен: вытесняем самый старый код
	delete(r.codes, r.order[r.next])
	r.order[r.next] = code
	r.next = (r.next + 1) % r.capacity
}

// Len возвращает количество запомненных кодов.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}
