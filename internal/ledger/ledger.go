// Package ledger ведёт долговременный счётчик переходов по shortcode.
//
// Каждое изменение сразу записывается в хранилище целиком: документ по ключу
// LedgerKey - плоский JSON-объект {"shortcode": count}.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Totarae/batchshortener/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultKey - ключ документа журнала в хранилище.
	DefaultKey = "clickData"
	// DefaultPersistTimeout ограничивает одну запись в хранилище.
	DefaultPersistTimeout = 5 * time.Second
)

var (
	// ErrPersistence - хранилище недоступно или отказало в записи/чтении.
	ErrPersistence = errors.New("ledger: persistence failed")
	// ErrDeserialization - сохранённый документ не является журналом.
	ErrDeserialization = errors.New("ledger: malformed stored data")
	// ErrEmptyShortcode - клик без shortcode.
	ErrEmptyShortcode = errors.New("ledger: empty shortcode")
)

// Ledger - журнал кликов. Один экземпляр на процесс, безопасен для
// конкурентного использования.
type Ledger struct {
	mu     sync.Mutex
	counts map[string]int64

	store          storage.BlobStore
	key            string
	persistTimeout time.Duration
	logger         *zap.Logger
	metrics        *Metrics
}

// Option настраивает Ledger.
type Option func(*options)

type options struct {
	key            string
	persistTimeout time.Duration
	logger         *zap.Logger
	registerer     prometheus.Registerer
}

// WithKey задаёт ключ документа в хранилище.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithPersistTimeout задаёт таймаут записи.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.persistTimeout = d
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer регистрирует метрики журнала в reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New создаёт пустой журнал поверх store. Для загрузки сохранённого
// состояния вызовите Load или LoadOrEmpty.
func New(store storage.BlobStore, opts ...Option) *Ledger {
	o := options{
		key:            DefaultKey,
		persistTimeout: DefaultPersistTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Ledger{
		counts:         make(map[string]int64),
		store:          store,
		key:            o.key,
		persistTimeout: o.persistTimeout,
		logger:         o.logger,
		metrics:        NewMetrics(o.registerer),
	}
}

// Load читает журнал из хранилища и заменяет им текущее состояние.
// Отсутствующий документ - пустой журнал. При ErrDeserialization
// состояние остаётся пустым.
func (l *Ledger) Load(ctx context.Context) (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	blob, found, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			l.counts = make(map[string]int64)
			return map[string]int64{}, fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
		return nil, fmt.Errorf("%w: read %q: %w", ErrPersistence, l.key, err)
	}
	if !found {
		l.counts = make(map[string]int64)
		return map[string]int64{}, nil
	}

	counts, err := decode(blob)
	if err != nil {
		l.counts = make(map[string]int64)
		return map[string]int64{}, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}

	l.counts = counts
	l.logger.Info("Журнал кликов загружен", zap.Int("shortcodes", len(counts)))
	return copyCounts(counts), nil
}

// LoadOrEmpty загружает журнал, а повреждённые данные заменяет пустым
// журналом с предупреждением. Возвращает только ErrPersistence.
func (l *Ledger) LoadOrEmpty(ctx context.Context) error {
	_, err := l.Load(ctx)
	if errors.Is(err, ErrDeserialization) {
		l.logger.Warn("Сохранённый журнал кликов повреждён, начинаем с пустого", zap.Error(err))
		return nil
	}
	return err
}

// RecordClick увеличивает счётчик shortcode на 1 и сразу сохраняет журнал.
// Если запись не удалась, счётчик откатывается, а ошибка оборачивает
// ErrPersistence. Возвращает новое значение счётчика.
func (l *Ledger) RecordClick(ctx context.Context, shortcode string) (int64, error) {
	if shortcode == "" {
		return 0, ErrEmptyShortcode
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.counts[shortcode]
	l.counts[shortcode] = prev + 1

	if err := l.persist(ctx); err != nil {
		if existed {
			l.counts[shortcode] = prev
		} else {
			delete(l.counts, shortcode)
		}
		l.logger.Error("Не удалось сохранить журнал кликов",
			zap.String("shortcode", shortcode),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: record click %q: %w", ErrPersistence, shortcode, err)
	}

	return prev + 1, nil
}

// persist записывает журнал целиком. Вызывается под l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	blob, err := json.Marshal(l.counts)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.persistTimeout)
	defer cancel()

	start := time.Now()
	err = l.store.Put(ctx, l.key, blob)
	l.metrics.observePersist(time.Since(start).Seconds(), err)
	return err
}

// Count возвращает число кликов по shortcode (0, если кликов не было).
func (l *Ledger) Count(shortcode string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[shortcode]
}

// Snapshot возвращает копию журнала.
func (l *Ledger) Snapshot() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyCounts(l.counts)
}

// Total возвращает сумму всех счётчиков.
func (l *Ledger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int64
	for _, n := range l.counts {
		total += n
	}
	return total
}

// decode разбирает документ журнала. Допустим только JSON-объект
// с неотрицательными целыми значениями; null - пустой журнал.
func decode(blob []byte) (map[string]int64, error) {
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.UseNumber()

	var raw map[string]json.Number
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode: trailing data after object")
	}

	counts := make(map[string]int64, len(raw))
	for code, num := range raw {
		n, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("count for %q is not an integer: %s", code, num)
		}
		if n < 0 {
			return nil, fmt.Errorf("count for %q is negative: %d", code, n)
		}
		counts[code] = n
	}
	return counts, nil
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
