// Package service содержит движок пакетного сокращения ссылок.
package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Totarae/batchshortener/internal/model"
	"github.com/Totarae/batchshortener/internal/shortcode"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize - количество слотов в форме исходного приложения.
	DefaultBatchSize = 5
	// DefaultBaseURL - префикс сокращённых ссылок.
	DefaultBaseURL = "https://short.url/"

	// maxGenerateAttempts ограничивает перегенерацию при совпадении кодов.
	maxGenerateAttempts = 8

	// maxValidity - наибольший срок жизни, который помещается в time.Duration.
	maxValidity = time.Duration(math.MaxInt64)
)

// Registry хранит уже выданные shortcode. Необязательное расширение:
// без него проверяется только уникальность внутри одного пакета.
type Registry interface {
	Exists(code string) bool
	Register(code string)
}

// Shortener превращает пакет запросов в сокращённые ссылки.
// Состояния между вызовами не хранит (кроме необязательного Registry).
type Shortener struct {
	baseURL   string
	batchSize int
	gen       shortcode.Generator
	fallback  shortcode.Generator
	registry  Registry
	now       func() time.Time
	logger    *zap.Logger
}

// Option настраивает Shortener.
type Option func(*Shortener)

// WithGenerator подменяет источник shortcode.
func WithGenerator(g shortcode.Generator) Option {
	return func(s *Shortener) { s.gen = g }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Shortener) { s.now = now }
}

// WithRegistry включает проверку коллизий с ранее выданными кодами.
func WithRegistry(r Registry) Option {
	return func(s *Shortener) { s.registry = r }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shortener) { s.logger = l }
}

// NewShortener создаёт движок. Пустой baseURL и неположительный batchSize
// заменяются значениями по умолчанию.
func NewShortener(baseURL string, batchSize int, opts ...Option) *Shortener {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s := &Shortener{
		baseURL:   baseURL,
		batchSize: batchSize,
		gen:       shortcode.NewUUIDGenerator(shortcode.DefaultLength, nil),
		fallback:  shortcode.NewUUIDGenerator(shortcode.DefaultLength, nil),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL возвращает префикс сокращённых ссылок.
func (s *Shortener) BaseURL() string {
	return s.baseURL
}

// BatchSize возвращает размер пакета.
func (s *Shortener) BatchSize() int {
	return s.batchSize
}

// ShortenBatch сокращает пакет. Пустые слоты пропускаются, порядок сохраняется.
// Ошибок не возвращает: некорректный ввод заменяется значениями по умолчанию.
func (s *Shortener) ShortenBatch(requests []model.ShortenRequest) []model.ShortenedRecord {
	if len(requests) > s.batchSize {
		s.logger.Warn("batch exceeds configured size, extra slots ignored",
			zap.Int("slots", len(requests)),
			zap.Int("batch_size", s.batchSize),
		)
		requests = requests[:s.batchSize]
	}

	now := s.now()
	issued := make(map[string]struct{}, len(requests))
	records := make([]model.ShortenedRecord, 0, len(requests))

	for _, req := range requests {
		if req.IsEmpty() {
			continue
		}

		code, ok := req.Preferred()
		if !ok {
			code = s.generate(issued)
		}
		issued[code] = struct{}{}
		if s.registry != nil {
			s.registry.Register(code)
		}

		records = append(records, model.ShortenedRecord{
			OriginalURL:  req.OriginalURL,
			Shortcode:    code,
			ShortenedURL: s.baseURL + code,
			Expiry:       ResolveExpiry(req.Validity(), now),
		})
	}

	s.logger.Debug("batch shortened",
		zap.Int("slots", len(requests)),
		zap.Int("records", len(records)),
	)
	return records
}

// generate возвращает непустой код, не совпадающий с уже выданными в пакете
// и (если задан) с Registry. Если все попытки дали коллизию, остаётся последний код.
func (s *Shortener) generate(issued map[string]struct{}) string {
	var code string
	for i := 0; i < maxGenerateAttempts; i++ {
		candidate, err := s.gen.Generate()
		if err != nil || candidate == "" {
			s.logger.Warn("shortcode generator failed, falling back to uuid", zap.Error(err))
			candidate, err = s.fallback.Generate()
			if err != nil || candidate == "" {
				s.logger.Error("fallback shortcode generator failed", zap.Error(err))
				continue
			}
		}
		code = candidate
		if !s.taken(code, issued) {
			return code
		}
		s.logger.Info("collision detected, generating a new shortcode", zap.String("shortcode", code))
	}
	if code == "" {
		code = s.clockCode(issued)
	}
	return code
}

// clockCode строит код из текущего времени, когда случайных кодов получить не удалось.
func (s *Shortener) clockCode(issued map[string]struct{}) string {
	base := s.now().UnixNano()
	for i := int64(0); ; i++ {
		hex := fmt.Sprintf("%016x", base+i)
		code := hex[len(hex)-shortcode.DefaultLength:]
		if !s.taken(code, issued) || i >= maxGenerateAttempts {
			return code
		}
	}
}

func (s *Shortener) taken(code string, issued map[string]struct{}) bool {
	if _, ok := issued[code]; ok {
		return true
	}
	return s.registry != nil && s.registry.Exists(code)
}

// ResolveExpiry переводит срок жизни в минутах в момент истечения.
// Пустая, нечисловая или неположительная строка означает "бессрочно".
// Срок, не помещающийся в time.Duration, ограничивается maxValidity.
func ResolveExpiry(validity string, now time.Time) model.Expiry {
	if validity == "" {
		return model.Never()
	}
	minutes, err := strconv.Atoi(validity)
	if err != nil {
		// слишком большое положительное число
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(validity, "-") {
			return model.At(now.Add(maxValidity))
		}
		return model.Never()
	}
	if minutes <= 0 {
		return model.Never()
	}
	if int64(minutes) > int64(maxValidity/time.Minute) {
		return model.At(now.Add(maxValidity))
	}
	return model.At(now.Add(time.Duration(minutes) * time.Minute))
}
