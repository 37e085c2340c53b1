// Package shortcode генерирует короткие идентификаторы ссылок.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultLength - длина shortcode по умолчанию.
	DefaultLength = 6
	// MaxLength - первые 8 символов канонической записи UUID всегда hex.
	MaxLength = 8
	// Alphabet - допустимые символы сгенерированного shortcode.
	Alphabet = "0123456789abcdef"
)

// ErrExhausted возвращается Sequence, когда заготовленные коды закончились.
var ErrExhausted = errors.New("shortcode: sequence exhausted")

// Generator создаёт новый shortcode.
type Generator interface {
	Generate() (string, error)
}

// UUIDGenerator берёт префикс случайного UUID v4.
type UUIDGenerator struct {
	mu     sync.Mutex
	rand   io.Reader
	length int
}

// NewUUIDGenerator создаёт генератор заданной длины. Если r == nil,
// используется crypto/rand.
func NewUUIDGenerator(length int, r io.Reader) *UUIDGenerator {
	if length <= 0 || length > MaxLength {
		length = DefaultLength
	}
	if r == nil {
		r = rand.Reader
	}
	return &UUIDGenerator{rand: r, length: length}
}

// Generate возвращает первые length символов нового UUID.
func (g *UUIDGenerator) Generate() (string, error) {
	// io.Reader не обязан быть потокобезопасным
	g.mu.Lock()
	id, err := uuid.NewRandomFromReader(g.rand)
	g.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("shortcode: generate uuid: %w", err)
	}
	return id.String()[:g.length], nil
}

// Length возвращает длину генерируемых кодов.
func (g *UUIDGenerator) Length() int {
	return g.length
}

// Sequence отдаёт заранее заданные коды по порядку. Удобен в тестах.
type Sequence struct {
	mu    sync.Mutex
	codes []string
	next  int
}

// NewSequence создаёт генератор из списка кодов.
func NewSequence(codes ...string) *Sequence {
	return &Sequence{codes: codes}
}

// Generate возвращает следующий код или ErrExhausted.
func (s *Sequence) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.codes) {
		return "", ErrExhausted
	}
	code := s.codes[s.next]
	s.next++
	return code, nil
}

// Valid проверяет, что code имеет длину length и состоит из символов Alphabet.
func Valid(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
