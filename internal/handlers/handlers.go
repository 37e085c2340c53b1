package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Totarae/batchshortener/internal/ledger"
	"github.com/Totarae/batchshortener/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxBatchBodySize ограничивает тело запроса пакетного сокращения.
const MaxBatchBodySize = 1 << 20

// BatchTruncatedHeader выставляется, если слоты сверх размера пакета отброшены.
const BatchTruncatedHeader = "X-Batch-Truncated"

// BatchShortener сокращает пакет запросов.
type BatchShortener interface {
	ShortenBatch(requests []model.ShortenRequest) []model.ShortenedRecord
	BaseURL() string
	BatchSize() int
}

// ClickLedger учитывает клики.
type ClickLedger interface {
	RecordClick(ctx context.Context, shortcode string) (int64, error)
	Count(shortcode string) int64
	Snapshot() map[string]int64
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обслуживает HTTP-запросы сервиса.
type Handler struct {
	shortener       BatchShortener
	ledger          ClickLedger
	store           Pinger
	shortcodeLength int
	Logger          *zap.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(shortener BatchShortener, l ClickLedger, store Pinger, shortcodeLength int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		shortener:       shortener,
		ledger:          l,
		store:           store,
		shortcodeLength: shortcodeLength,
		Logger:          logger,
	}
}

// ShortenBatch принимает JSON-массив слотов и возвращает сокращённые ссылки.
// Пустые слоты пропускаются, поэтому ответ может быть короче запроса.
// Слоты сверх размера пакета отбрасываются, а ответ помечается BatchTruncatedHeader.
func (h *Handler) ShortenBatch(res http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(res, req.Body, MaxBatchBodySize)

	var requests []model.ShortenRequest
	if err := json.NewDecoder(req.Body).Decode(&requests); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(res, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.Logger.Debug("invalid batch body", zap.Error(err))
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if size := h.shortener.BatchSize(); len(requests) > size {
		res.Header().Set(BatchTruncatedHeader, strconv.Itoa(len(requests)-size))
	}
	records := h.shortener.ShortenBatch(requests)
	writeJSON(res, http.StatusCreated, records, h.Logger)
}

// RecordClick учитывает клик по shortcode из пути.
func (h *Handler) RecordClick(res http.ResponseWriter, req *http.Request) {
	h.recordClick(res, req, chi.URLParam(req, "shortcode"))
}

// TrackClick учитывает клик по полной сокращённой ссылке.
func (h *Handler) TrackClick(res http.ResponseWriter, req *http.Request) {
	var body model.ClickRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}
	code := ShortcodeFromURL(body.ShortURL, h.shortener.BaseURL(), h.shortcodeLength)
	h.recordClick(res, req, code)
}

func (h *Handler) recordClick(res http.ResponseWriter, req *http.Request, code string) {
	count, err := h.ledger.RecordClick(req.Context(), code)
	switch {
	case errors.Is(err, ledger.ErrEmptyShortcode):
		http.Error(res, "Shortcode is required", http.StatusBadRequest)
		return
	case errors.Is(err, ledger.ErrPersistence):
		h.Logger.Error("failed to persist click", zap.String("shortcode", code), zap.Error(err))
		http.Error(res, "Click ledger unavailable", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.Logger.Error("failed to record click", zap.String("shortcode", code), zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(res, http.StatusOK, model.ClickResponse{Shortcode: code, Count: count}, h.Logger)
}

// ClickCount возвращает счётчик shortcode (0, если кликов не было).
func (h *Handler) ClickCount(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "shortcode")
	writeJSON(res, http.StatusOK, model.ClickResponse{Shortcode: code, Count: h.ledger.Count(code)}, h.Logger)
}

// ClickStats возвращает весь журнал кликов.
func (h *Handler) ClickStats(res http.ResponseWriter, req *http.Request) {
	writeJSON(res, http.StatusOK, h.ledger.Snapshot(), h.Logger)
}

// PingHandler проверяет доступность хранилища журнала.
func (h *Handler) PingHandler(res http.ResponseWriter, req *http.Request) {
	if err := h.store.Ping(req.Context()); err != nil {
		h.Logger.Warn("storage ping failed", zap.Error(err))
		http.Error(res, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

// ShortcodeFromURL извлекает shortcode из сокращённой ссылки: отрезает
// baseURL, а если ссылка с ним не совпадает, берёт последние length символов.
func ShortcodeFromURL(shortURL, baseURL string, length int) string {
	shortURL = strings.TrimSpace(shortURL)
	if shortURL == "" {
		return ""
	}
	if baseURL != "" && strings.HasPrefix(shortURL, baseURL) {
		return strings.TrimPrefix(shortURL, baseURL)
	}
	if length <= 0 || len(shortURL) <= length {
		return shortURL
	}
	return shortURL[len(shortURL)-length:]
}

func writeJSON(res http.ResponseWriter, status int, v any, logger *zap.Logger) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
