package router

import (
	"net/http"

	"github.com/Totarae/batchshortener/internal/handlers"
	"github.com/Totarae/batchshortener/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор. Если gatherer == nil,
// /metrics не подключается.
func NewRouter(handler *handlers.Handler, logger *zap.Logger, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Route("/api", func(r chi.Router) {
		r.Post("/shorten/batch", handler.ShortenBatch)

		r.Route("/clicks", func(r chi.Router) {
			r.Get("/", handler.ClickStats)
			r.Post("/", handler.TrackClick)
			r.Get("/{shortcode}", handler.ClickCount)
			r.Post("/{shortcode}", handler.RecordClick)
		})
	})
	r.Get("/ping", handler.PingHandler)

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
