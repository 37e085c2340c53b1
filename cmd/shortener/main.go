package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/batchshortener/internal/config"
	"github.com/Totarae/batchshortener/internal/grpc/health"
	"github.com/Totarae/batchshortener/internal/handlers"
	"github.com/Totarae/batchshortener/internal/ledger"
	"github.com/Totarae/batchshortener/internal/logger"
	"github.com/Totarae/batchshortener/internal/router"
	"github.com/Totarae/batchshortener/internal/service"
	"github.com/Totarae/batchshortener/internal/shortcode"
	"github.com/Totarae/batchshortener/internal/storage"
	"github.com/Totarae/batchshortener/internal/storage/backend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if log, err := start(context.Background(), os.Args[1:]); err != nil {
		log.Fatal("Ошибка при запуске сервера", zap.Error(err))
	}
}

// start собирает конфигурацию и логгер и обслуживает запросы до сигнала.
// Отложенные вызовы отрабатывают до возврата, поэтому main может завершить
// процесс по ошибке, ничего не потеряв.
func start(parent context.Context, args []string) (*zap.Logger, error) {
	// Инициализация конфигурации
	cfg := config.Load(flag.NewFlagSet("shortener", flag.ContinueOnError), args)

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		log, _ = zap.NewProduction()
		log.Warn("Некорректный уровень логирования, используется info", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return log, run(ctx, cfg, log)
}

// app - собранный сервис: хранилище, журнал кликов, HTTP и gRPC.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.BlobStore
	ledger  *ledger.Ledger
	handler http.Handler
	grpc    *grpc.Server
}

// newApp открывает хранилище, загружает журнал кликов и собирает обработчики.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clicks := ledger.New(store,
		ledger.WithKey(cfg.LedgerKey),
		ledger.WithPersistTimeout(cfg.PersistTimeout),
		ledger.WithLogger(log),
		ledger.WithRegisterer(reg),
	)
	if err := clicks.LoadOrEmpty(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("load click ledger: %w", err)
	}

	shortener := service.NewShortener(cfg.BaseURL, cfg.BatchSize,
		service.WithGenerator(shortcode.NewUUIDGenerator(cfg.ShortcodeLength, nil)),
		service.WithRegistry(service.NewMemoryRegistry(service.DefaultRegistryCapacity)),
		service.WithLogger(log),
	)

	h := handlers.NewHandler(shortener, clicks, store, cfg.ShortcodeLength, log)

	return &app{
		cfg:     cfg,
		logger:  log,
		store:   store,
		ledger:  clicks,
		handler: router.NewRouter(h, log, reg),
		grpc:    health.NewGRPCServer(store, log),
	}, nil
}

// serve обслуживает запросы до отмены ctx, затем плавно останавливает серверы.
func (a *app) serve(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              a.cfg.ServerAddress,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)

	if a.cfg.GRPCAddress != "" {
		lis, err := net.Listen("tcp", a.cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			a.logger.Info("gRPC health запущен", zap.String("address", a.cfg.GRPCAddress))
			if err := a.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("Сервер запущен", zap.String("address", a.cfg.ServerAddress))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Получен сигнал остановки")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	a.grpc.GracefulStop()
	return serveErr
}

// close освобождает хранилище.
func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Ошибка закрытия хранилища", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	log.Info("Журнал кликов загружен",
		zap.String("mode", cfg.Mode),
		zap.Int64("clicks", a.ledger.Total()),
	)
	return a.serve(ctx)
}
