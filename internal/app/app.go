package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"essentialfeed/internal/adapter/fetcher"
	"essentialfeed/internal/adapter/parser"
	"essentialfeed/internal/config"
	"essentialfeed/internal/logger"
	"essentialfeed/internal/migrations"
	server "essentialfeed/internal/transport/http"
	"essentialfeed/internal/usecase"
	"essentialfeed/internal/worker"
	"essentialfeed/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App связывает HTTP-клиент, загрузчик, хранилище, воркер обновления лент
// и служебный HTTP-сервер.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	store    storage.Storage
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New создает и инициализирует приложение. Для драйвера postgres
// подключается к базе и применяет миграции.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	store, err := newStore(context.Background(), cfg.Store, appLogger)
	if err != nil {
		return nil, err
	}

	feedNames := make(map[string]string)
	urls := make([]string, 0, len(cfg.App.FeedURLs))
	for _, feed := range cfg.App.FeedURLs {
		feedNames[feed.URL] = feed.Name
		urls = append(urls, feed.URL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpTimeout, _ := time.ParseDuration(cfg.HTTPClient.Timeout)
	session := fetcher.NewHTTPSession(fetcher.SessionConfig{
		Timeout:      httpTimeout,
		UserAgent:    cfg.HTTPClient.UserAgent,
		MaxBodyBytes: cfg.HTTPClient.MaxBodyBytes,
	}, appLogger)
	httpClient := fetcher.NewHTTPClient(session, appLogger, fetcher.NewMetrics(registry))

	mapper := parser.NewFeedItemsMapper(appLogger)

	feedProcessor := usecase.NewFeedProcessingUseCase(httpClient, mapper, store, appLogger, feedNames)

	processInterval, err := time.ParseDuration(cfg.App.ProcessingInterval)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("bad init app: %w", err)
	}
	feedTimeout, err := time.ParseDuration(cfg.App.FeedTimeout)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("bad init app: %w", err)
	}

	feedWorker := worker.New(feedProcessor, urls, processInterval, feedTimeout, cfg.App.MaxConcurrentFeeds, appLogger)

	handler := server.NewHandler(appLogger)
	router := server.NewServer(appLogger, handler, registry)

	return &App{
		config: cfg,
		logger: appLogger,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		worker:   feedWorker,
		store:    store,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

func newStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := migrations.Apply(ctx, log, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return storage.NewPostgresFeedStore(dbPool, log), nil
	case config.StoreDriverMemory:
		eviction, err := time.ParseDuration(cfg.Eviction)
		if err != nil {
			return nil, fmt.Errorf("invalid store eviction: %w", err)
		}
		return storage.NewMemoryFeedStore(eviction, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Run запускает воркер и HTTP-сервер и блокируется до сигнала завершения
// или падения сервера.
func (a *App) Run() error {
	a.logger.Info("Starting essentialfeed",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.worker.URLs())),
		slog.String("processing_interval", a.worker.Interval().String()),
		slog.String("store", a.config.Store.Driver),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	a.worker.Start(context.Background())

	serverErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serverErr <- err
		}
	}()

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	return a.Shutdown()
}

// Shutdown останавливает воркер, HTTP-сервер и хранилище.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		shutdownErr = fmt.Errorf("http server shutdown: %w", err)
	}
	a.store.Close()
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return shutdownErr
}
