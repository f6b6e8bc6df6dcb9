package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/medlink-portal/internal/cache"
	"github.com/magabrotheeeer/medlink-portal/internal/config"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/medlink-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
	cancel context.CancelFunc
}

// New собирает приложение. Redis поднимается только для хранилища сессий redis,
// на том же соединении кэшируется каталог врачей.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "portal.New"

	var (
		store      session.Store
		cacheRedis *cache.Cache
		pingers    = map[string]health.Pinger{}
	)
	switch cfg.SessionBackend {
	case config.SessionRedis:
		var err error
		cacheRedis, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store = session.NewRedisStore(cacheRedis, cfg.SessionTTL)
		pingers["redis"] = cacheRedis
	default:
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := medlinkapi.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.TimeoutBackend,
		Metrics:    medlinkapi.NewMetrics(registry),
		DoctorsTTL: cfg.DoctorsCacheTTL,
	}
	if cacheRedis != nil {
		opts.Cache = cacheRedis
	}
	client := medlinkapi.New(logger, opts)
	boards := dashboard.New(logger, cfg.PollInterval, cfg.Location())

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Client: client,
		Boards: boards,
		Store:  store,
		Cookie: session.CookieOptions{
			Name:   cfg.CookieName,
			Secure: cfg.CookieSecure,
			TTL:    cfg.SessionTTL,
		},
		Limiter:  middlewarectx.NewLimiter(cfg.RPS, cfg.Burst),
		Registry: registry,
		Pingers:  pingers,
	})

	// потоки дашбордов завершаются вместе с базовым контекстом при остановке сервера
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)

	return &App{
		server: srv,
		logger: logger,
		cache:  cacheRedis,
		cancel: cancel,
	}, nil
}

// Handler корневой обработчик сервера
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	a.cancel()
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
}
