package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/definition"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/meaning"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/notify"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/phonetic"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/preference"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/term"
	"github.com/heartmarshall/owl-backend/internal/adapter/provider/freedict"
	"github.com/heartmarshall/owl-backend/internal/adapter/provider/ninja"
	"github.com/heartmarshall/owl-backend/internal/adapter/redis"
	"github.com/heartmarshall/owl-backend/internal/config"
	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/observability/metrics"
	"github.com/heartmarshall/owl-backend/internal/service/changefeed"
	"github.com/heartmarshall/owl-backend/internal/service/randomword"
	"github.com/heartmarshall/owl-backend/internal/service/wordcache"
	"github.com/heartmarshall/owl-backend/internal/service/wordlist"
	"github.com/heartmarshall/owl-backend/internal/transport/middleware"
	"github.com/heartmarshall/owl-backend/internal/transport/rest"
)

// App holds the wired services shared by the server and the CLI.
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Pool       *pgxpool.Pool
	Redis      *goredis.Client
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	WordCache  *wordcache.Service
	Random     *randomword.Service
	History    *wordlist.ObservableSet
	Favourites *wordlist.ObservableSet
	Changes    *changefeed.Feed

	stopChanges func()
	changesDone chan struct{}
}

// Build connects to storage and wires every service. Close releases what
// Build opened.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: logger}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	if cfg.Server.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	store, err := a.preferenceStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics, err = metrics.New(a.Registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	a.History, err = wordlist.Open(ctx, domain.ListHistory, store, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Favourites, err = wordlist.Open(ctx, domain.ListFavourites, store, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.History.SetMetrics(a.Metrics)
	a.Favourites.SetMetrics(a.Metrics)

	terms := term.New(pool)
	dict := cfg.Dictionary

	a.WordCache = wordcache.NewService(
		logger,
		terms,
		phonetic.New(pool),
		meaning.New(pool),
		definition.New(pool),
		postgres.NewTxManager(pool),
		freedict.NewProvider(dict.FreeDictBaseURL, dict.RequestTimeout, logger),
		dict,
	)
	a.WordCache.SetHistory(a.History)
	a.WordCache.SetMetrics(a.Metrics)

	a.Random = randomword.NewService(logger, terms, dict)
	if dict.RemoteRandomEnabled() {
		a.Random.SetRemote(ninja.NewProvider(dict.NinjaBaseURL, dict.NinjaAPIKey, dict.RequestTimeout, logger))
	}

	if cfg.Sync.Enabled {
		a.startChanges(ctx)
	}

	logger.InfoContext(ctx, "services wired",
		slog.String("preferences_backend", cfg.Preferences.Backend),
		slog.Bool("remote_random", dict.RemoteRandomEnabled()),
		slog.Duration("hot_cache_ttl", dict.HotCacheTTL),
		slog.Bool("sync", cfg.Sync.Enabled),
	)
	return a, nil
}

// startChanges connects the services to the change bus shared with other
// processes and applies their changes in the background until Close.
func (a *App) startChanges(ctx context.Context) {
	var bus changefeed.Bus = notify.New(a.Pool, a.Config.Sync.Channel)
	if a.Redis != nil {
		bus = redis.NewBus(a.Redis, a.Config.Sync.Channel)
	}

	a.Changes = changefeed.New(bus, a.Log, a.Config.Sync)
	a.Changes.Watch(a.History)
	a.Changes.Watch(a.Favourites)
	a.Changes.SetWords(a.WordCache)

	a.History.SetNotifier(a.Changes)
	a.Favourites.SetNotifier(a.Changes)
	a.WordCache.SetNotifier(a.Changes)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopChanges = cancel
	a.changesDone = make(chan struct{})
	go func() {
		defer close(a.changesDone)
		a.Changes.Run(runCtx)
	}()
}

func (a *App) preferenceStore(ctx context.Context) (wordlist.Store, error) {
	switch a.Config.Preferences.Backend {
	case config.BackendRedis:
		rdb, err := redis.Connect(ctx, a.Config.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		return redis.NewStore(rdb, a.Config.Redis.KeyPrefix), nil
	default:
		return preference.New(a.Pool), nil
	}
}

// Close stops the change feed and releases the storage connections.
func (a *App) Close() {
	if a.stopChanges != nil {
		a.stopChanges()
		<-a.changesDone
		a.stopChanges = nil
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("close redis", slog.String("error", err.Error()))
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Handler builds the HTTP handler with all routes and middleware. The
// returned stop func ends the rate limiter's cleanup loop.
func (a *App) Handler() (http.Handler, func()) {
	cfg := a.Config

	checks := []rest.Check{{Name: "database", Pinger: a.Pool}}
	if a.Redis != nil {
		checks = append(checks, rest.Check{
			Name:   "redis",
			Pinger: rest.PingFunc(func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }),
		})
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)

	mux := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(BuildVersion(), checks...),
		Words:   rest.NewWordHandler(a.WordCache, a.Log),
		Random:  rest.NewRandomHandler(a.Random, a.Log),
		Lists:   rest.NewListHandler(a.History, a.Favourites, a.Log),
		Metrics: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
	}, limiter.Limit(cfg.RateLimit.LookupsPerMinute))

	handler := middleware.Chain(
		middleware.Recovery(a.Log),
		middleware.RequestID(),
		middleware.Logger(a.Log),
		middleware.CORS(cfg.CORS),
	)(mux)

	return handler, limiter.Stop
}

// Run is the server entry point. It loads configuration, wires the
// application and serves HTTP until ctx is canceled, then shuts down
// gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	a, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	handler, stopLimiter := a.Handler()
	defer stopLimiter()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
