// idcore es el OAuth2/OIDC provider embebido de la plataforma.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/config"
	httpx "github.com/dropDatabas3/idcore/internal/http"
	"github.com/dropDatabas3/idcore/internal/http/controllers"
	"github.com/dropDatabas3/idcore/internal/http/router"
	"github.com/dropDatabas3/idcore/internal/http/services"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	"github.com/dropDatabas3/idcore/internal/rate"
	"github.com/dropDatabas3/idcore/internal/store"
	"github.com/dropDatabas3/idcore/internal/store/memory"
	"github.com/dropDatabas3/idcore/internal/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "idcore:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env solo para dev; en prod las vars vienen del entorno.
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al YAML de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "idcore",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Store ──
	var (
		dal    store.DataAccessLayer
		pgPool *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := pgStore.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
		dal = pgStore
		pgPool = pgStore.Pool()
	case "memory":
		dal = memory.New()
		log.Warn("using in-memory store; state is volatile")
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	defer dal.Close()

	// ── Cache ──
	cacheClient, err := cache.New(cache.Config{
		Driver: cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() { _ = cacheClient.Close() }()

	// ── Rate limiter ──
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			client := rdb.NewClient(&rdb.Options{
				Addr: cfg.Cache.Redis.Addr,
				DB:   cfg.Cache.Redis.DB,
			})
			limiter = rate.NewRedisLimiter(client, "rl:", cfg.Rate.MaxRequests, cfg.RateWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
		}
	}

	// ── Signing ──
	if cfg.Issuer.SigningSecret == "" {
		return errors.New("issuer.signing_secret (SIGNING_SECRET) is required")
	}
	issuer := jwtx.NewIssuer(cfg.Issuer.URL, []byte(cfg.Issuer.SigningSecret))

	// ── Metrics ──
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Pool: func() *pgxpool.Pool { return pgPool },
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// ── Wiring ──
	svcs := services.New(services.Deps{
		DAL:            dal,
		Cache:          cacheClient,
		Issuer:         issuer,
		Clock:          clock.System(),
		BaseIssuer:     cfg.Issuer.URL,
		ClientCacheTTL: cfg.ClientCacheTTL(),
		AccessTTL:      cfg.AccessTTL(),
		RefreshTTL:     cfg.RefreshTTL(),
		IDTokenTTL:     cfg.IDTokenTTL(),
	})
	ctrls := controllers.New(svcs, dal, cacheClient)

	handler := router.New(router.Deps{
		Controllers:    ctrls,
		AdminAPIKey:    cfg.Admin.APIKey,
		RateLimiter:    limiter,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("issuer", cfg.Issuer.URL),
			logger.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
