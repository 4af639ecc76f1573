package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmod "github.com/dentora/dentkit/modules/auth"
	"github.com/dentora/dentkit/pkg/authstate"
	"github.com/dentora/dentkit/pkg/config"
	"github.com/dentora/dentkit/pkg/httpserver"
	"github.com/dentora/dentkit/pkg/identity"
	"github.com/dentora/dentkit/pkg/logger"
	"github.com/dentora/dentkit/pkg/pg"
	"github.com/dentora/dentkit/pkg/profile"
	redisconn "github.com/dentora/dentkit/pkg/redis"
)

type appConfig struct {
	Name         string `env:"APP_NAME" envDefault:"dentkit"`
	TokenSecret  string `env:"AUTH_TOKEN_SECRET,required"`
	CacheBackend string `env:"AUTH_CACHE_BACKEND" envDefault:"memory"`

	Log  logger.Config
	HTTP httpserver.Config
	PG   pg.Config
	Rdb  redisconn.Config
	Auth authstate.Config
}

func main() {
	cfg := config.MustLoad[appConfig]()

	log := logger.New(logger.WithConfig(cfg.Log), logger.WithService(cfg.Name))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	readiness := []func(context.Context) error{pg.Healthcheck(pool)}

	cache := authstate.CacheStore(authstate.NewMemoryCache())
	if cfg.CacheBackend == "redis" {
		client, err := redisconn.Connect(ctx, cfg.Rdb)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = authstate.NewRedisCache(client)
		readiness = append(readiness, redisconn.Healthcheck(client))
	}

	provider := identity.NewLocalProvider(
		identity.NewPostgresUserStore(pool),
		cfg.TokenSecret,
		identity.WithProviderLogger(log),
	)
	defer provider.Close()

	ctrl := authstate.New(provider, profile.NewPostgresStore(pool),
		authstate.WithConfig(cfg.Auth),
		authstate.WithCacheStore(cache),
		authstate.WithLogger(log),
	)
	defer ctrl.Close()

	if err := ctrl.Bootstrap(ctx); err != nil {
		return err
	}

	authSvc := authmod.NewService(ctrl, authmod.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, readiness...))
	r.Mount("/auth", authSvc.Router())

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
