package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/auth"
	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/infra"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/internal/otel"
	"github.com/Alturino/shop/internal/repository"
)

const (
	logDir          = "/var/log"
	shutdownTimeout = 15 * time.Second
)

// App holds the process wide dependencies. Database and cache are opened on first use.
type App struct {
	Name   string
	Config *config.Config

	pool          *pgxpool.Pool
	store         *repository.Store
	cache         *redis.Client
	shutdownFuncs []otel.ShutdownFunc
	closers       []func() error
}

func NewApp(c context.Context, name string) (context.Context, *App, error) {
	cfg := config.Get(c, name)

	logger := log.Get(filepath.Join(logDir, name+".log"), cfg.Application.Env).
		With().
		Str(log.KeyAppName, name).
		Str(log.KeyTag, "server NewApp").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := otel.InitOtelSdk(c, name, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return c, nil, err
	}
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "running").Logger()
	c = logger.WithContext(c)
	return c, &App{Name: name, Config: cfg, shutdownFuncs: shutdownFuncs}, nil
}

func (a *App) Store(c context.Context) *repository.Store {
	if a.store == nil {
		a.pool = infra.NewDatabaseClient(c, a.Config.Database)
		a.store = repository.NewStore(a.pool, a.Config.Database.Timeout)
	}
	return a.store
}

func (a *App) Cache(c context.Context) *redis.Client {
	if a.cache == nil {
		a.cache = infra.NewCacheClient(c, a.Config.Cache)
	}
	return a.cache
}

func (a *App) Tokens() *auth.TokenService {
	return auth.NewTokenService(a.Config.Application)
}

// OnClose registers fn to run before the database and cache are closed.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// HealthChecks pings every dependency the app opened.
func (a *App) HealthChecks() []HealthCheck {
	checks := []HealthCheck{}
	if a.pool != nil {
		checks = append(checks, a.pool.Ping)
	}
	if a.cache != nil {
		checks = append(checks, func(c context.Context) error { return a.cache.Ping(c).Err() })
	}
	return checks
}

func (a *App) Close(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "App Close").
		Str(log.KeyProcess, "closing app").
		Logger()

	c, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
	defer cancel()

	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i]())
	}
	if a.pool != nil {
		a.pool.Close()
		logger.Info().Msg("closed database")
	}
	if a.cache != nil {
		errs = errors.Join(errs, a.cache.Close())
		logger.Info().Msg("closed cache")
	}
	errs = errors.Join(errs, otel.ShutdownOtel(c, a.shutdownFuncs))
	if errs != nil {
		err := fmt.Errorf("failed closing app with error=%w", errs)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("closed app")
}
