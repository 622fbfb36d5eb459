package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/log"
)

func DatabaseURL(cfg config.Database) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		int(cfg.Port),
		cfg.Name,
	)
}

// NewPool builds a traced pgx pool whose connections know the google/uuid types.
func NewPool(c context.Context, connString string, cfg config.Database) (*pgxpool.Pool, error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "infra NewPool").Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing pgx config").Logger()
	logger.Info().Msg("initializing pgx config")
	pgxConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		err = fmt.Errorf("failed creating pgx config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if cfg.MaxConnections > 0 {
		pgxConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		pgxConfig.MinConns = cfg.MinConnections
	}
	pgxConfig.MaxConnLifetime = 15 * time.Minute
	pgxConfig.MaxConnIdleTime = 5 * time.Minute
	pgxConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	logger.Info().Msg("initialized pgx config")

	logger = logger.With().Str(log.KeyProcess, "attaching otel tracer to pgx").Logger()
	logger.Info().Msg("attaching otel tracer to pgx")
	pgxConfig.ConnConfig.Tracer = otelpgx.NewTracer(
		otelpgx.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	logger.Info().Msg("attached otel tracer to pgx")

	logger = logger.With().Str(log.KeyProcess, "creating connection pool").Logger()
	logger.Info().Msg("creating connection pool")
	pool, err := pgxpool.NewWithConfig(c, pgxConfig)
	if err != nil {
		err = fmt.Errorf("failed creating connection pool with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("created connection pool")

	logger = logger.With().Str(log.KeyProcess, "ping db").Logger()
	logger.Info().Msg("ping db")
	if err = pool.Ping(c); err != nil {
		pool.Close()
		err = fmt.Errorf("failed ping db with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("successed ping db")

	return pool, nil
}

func NewDatabaseClient(c context.Context, cfg config.Database) *pgxpool.Pool {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewDatabaseClient").
		Str(log.KeyProcess, "connecting to database").
		Logger()

	logger.Info().Msg("connecting to database")
	c = logger.WithContext(c)
	pool, err := NewPool(c, DatabaseURL(cfg), cfg)
	if err != nil {
		err = fmt.Errorf("failed connecting to database with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("successed connecting to database")

	return pool
}

func newMigration(c context.Context, cfg config.Database) (*migrate.Migrate, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra newMigration").
		Str(log.KeyProcess, "initializing migration").
		Logger()

	logger.Info().Msg("initializing migration")
	migration, err := migrate.New(cfg.MigrationPath, DatabaseURL(cfg))
	if err != nil {
		err = fmt.Errorf("failed initializing migration with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("initialized migration")
	return migration, nil
}

func closeMigration(c context.Context, migration *migrate.Migrate) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "infra closeMigration").Logger()
	sourceErr, dbErr := migration.Close()
	if err := errors.Join(sourceErr, dbErr); err != nil {
		err = fmt.Errorf("failed closing migration with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func MigrateUp(c context.Context, cfg config.Database) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra MigrateUp").
		Str(log.KeyProcess, "migration up").
		Logger()

	migration, err := newMigration(c, cfg)
	if err != nil {
		return err
	}
	defer closeMigration(c, migration)

	logger.Info().Msg("migration up")
	err = migration.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		err = fmt.Errorf("failed migration up with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("successed migration up")
	return nil
}

func MigrateDown(c context.Context, cfg config.Database) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra MigrateDown").
		Str(log.KeyProcess, "migration down").
		Logger()

	migration, err := newMigration(c, cfg)
	if err != nil {
		return err
	}
	defer closeMigration(c, migration)

	logger.Info().Msg("migration down")
	err = migration.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		err = fmt.Errorf("failed migration down with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("successed migration down")
	return nil
}
