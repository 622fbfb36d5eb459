// Package testutil starts the postgres and redis containers used by integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/infra"
)

func Context(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		Level(zerolog.InfoLevel).
		WithContext(context.Background())
}

func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// MigrationScripts returns the up migrations in the order golang-migrate applies them.
func MigrationScripts(t *testing.T) []string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed locating testutil source file")
	}
	dir := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	scripts, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("failed listing migrations with error: %s", err)
	}
	sort.Strings(scripts)
	return scripts
}

func StartPostgres(t *testing.T, c context.Context) *pgxpool.Pool {
	t.Helper()
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(MigrationScripts(t)...),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := infra.NewPool(c, pgConnStr, config.Database{MaxConnections: 20})
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func StartRedis(t *testing.T, c context.Context) *redis.Client {
	t.Helper()
	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(redisOpt)
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

// Truncate empties every table so subtests start from a clean database.
func Truncate(t *testing.T, c context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(c, `TRUNCATE order_items, orders, cart_lines, products, users CASCADE`)
	if err != nil {
		t.Fatalf("failed truncating tables with error: %s", err)
	}
}
