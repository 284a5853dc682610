// Package pgtest provides a throwaway Postgres for integration tests.
package pgtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Domenick1991/airreservation/internal/repository"
)

// lazyURL starts a database on first use and hands the same DSN to every
// later caller.
type lazyURL struct {
	once  sync.Once
	start func() (string, error)
	url   string
	err   error
}

func (l *lazyURL) get() (string, error) {
	l.once.Do(func() {
		l.url, l.err = l.start()
	})
	return l.url, l.err
}

var container = &lazyURL{start: startContainer}

// Pool returns a pool connected to a schema-initialized, empty database.
// POSTGRES_URL is used when set; otherwise a container is started once per
// test binary. The test is skipped in -short mode or when docker is missing.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		var err error
		url, err = container.get()
		require.NoError(t, err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.InitializeSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE reservations, passengers, flights RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

func startContainer() (string, error) {
	ctx := context.Background()
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("reservations"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", err
	}
	return container.ConnectionString(ctx, "sslmode=disable", "application_name=test")
}
