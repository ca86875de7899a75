//go:build integration

// Package dbtest starts a throwaway PostgreSQL for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
)

const (
	testUser     = "hotel"
	testPassword = "hotel"
	testDB       = "hotel"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerDSN  string
	containerErr  error
)

func start() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       testDB,
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
		Cmd:   []string{"postgres", "-c", "fsync=off", "-c", "synchronous_commit=off"},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return dsn(host, port)
		}).WithStartupTimeout(60 * time.Second),
	}

	container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if containerErr != nil {
		return
	}

	host, err := container.Host(ctx)
	if err != nil {
		containerErr = err
		return
	}
	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		containerErr = err
		return
	}
	containerDSN = dsn(host, port)
}

func dsn(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testUser, testPassword, host, port.Port(), testDB)
}

// NewPool returns a pool on a freshly migrated and truncated database.
// The container is shared by every test in the package.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	containerOnce.Do(start)
	require.NoError(t, containerErr, "failed to start postgres container")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, containerDSN, 20)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE payments, invoices, reservation_rooms, reservations,
		rooms, room_types, employees, clients, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

// Terminate stops the shared container. Call it from TestMain.
func Terminate() {
	if container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Terminate(ctx); err != nil {
		slog.Warn("failed to terminate postgres container", "error", err.Error())
	}
}
