// Package testutils starts the containers used by integration tests.
// Every helper skips the test under -short or when no container provider
// is available, and terminates the container on cleanup.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	postgresImage = "postgres:16-alpine"
	natsImage     = "nats:2.9.22-alpine"

	postgresDB       = "testdb"
	postgresUser     = "testuser"
	postgresPassword = "testpass"
)

func skipUnlessContainers(t *testing.T, name string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping %s container test in short mode", name)
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// StartPostgres runs a PostgreSQL container and returns its DSN.
func StartPostgres(t *testing.T) string {
	t.Helper()
	skipUnlessContainers(t, "postgres")

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(postgresDB),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
					postgresUser, postgresPassword, host, port.Port(), postgresDB)
			}).WithStartupTimeout(45*time.Second),
		),
	)
	if container != nil {
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })
	}
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	return dsn
}

// StartNATS runs a NATS server container and returns its URL.
func StartNATS(t *testing.T) string {
	t.Helper()
	skipUnlessContainers(t, "nats")

	ctx := context.Background()
	container, err := natscontainer.Run(ctx,
		natsImage,
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Server is ready"),
				wait.ForListeningPort("4222/tcp"),
			).WithDeadline(45*time.Second),
		),
	)
	if container != nil {
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })
	}
	if err != nil {
		t.Fatalf("failed to start nats container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get nats connection string: %v", err)
	}
	return url
}
