package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/obaudys/filegate"
	"github.com/obaudys/filegate/database/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	tableSeq     atomic.Int64
)

// getSharedTestDatabase returns a shared database pool for all tests.
// This significantly improves test performance by reusing the same container.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			t.Fatalf("failed to get connection string: %v", err)
		}

		testPool, err = pgxpool.New(ctx, connectionStr)
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			t.Fatalf("failed to connect: %v", err)
		}
	})

	return testPool
}

// newTestLedger migrates a fresh uniquely named table and returns a ledger on it.
func newTestLedger(t *testing.T) *postgres.Ledger {
	t.Helper()

	pool := getSharedTestDatabase(t)
	tables := filegate.Tables{Usage: fmt.Sprintf("file_usage_t%d", tableSeq.Add(1))}

	if err := postgres.Migrate(context.Background(), pool, tables); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ledger, err := postgres.NewLedger(pool, tables, nil)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	return ledger
}
