package database

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"timetable-service/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var (
	// Global shared test database pool
	testPool *pgxpool.Pool
	testDB   *sqlx.DB
	testOnce sync.Once
)

// init validates that test and production database names are different
// This prevents accidental truncation of production database during tests
func init() {
	testDBName := os.Getenv("TEST_DATABASE_NAME")
	if testDBName == "" {
		testDBName = "timetable_service_test"
	}

	prodDBName := os.Getenv("DATABASE_NAME")
	if prodDBName == "" {
		prodDBName = "timetable_service"
	}

	// CRITICAL SAFETY CHECK: Verify databases are different
	if testDBName == prodDBName {
		log.Fatalf("CRITICAL SAFETY VIOLATION: TEST_DATABASE_NAME and DATABASE_NAME are the same ('%s'). "+
			"This would DELETE PRODUCTION DATA when running tests! "+
			"Set TEST_DATABASE_NAME to a separate test database (e.g., 'timetable_service_test')",
			testDBName)
	}
}

func testDatabaseConfig() *config.DatabaseConfig {
	dbPassword := os.Getenv("DATABASE_PASSWORD")
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	dbName := os.Getenv("TEST_DATABASE_NAME")
	if dbName == "" {
		dbName = "timetable_service_test"
	}
	return &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: dbPassword,
		Name:     dbName,
		SSLMode:  "disable",
	}
}

// testSchema содержит единственную таблицу сервиса: журнал прогонов.
// Держится синхронно с миграциями в migrations/.
const testSchema = `
CREATE TABLE IF NOT EXISTS schedule_runs (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	time_limit_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_search_workers INTEGER NOT NULL DEFAULT 0,
	desired_lessons_per_day INTEGER NOT NULL,
	input JSONB NOT NULL,
	result JSONB NOT NULL,
	items_count INTEGER NOT NULL,
	solve_duration_ms BIGINT NOT NULL,
	conflicts_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedule_runs_created_at ON schedule_runs (created_at DESC);
`

// RequireTestDB skips the test when no reachable test database is
// configured, so the pure-core packages stay runnable without Postgres.
func RequireTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("SKIP_DB_TESTS") != "" {
		t.Skip("SKIP_DB_TESTS set; skipping database-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, testDatabaseConfig().GetDSN())
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
}

// GetTestPool returns the shared PostgreSQL connection pool for tests.
// The pool is created once and reused across all tests to avoid connection
// exhaustion; the scratch schema is applied on first use.
func GetTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testOnce.Do(func() {
		cfg := testDatabaseConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.GetDSN())
		if err != nil {
			log.Fatalf("failed to create test pool: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("failed to ping test database: %v", err)
		}
		if _, err := pool.Exec(ctx, testSchema); err != nil {
			log.Fatalf("failed to apply test schema: %v", err)
		}

		testPool = pool
		testDB = sqlx.MustConnect("pgx", cfg.GetDSN())
	})

	if testPool == nil {
		t.Fatal("test database pool is not available")
	}
	return testPool
}

// GetTestSqlxDB returns the shared sqlx connection for tests.
func GetTestSqlxDB(t *testing.T) *sqlx.DB {
	t.Helper()
	GetTestPool(t)
	if testDB == nil {
		t.Fatal("test sqlx connection is not available")
	}
	return testDB
}

// CleanupTestTables truncates the run ledger between tests.
func CleanupTestTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, "TRUNCATE TABLE schedule_runs"); err != nil {
		t.Fatalf("failed to truncate schedule_runs: %v", err)
	}
}
