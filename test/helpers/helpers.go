// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/LucasDeWerk/vstcount/internal/adapters/db"
	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_vstcount",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_vstcount",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	// Run the embedded migrations
	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
			TempDir:     os.TempDir(),
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_vstcount",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:       "localhost",
			Port:       "6379",
			DB:         0,
			PoolSize:   10,
			SessionTTL: 12 * time.Hour,
		},
		Vision: config.VisionConfig{
			BaseURL:       "http://localhost:8000",
			DetectTimeout: 60 * time.Second,
			ProbeTimeout:  5 * time.Second,
		},
		ERP: config.ERPConfig{
			BaseURL: "http://localhost:9000",
			Timeout: 15 * time.Second,
			Token:   "test-token",
		},
		Journal: config.JournalConfig{
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
	}
}

// CreateTestSession returns a count session for tests
func CreateTestSession() domain.CountSession {
	return domain.CountSession{
		CompanyID:   "ACME",
		BranchID:    "01",
		InventoryID: "INV-7",
	}
}

// CreateTestCountItem creates a test count item
func CreateTestCountItem(overrides ...func(*domain.CountItem)) *domain.CountItem {
	item := &domain.CountItem{
		ProductID:     "P-100",
		Description:   "Motor oil 5W-30 1L",
		WarehouseID:   "WH-1",
		ExpectedStock: decimal.NewFromInt(10),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestCountItems creates multiple test count items
func CreateTestCountItems(count int) []domain.CountItem {
	items := make([]domain.CountItem, count)

	for i := 0; i < count; i++ {
		items[i] = *CreateTestCountItem(func(item *domain.CountItem) {
			item.ProductID = fmt.Sprintf("P-%03d", i+1)
			item.Description = fmt.Sprintf("Test product %d", i+1)
			item.ExpectedStock = decimal.NewFromInt(int64(10 + i*5))
		})
	}

	return items
}

// CreateTestDetectionResult creates a detection result with the given count
func CreateTestDetectionResult(estimated int) *domain.DetectionResult {
	detections := make([]domain.Detection, estimated)
	for i := range detections {
		detections[i] = domain.Detection{
			Confidence: 0.9,
			Center:     image.Pt(40*(i+1), 80),
		}
	}

	return &domain.DetectionResult{
		EstimatedCount: estimated,
		Detections:     detections,
		ReceivedAt:     time.Now(),
	}
}

// CreateTestJournalEntry creates a confirmed journal entry for tests
func CreateTestJournalEntry(overrides ...func(*domain.JournalEntry)) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		ID:              uuid.New(),
		CompanyID:       "ACME",
		BranchID:        "01",
		InventoryID:     "INV-7",
		ProductID:       "P-100",
		WarehouseID:     "WH-1",
		CountedQuantity: 8,
		ExpectedStock:   decimal.NewFromInt(10),
		Variance:        decimal.NewFromInt(-2),
		Source:          domain.SourceDetection,
		Outcome:         domain.OutcomeConfirmed,
		SubmittedAt:     time.Now(),
	}

	for _, override := range overrides {
		override(entry)
	}

	return entry
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"count_journal",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
