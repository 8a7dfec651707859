// Package integration runs the storage layer against a real PostgreSQL
// started with testcontainers. The tests are skipped in short mode and when
// no container runtime is reachable.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/bootstrap"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
)

const (
	postgresImage = "postgres:16-alpine"
	testDBName    = "dashboard_test"
	testUser      = "postgres"
	testPassword  = "admin123"
)

// NewPostgresConfig starts a fresh PostgreSQL container and returns a config
// pointing at it. The container is terminated when the test ends.
func NewPostgresConfig(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	logLevel := "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = "debug"
	}
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "postgres",
			Host:         host,
			Port:         port.Int(),
			User:         testUser,
			Password:     testPassword,
			DBName:       testDBName,
			SSLMode:      "disable",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Log: config.LogConfig{Level: logLevel},
	}
}

// OpenCore opens the dashboard storage on cfg, applying the embedded
// migrations, and closes it when the test ends.
func OpenCore(t *testing.T, cfg *config.Config) *bootstrap.Core {
	t.Helper()
	core, err := bootstrap.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err, "Failed to open dashboard core")
	t.Cleanup(func() { _ = core.Close() })
	return core
}

// findMigrationsPath locates the migrations directory from this file.
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(filename)
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
