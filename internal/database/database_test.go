package database

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/task-manager/internal/config"
	"github.com/Tomlord1122/task-manager/internal/domain"
	"github.com/Tomlord1122/task-manager/internal/logging"
)

func TestSQLite_MigrateAndHealth(t *testing.T) {
	srv, err := New(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}, logging.New(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	require.NoError(t, srv.Migrate(context.Background()))
	assert.True(t, srv.GetDB().Migrator().HasTable(&domain.Task{}))
	assert.True(t, srv.GetDB().Migrator().HasTable(&domain.User{}))

	stats := srv.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "It's healthy", stats["message"])
}

func TestHealth_ReportsDownAfterClose(t *testing.T) {
	srv, err := New(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}, logging.New(io.Discard, "error"))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	stats := srv.Health()
	assert.Equal(t, "down", stats["status"])
}

func TestPostgres_MigrationsApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	const (
		dbName = "tasks"
		dbUser = "user"
		dbPwd  = "password"
	)

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	srv, err := New(config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Host:     host,
		Port:     port.Port(),
		Username: dbUser,
		Password: dbPwd,
		Database: dbName,
		LogLevel: "silent",
	}, logging.New(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	require.NoError(t, srv.Migrate(ctx))
	// Running twice is a no-op.
	require.NoError(t, srv.Migrate(ctx))

	user := domain.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, srv.GetDB().Create(&user).Error)
	task := domain.Task{ID: uuid.New(), Title: "Buy milk", UserID: user.ID}
	require.NoError(t, srv.GetDB().Create(&task).Error)

	var got domain.Task
	require.NoError(t, srv.GetDB().First(&got, "id = ?", task.ID).Error)
	assert.Equal(t, "Buy milk", got.Title)
	assert.False(t, got.Completed)

	assert.Equal(t, "up", srv.Health()["status"])
}
