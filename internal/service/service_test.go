package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/task-manager/internal/auth"
	"github.com/Tomlord1122/task-manager/internal/domain"
	"github.com/Tomlord1122/task-manager/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Task{}))
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	svc, err := NewAuthService(repository.NewGormUserRepository(db), auth.NewIssuer("test-secret", time.Hour), bcrypt.MinCost, discard)
	require.NoError(t, err)
	return svc
}

// newTaskService returns a service whose clock advances one second per call,
// so creation order is always observable.
func newTaskService(t *testing.T, db *gorm.DB) TaskService {
	t.Helper()
	svc := NewTaskService(repository.NewGormTaskRepository(db), discard).(*taskService)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func ptr[T any](v T) *T { return &v }
