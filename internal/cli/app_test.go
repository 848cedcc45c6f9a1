package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/task-manager/internal/auth"
	"github.com/Tomlord1122/task-manager/internal/client"
	"github.com/Tomlord1122/task-manager/internal/config"
	"github.com/Tomlord1122/task-manager/internal/database"
	"github.com/Tomlord1122/task-manager/internal/logging"
	"github.com/Tomlord1122/task-manager/internal/repository"
	"github.com/Tomlord1122/task-manager/internal/server"
	"github.com/Tomlord1122/task-manager/internal/service"
)

func newSession(t *testing.T) *client.Session {
	t.Helper()
	log := logging.New(io.Discard, "error")

	db, err := database.New(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}, log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	authService, err := service.NewAuthService(
		repository.NewGormUserRepository(db.GetDB()),
		auth.NewIssuer("cli-test-secret", time.Hour),
		bcrypt.MinCost,
		log,
	)
	require.NoError(t, err)
	taskService := service.NewTaskService(repository.NewGormTaskRepository(db.GetDB()), log)

	ts := httptest.NewServer(server.New(server.Options{}, authService, taskService, db, log).RegisterRoutes())
	t.Cleanup(ts.Close)

	api, err := client.New(ts.URL, ts.Client())
	require.NoError(t, err)
	return client.NewSession(api, &client.MemoryTokenStore{})
}

func run(t *testing.T, session *client.Session, input string, args ...string) (string, error) {
	t.Helper()
	prev := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = prev })

	var out bytes.Buffer
	err := NewApp(session, strings.NewReader(input), &out).Run(context.Background(), args)
	return out.String(), err
}

func TestApp_TaskLifecycle(t *testing.T) {
	session := newSession(t)

	out, err := run(t, session, "secret1\n", "register", "Me@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered and logged in as me@example.com")

	out, err = run(t, session, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")

	out, err = run(t, session, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks")

	out, err = run(t, session, "", "add", "Buy milk", "oat")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ")

	api, err := session.API()
	require.NoError(t, err)
	tasks, err := api.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID.String()

	out, err = run(t, session, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ]")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Buy milk")

	out, err = run(t, session, "", "done", id)
	require.NoError(t, err)
	assert.Equal(t, "[x] Buy milk\n", out)

	out, err = run(t, session, "", "undo", id)
	require.NoError(t, err)
	assert.Equal(t, "[ ] Buy milk\n", out)

	out, err = run(t, session, "", "edit", id, "-title", "Buy oat milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy oat milk")
	assert.Contains(t, out, "oat")

	out, err = run(t, session, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Buy oat milk")
	assert.Contains(t, out, "id: "+id)

	out, err = run(t, session, "", "rm", id)
	require.NoError(t, err)
	assert.Equal(t, "Task removed\n", out)

	_, err = run(t, session, "", "show", id)
	assert.ErrorIs(t, err, client.ErrNotFound)

	out, err = run(t, session, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	_, err = run(t, session, "", "list")
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestApp_LoginPromptsForEmail(t *testing.T) {
	session := newSession(t)
	_, err := run(t, session, "secret1\n", "register", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, session.Logout())

	out, err := run(t, session, "user@example.com\nsecret1\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Logged in as user@example.com")

	require.NoError(t, session.Logout())
	_, err = run(t, session, "wrong-secret\n", "login", "user@example.com")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid Credentials", apiErr.Message)
}

func TestApp_Usage(t *testing.T) {
	session := newSession(t)

	out, err := run(t, session, "")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out, "usage: taskctl")

	_, err = run(t, session, "", "frobnicate")
	assert.ErrorIs(t, err, ErrUsage)

	out, err = run(t, session, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "commands:")

	_, err = run(t, session, "secret1\n", "register", "u@example.com")
	require.NoError(t, err)

	for _, args := range [][]string{
		{"add"},
		{"add", "a", "b", "c"},
		{"show"},
		{"done", "x", "y"},
		{"edit"},
		{"edit", "some-id"},
		{"rm"},
	} {
		_, err := run(t, session, "", args...)
		assert.ErrorIs(t, err, ErrUsage, "args %v", args)
	}
}

func TestApp_LogoutWithServerDown(t *testing.T) {
	ts := httptest.NewServer(nil)
	api, err := client.New(ts.URL, ts.Client())
	require.NoError(t, err)
	ts.Close()

	token, _, err := auth.NewIssuer("cli-test-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)
	store := &client.MemoryTokenStore{}
	require.NoError(t, store.Save(token))

	out, err := run(t, client.NewSession(api, store), "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}
