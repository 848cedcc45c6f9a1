package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tomlord1122/task-manager/internal/database"
	"github.com/Tomlord1122/task-manager/internal/service"
)

type Server struct {
	port           int
	allowedOrigins []string
	authService    service.AuthService
	taskService    service.TaskService
	db             database.Service
	log            *slog.Logger
}

// Options carries the HTTP-level settings of the server.
type Options struct {
	Port           int
	AllowedOrigins []string
}

func New(opts Options, authService service.AuthService, taskService service.TaskService, dbService database.Service, log *slog.Logger) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"https://*", "http://*"}
	}
	return &Server{
		port:           opts.Port,
		allowedOrigins: opts.AllowedOrigins,
		authService:    authService,
		taskService:    taskService,
		db:             dbService,
		log:            log,
	}
}

// NewServer builds the http.Server that serves the API.
func NewServer(opts Options, authService service.AuthService, taskService service.TaskService, dbService database.Service, log *slog.Logger) *http.Server {
	appServer := New(opts, authService, taskService, dbService, log)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
}
