package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/task-manager/internal/auth"
	"github.com/Tomlord1122/task-manager/internal/config"
	"github.com/Tomlord1122/task-manager/internal/database"
	"github.com/Tomlord1122/task-manager/internal/logging"
	"github.com/Tomlord1122/task-manager/internal/repository"
	"github.com/Tomlord1122/task-manager/internal/server"
	"github.com/Tomlord1122/task-manager/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, log *slog.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	if err := dbService.Close(); err != nil {
		log.Error("closing database connection pool", "error", err)
	}

	log.Info("server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbService.Migrate(ctx)
		cancel()
		if err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		log.Info("database schema is up to date", "driver", cfg.Database.Driver)
	}

	userRepo := repository.NewGormUserRepository(dbService.GetDB())
	taskRepo := repository.NewGormTaskRepository(dbService.GetDB())

	authService, err := service.NewAuthService(userRepo, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.BcryptCost, log)
	if err != nil {
		log.Error("init auth service", "error", err)
		os.Exit(1)
	}
	taskService := service.NewTaskService(taskRepo, log)

	apiServer := server.NewServer(server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, authService, taskService, dbService, log)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, log, done)

	log.Info("starting server", "addr", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
		os.Exit(1)
	}

	<-done
	log.Info("graceful shutdown complete")
}
