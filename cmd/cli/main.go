package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/Tomlord1122/task-manager/internal/cli"
	"github.com/Tomlord1122/task-manager/internal/client"
)

func main() {
	v := viper.New()
	v.SetDefault("TASKS_API_URL", "http://localhost:8080")
	v.SetDefault("TASKS_TOKEN_FILE", "")
	v.SetDefault("TASKS_TIMEOUT", 10*time.Second)
	v.AutomaticEnv()

	tokenPath := v.GetString("TASKS_TOKEN_FILE")
	if tokenPath == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "taskctl: locate token file: %v\n", err)
			os.Exit(1)
		}
		tokenPath = p
	}

	api, err := client.New(v.GetString("TASKS_API_URL"), &http.Client{Timeout: v.GetDuration("TASKS_TIMEOUT")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := client.NewSession(api, client.NewFileTokenStore(tokenPath))
	app := cli.NewApp(session, os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		// A bare ErrUsage has already printed the usage text.
		if err != cli.ErrUsage {
			fmt.Fprintf(os.Stderr, "taskctl: %v\n", err)
		}
		if errors.Is(err, client.ErrNotLoggedIn) {
			fmt.Fprintln(os.Stderr, "run `taskctl login` first")
		}
		stop()
		os.Exit(1)
	}
}
