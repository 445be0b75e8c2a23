package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ElarizT/Mavericks/internal/app"
	"github.com/ElarizT/Mavericks/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so they stay out of the conversation.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctrl := a.NewSession()
	defer ctrl.Close()

	r := newREPL(ctrl, os.Stdout)
	defer r.Close()

	fmt.Fprintln(os.Stdout, "Connecting... type :help for commands.")
	if err := ctrl.Start(ctx); err != nil {
		fmt.Fprintf(os.Stdout, "connection failed: %v\n", err)
	}

	r.Run(ctx)
}
