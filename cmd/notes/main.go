package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/cli"
	"github.com/oksasatya/go-ddd-notes/pkg/client"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	logger := helpers.NewLogger("notes-cli", os.Getenv("APP_ENV"))
	logger.SetOutput(os.Stderr)

	baseURL := os.Getenv("NOTES_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	delay := client.DefaultSyncDelay
	if v := os.Getenv("NOTES_SYNC_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.WithError(err).Warn("invalid NOTES_SYNC_DELAY, using default")
		} else {
			delay = d
		}
	}

	api, err := client.NewAPI(baseURL)
	if err != nil {
		logger.WithError(err).Fatal("invalid NOTES_API_URL")
	}
	store := client.NewStore(api,
		client.WithSyncDelay(delay),
		client.WithLogger(logger),
		client.WithSyncErrorHandler(func(noteID string, err error) {
			logger.WithFields(logrus.Fields{"note_id": noteID, "error": err}).Warn("note not saved")
		}),
	)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a missing or expired session just starts signed out
	_ = store.Load(ctx)

	cli.NewApp(store, os.Stdin, os.Stdout).Run(ctx)
}
