package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/config"
	"github.com/oksasatya/go-ddd-notes/internal/container"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-notes/internal/router"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	c := container.New(cfg, logger)
	defer c.Close()

	if err := c.OpenStorage(ctx); err != nil {
		c.Close()
		logger.WithError(err).Fatal("storage unavailable")
	}

	initOptionalClients(ctx, c)

	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-serveErr:
		logger.WithError(err).Error("listen failed")
		return
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// initOptionalClients connects the integrations that are configured. A
// failing integration is logged and left disabled; the core API still serves.
func initOptionalClients(ctx context.Context, c *container.Container) {
	cfg, logger := c.Config, c.Logger

	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; rate limiting fails open until it recovers")
		}
		c.Redis = rdb
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		logger.WithError(err).Warn("elasticsearch disabled")
	case es != nil:
		if err := search.NewNoteIndex(es, cfg.ESNotesIndex, logger).EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index setup failed; search falls back to in-memory filtering")
		} else {
			c.ES = es
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := storage.NewClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs disabled; export unavailable")
		} else {
			c.GCS = gcs
		}
	}

	if cfg.RabbitMQURL != "" && cfg.MailSendEnabled {
		q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq disabled; welcome emails are not queued")
		} else {
			c.Rabbit = q
		}
	}

	logger.WithFields(logrus.Fields{
		"storage":    cfg.Storage,
		"redis":      c.Redis != nil,
		"search":     c.ES != nil,
		"export":     c.GCS != nil,
		"email_jobs": c.Rabbit != nil,
	}).Info("integrations initialized")
}
