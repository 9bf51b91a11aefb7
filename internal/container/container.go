package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/config"
	repo "github.com/oksasatya/go-ddd-notes/internal/domain/repository"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-notes/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

// Container holds the constructed components shared by the router modules.
// Optional clients stay nil when their feature is not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	GCS    *storage.Client
	Rabbit *helpers.RabbitQueue

	JWT     *helpers.JWTManager
	Cookies *helpers.Manager

	Users repo.UserRepository
	Notes repo.NoteRepository
}

// New builds the credential helpers; storage is attached with UsePostgres or UseMemory.
func New(cfg *config.Config, logger *logrus.Logger) *Container {
	return &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL),
		Cookies: helpers.NewCookie(cfg.CookieName, cfg.CookieDomain, cfg.CookieSecure),
	}
}

func (c *Container) UsePostgres(pool *pgxpool.Pool) {
	c.PGPool = pool
	c.Users = pginfra.NewUserRepository(pool)
	c.Notes = pginfra.NewNoteRepository(pool)
}

// OpenStorage attaches the repositories selected by STORAGE. For postgres it
// connects the pool and, when enabled, applies migrations; on error nothing
// is left open.
func (c *Container) OpenStorage(ctx context.Context) error {
	cfg := c.Config
	if cfg.UseMemoryStorage() {
		c.Logger.Warn("STORAGE=memory: data is lost on restart")
		c.UseMemory()
		return nil
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.RunMigrations {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), c.Logger); err != nil {
			pool.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	c.UsePostgres(pool)
	return nil
}

func (c *Container) UseMemory() {
	c.Users = memory.NewUserRepository()
	c.Notes = memory.NewNoteRepository()
}

// Close releases every client the container owns.
func (c *Container) Close() {
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
