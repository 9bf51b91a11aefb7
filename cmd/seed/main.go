package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/config"
	"github.com/oksasatya/go-ddd-notes/internal/application"
	pginfra "github.com/oksasatya/go-ddd-notes/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

type sampleNote struct {
	title, content string
	tags           []string
}

var samples = []sampleNote{
	{"Welcome", "Notes save themselves while you type.", []string{"getting-started"}},
	{"Groceries", "milk\neggs\ncoffee", []string{"home"}},
	{"Sprint retro", "What went well, what to change.", []string{"work", "meetings"}},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Fatal("seed failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	auth := application.NewAuthService(pginfra.NewUserRepository(pool), helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL), nil, cfg.AppName, logger)
	notes := application.NewNoteService(pginfra.NewNoteRepository(pool), nil, nil, logger)

	name, email, password := "Demo User", "demo@example.com", "password123"
	sess, err := auth.Register(ctx, application.RegisterInput{Name: name, Email: email, Password: password})
	if errors.Is(err, application.ErrEmailTaken) {
		fmt.Printf("user %s already exists; nothing to seed\n", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", sess.User.ID, email, name, password)

	for _, s := range samples {
		title, content, tags := s.title, s.content, s.tags
		n, err := notes.Create(ctx, sess.User.ID, application.CreateNoteInput{Title: &title, Content: &content, Tags: &tags})
		if err != nil {
			return fmt.Errorf("seed note %q: %w", title, err)
		}
		fmt.Printf("seeded note: id=%s title=%s\n", n.ID, n.Title)
	}
	return nil
}
