package integration_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/app"
	"github.com/metinatakli/movie-seat-selection/internal/backend"
	"github.com/metinatakli/movie-seat-selection/internal/draft"
	"github.com/metinatakli/movie-seat-selection/internal/selection"
	appvalidator "github.com/metinatakli/movie-seat-selection/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App     *app.Application
	Redis   *redis.Client
	Screens *selection.Registry
	Logger  *slog.Logger
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	client, err := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, backend.WithLogger(logger))
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	screens := selection.NewRegistry(context.Background(), client, client, selection.Options{
		PollInterval: cfg.Selection.PollInterval,
		HoldDuration: cfg.Selection.HoldDuration,
		MaxSeats:     cfg.Selection.MaxSeats,
		Logger:       logger,
	})

	drafts := draft.NewRedisStore(redisClient, cfg.Selection.DraftTTL)

	application, err := app.NewApp(
		cfg,
		logger,
		redisClient,
		validator,
		sessionManager,
		client,
		screens,
		drafts,
	)
	if err != nil {
		screens.Shutdown(context.Background())
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:     application,
		Redis:   redisClient,
		Screens: screens,
		Logger:  logger,
	}, nil
}

func (a *TestApp) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.Screens.Shutdown(ctx)
	a.Redis.Close()
}
