package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/metinatakli/movie-seat-selection/internal/backend"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/metinatakli/movie-seat-selection/internal/draft"
	"github.com/metinatakli/movie-seat-selection/internal/push"
	"github.com/metinatakli/movie-seat-selection/internal/selection"
	appvalidator "github.com/metinatakli/movie-seat-selection/internal/validator"
	"github.com/metinatakli/movie-seat-selection/internal/vcs"
	"github.com/metinatakli/movie-seat-selection/internal/worker"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

const serviceName = "movie-seat-selection-api"

type Application struct {
	config         Config
	logger         *slog.Logger
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	openapi        routers.Router

	bookings domain.BookingBackend
	screens  *selection.Registry
	drafts   draft.Store
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	Redis            RedisConfig
	Backend          BackendConfig
	Selection        SelectionConfig
	Nats             NatsConfig
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type SelectionConfig struct {
	PollInterval time.Duration
	HoldDuration time.Duration
	MaxSeats     int
	IdleTimeout  time.Duration
	ReapInterval time.Duration
	DraftTTL     time.Duration
}

type NatsConfig struct {
	URL     string
	Subject string
}

func Run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	flag.IntVar(&cfg.Port, "port", getEnvInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", getEnv("ENV", "dev"), "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", getEnv("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	flag.StringVar(&cfg.Redis.URL, "redis-url", getEnv("REDIS_URL", ""), "Redis address, sessions are kept in memory when empty")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Backend.URL, "backend-url", getEnv("BACKEND_URL", backend.DefaultBaseURL), "Booking backend base URL")
	flag.DurationVar(&cfg.Backend.Timeout, "backend-timeout", getEnvDuration("BACKEND_TIMEOUT", 10*time.Second), "Booking backend request timeout")

	flag.DurationVar(&cfg.Selection.PollInterval, "poll-interval", getEnvDuration("SEAT_POLL_INTERVAL", selection.DefaultPollInterval), "Seat availability poll interval")
	flag.DurationVar(&cfg.Selection.HoldDuration, "hold-duration", getEnvDuration("SEAT_HOLD_DURATION", selection.DefaultHoldDuration), "Seat hold duration")
	flag.IntVar(&cfg.Selection.MaxSeats, "max-seats", getEnvInt("MAX_SEATS", selection.DefaultMaxSeats), "Maximum number of seats per booking")
	flag.DurationVar(&cfg.Selection.IdleTimeout, "screen-idle-timeout", getEnvDuration("SCREEN_IDLE_TIMEOUT", 15*time.Minute), "Close seat selections unused for this long")
	flag.DurationVar(&cfg.Selection.ReapInterval, "screen-reap-interval", time.Minute, "How often idle seat selections are looked for")
	flag.DurationVar(&cfg.Selection.DraftTTL, "draft-ttl", getEnvDuration("DRAFT_TTL", draft.DefaultTTL), "Lifetime of a booking draft in Redis")

	flag.StringVar(&cfg.Nats.URL, "nats-url", getEnv("NATS_URL", ""), "NATS server URL for seat events, polling only when empty")
	flag.StringVar(&cfg.Nats.Subject, "nats-subject", getEnv("NATS_SUBJECT", push.DefaultSubject), "NATS subject carrying seat events")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	app := &Application{config: cfg, logger: logger}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		logger.Warn("redis url not set, keeping sessions and drafts in memory")
	}

	client, err := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, backend.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := selection.NewRegistry(ctx, client, client, selection.Options{
		PollInterval: cfg.Selection.PollInterval,
		HoldDuration: cfg.Selection.HoldDuration,
		MaxSeats:     cfg.Selection.MaxSeats,
		Logger:       logger,
	})

	var drafts draft.Store = draft.NewMemoryStore()
	if redisClient != nil {
		drafts = draft.NewRedisStore(redisClient, cfg.Selection.DraftTTL)
	}

	reaper := worker.NewScreenReaper(registry, drafts, cfg.Selection.ReapInterval, cfg.Selection.IdleTimeout, logger)
	go reaper.Start(ctx)
	defer reaper.Stop()

	if cfg.Nats.URL != "" {
		nc, err := push.ConnectNATS(cfg.Nats.URL, serviceName, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()

		_, err = push.SubscribeSeatEvents(nc, cfg.Nats.Subject, registry, logger)
		if err != nil {
			return err
		}
	}

	var redisUniversal redis.UniversalClient
	if redisClient != nil {
		redisUniversal = redisClient
	}

	app, err = NewApp(
		cfg,
		logger,
		redisUniversal,
		appvalidator.NewValidator(),
		NewSessionManager(redisClient),
		client,
		registry,
		drafts,
	)
	if err != nil {
		return err
	}

	defer registry.Shutdown(context.Background())

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	bookings domain.BookingBackend,
	screens *selection.Registry,
	drafts draft.Store) (*Application, error) {

	openapiRouter, err := newOpenAPIRouter()
	if err != nil {
		return nil, err
	}

	return &Application{
		config:         cfg,
		logger:         logger,
		redis:          redisClient,
		validator:      validator,
		sessionManager: sessionManager,
		openapi:        openapiRouter,
		bookings:       bookings,
		screens:        screens,
		drafts:         drafts,
	}, nil
}

// NewSessionManager keeps sessions in Redis when a client is given and in
// process memory otherwise.
func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	if client != nil {
		sessionManager.Store = goredisstore.New(client)
	}
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"
	sessionManager.Cookie.Persist = false
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to instrument redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:        fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:     app.Routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 5 * time.Second,
		// Leaves room for hold calls that wait on the backend timeout.
		WriteTimeout: app.config.Backend.Timeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
