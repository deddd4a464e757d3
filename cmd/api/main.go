package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/streamflix-backend/api/controllers"
	"github.com/angelmondragon/streamflix-backend/api/routes"
	"github.com/angelmondragon/streamflix-backend/internal/auth"
	"github.com/angelmondragon/streamflix-backend/internal/genres"
	"github.com/angelmondragon/streamflix-backend/internal/profiles"
	"github.com/angelmondragon/streamflix-backend/internal/subscriptions"
	"github.com/angelmondragon/streamflix-backend/internal/titles"
	"github.com/angelmondragon/streamflix-backend/internal/users"
	"github.com/angelmondragon/streamflix-backend/internal/viewing"
	"github.com/angelmondragon/streamflix-backend/pkg/auth/session"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/mailer"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
	"github.com/angelmondragon/streamflix-backend/pkg/migrate"
	"github.com/angelmondragon/streamflix-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = newLogger(cfg)
	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		_ = logg.Close()
		os.Exit(1)
	}
	_ = logg.Close()
}

func newLogger(cfg *config.Config) *logger.Logger {
	opts := logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	}
	if cfg.App.LogFile != "" {
		opts.File = &logger.FileOptions{
			Path:       cfg.App.LogFile,
			MaxSizeMB:  cfg.App.LogMaxSizeMB,
			MaxBackups: cfg.App.LogMaxBackups,
			MaxAgeDays: cfg.App.LogMaxAgeDays,
		}
	}
	return logger.New(opts)
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	sqlDB, err := dbClient.SQLDB()
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.DB.Driver),
		metrics.NewRedisPoolCollector(redisClient.PoolStats),
	)

	mail, err := mailer.New(cfg, logg, metrics.NewMailMetrics(registry))
	if err != nil {
		return err
	}

	deps, err := buildServices(cfg, logg, dbClient, sessionManager, mail, registry)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.Store = redisClient
	deps.Sessions = sessionManager
	deps.Metrics = metrics.NewHTTPMetrics(registry)
	deps.Gatherer = registry
	deps.Checks = []controllers.HealthCheck{
		{Name: "database", Pinger: dbClient},
		{Name: "redis", Pinger: redisClient},
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: routes.NewRouter(deps),
	}

	logCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": server.Addr})
	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	mail mailer.Mailer,
	registry prometheus.Registerer,
) (routes.Deps, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Mailer:         mail,
		Logger:         logg,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:              subscriptions.NewRepository(conn),
		Users:             userRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           metrics.NewSubscriptionMetrics(registry),
		PlanCacheTTL:      cfg.Catalog.PlanCacheTTL,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	titleService, err := titles.NewService(titles.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	genreService, err := genres.NewService(genres.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}
	profileService, err := profiles.NewService(profiles.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}
	viewingService, err := viewing.NewService(viewing.ServiceParams{
		Repo:              viewing.NewRepository(conn),
		TransactionRunner: dbClient,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Auth:          authService,
		Users:         userService,
		Subscriptions: subscriptionService,
		Titles:        titleService,
		Genres:        genreService,
		Profiles:      profileService,
		Viewing:       viewingService,
	}, nil
}
