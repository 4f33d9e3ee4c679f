package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"coffeechat-scheduler/internal/app"
	"coffeechat-scheduler/internal/config"
	"coffeechat-scheduler/internal/discovery"
	"coffeechat-scheduler/internal/logging"
	"coffeechat-scheduler/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("invalid database url", "error", err)
		os.Exit(1)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := app.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	var events app.Publisher = app.NopPublisher{}
	if cfg.NATS.URL != "" {
		pub, err := app.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger.Named("events"))
		if err != nil {
			logger.Warn("events disabled", "error", err)
		} else {
			events = pub
		}
	}
	defer events.Close()

	var calendar *app.GoogleCalendarConfig
	if cfg.GoogleEnabled() {
		calendar = app.NewGoogleCalendarConfig(cfg.Google)
	} else {
		logger.Info("google calendar export disabled", "reason", "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GOOGLE_REDIRECT_URL not set")
	}

	appInstance := app.New(app.Options{
		Store:           store,
		Events:          events,
		Calendar:        calendar,
		Logger:          logger,
		Location:        cfg.Location(),
		NoResponseAfter: cfg.Schedule.NoResponseAfter,
		SessionTTL:      cfg.Schedule.SessionTTL,
		MeetingLength:   cfg.Schedule.MeetingLength,
	})
	go appInstance.Sessions.Run(ctx, time.Minute)

	router, err := app.NewRouter(appInstance, app.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.StaticTokens))
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	if cfg.Consul.Address != "" {
		reg, err := discovery.Register(cfg.Consul, cfg.Server.Host, cfg.Server.Port, logger.Named("consul"))
		if err != nil {
			logger.Warn("failed to register with Consul", "error", err)
		} else {
			defer reg.Deregister()
		}
	}

	if err := server.Run(ctx, router, cfg.Addr(), cfg.Server.ShutdownTimeout, logger.Named("http")); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
