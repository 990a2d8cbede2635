// Command server boots the school-management backend: configuration, logging,
// tracing, the SQLite relational store, the durable key-value backend, the
// notification and error-reporting side channels, and finally the Gin HTTP
// server with graceful shutdown.
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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/edumunicipal/school-backend/internal/config"
	httpapi "github.com/edumunicipal/school-backend/internal/http"
	"github.com/edumunicipal/school-backend/internal/kv"
	"github.com/edumunicipal/school-backend/internal/notify"
	"github.com/edumunicipal/school-backend/internal/observability"
	"github.com/edumunicipal/school-backend/internal/repo"
	"github.com/edumunicipal/school-backend/internal/report"
	"github.com/edumunicipal/school-backend/internal/services"
	"github.com/edumunicipal/school-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()
	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = time.RFC3339
	sysutil.SetLogLevel(cfg.LogLevel)
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", cfg.OTEL.ServiceName).
		Logger()
	if cfg.LogPretty {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin not installed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	kvs, err := openKV(cfg.KV, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KV.Backend).Msg("open kv store failed")
	}

	var rep report.Reporter
	if cfg.Rollbar.Token != "" {
		rb := report.NewRollbarReporter(log, cfg.Rollbar.Token, cfg.Rollbar.Environment, sysutil.FirstNonEmpty(cfg.Rollbar.CodeVersion, version))
		defer rb.Close()
		rep = rb
	} else {
		rep = report.NewLogReporter(log)
	}

	var notifier notify.Notifier
	if cfg.Notify.SendGridKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.Notify.SendGridKey, cfg.Notify.FromName, cfg.Notify.FromAddress)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set; transfer notifications go to the log")
		notifier = &notify.ConsoleNotifier{Log: log}
	}

	app := services.NewApp(kvs, db, rep, notifier, nil)
	app.Load(ctx)

	r := gin.New()
	httpapi.RegisterRoutes(r, app, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("kv_backend", cfg.KV.Backend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
}

// openKV selects the durable key-value backend from configuration. The file
// backend is the default; redis suits multi-instance deployments and gorm
// keeps everything in the SQLite file alongside the relational tables.
func openKV(cfg config.KVConfig, db *gorm.DB) (kv.Store, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		// Keys are already namespaced ("school/..."); no extra prefix.
		return kv.NewRedisStore(client, ""), nil
	case "gorm":
		return kv.NewGormStore(db), nil
	default:
		return kv.NewFileStore(cfg.DataDir)
	}
}
