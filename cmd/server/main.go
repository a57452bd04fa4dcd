package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/doctors-portal/internal/auth"
	"github.com/iliyamo/doctors-portal/internal/config"
	"github.com/iliyamo/doctors-portal/internal/database"
	"github.com/iliyamo/doctors-portal/internal/handler"
	"github.com/iliyamo/doctors-portal/internal/logger"
	"github.com/iliyamo/doctors-portal/internal/metrics"
	"github.com/iliyamo/doctors-portal/internal/payment"
	"github.com/iliyamo/doctors-portal/internal/repository"
	"github.com/iliyamo/doctors-portal/internal/router"
	"github.com/iliyamo/doctors-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	lg := logger.New(cfg.IsProduction(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sa, err := auth.LoadServiceAccount(cfg.FirebaseCredentials)
	if err != nil {
		lg.Fatal().Err(err).Msg("firebase credentials")
	}
	keys, err := auth.NewKeySet(ctx, auth.GoogleSecureTokenJWKS, auth.KeySetOptions{})
	if err != nil {
		lg.Fatal().Err(err).Msg("firebase signing keys")
	}
	verifier := auth.NewFirebaseVerifier(sa.ProjectID, keys)

	client, db, err := database.Connect(ctx, database.Options{
		URI:         cfg.MongoConnString(),
		Database:    cfg.DBName,
		MaxPoolSize: cfg.MongoMaxPool,
		MinPoolSize: cfg.MongoMinPool,
		Attempts:    cfg.MongoConnAttempts,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			lg.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	var rdb *redis.Client
	rl := config.LoadRateLimitConfig()
	if rl.Enabled {
		rdb, err = config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
		}
	}

	var events service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitMQURL)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("portal")
	}

	e := router.New(router.Deps{
		Logger:       lg,
		Metrics:      m,
		Redis:        rdb,
		RateLimit:    rl,
		CORSOrigins:  cfg.CORSOrigins,
		BodyLimit:    cfg.BodyLimit,
		Verifier:     verifier,
		Timeout:      cfg.RequestTimeout,
		Appointments: handler.NewAppointmentHandler(repository.NewAppointmentRepo(db), events, cfg.RequestTimeout),
		Users:        handler.NewUserHandler(repository.NewUserRepo(db), events, cfg.RequestTimeout),
		Doctors:      handler.NewDoctorHandler(repository.NewDoctorRepo(db), events, cfg.RequestTimeout, cfg.DoctorImageMaxBytes),
		Payments:     handler.NewPaymentHandler(payment.NewStripeProcessor(cfg.StripeSecret, cfg.PaymentCurrency, nil), cfg.RequestTimeout),
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Info().Str("addr", addr).Str("env", cfg.Env).Bool("events", cfg.EventsEnabled).Bool("rate_limit", rdb != nil).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		lg.Error().Err(err).Msg("shutdown")
	}
}
