package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/config"
	consenthandler "github.com/swasthlink/health-api/internal/handler/consent"
	doctorhandler "github.com/swasthlink/health-api/internal/handler/doctor"
	healthhandler "github.com/swasthlink/health-api/internal/handler/health"
	hospitalhandler "github.com/swasthlink/health-api/internal/handler/hospital"
	patienthandler "github.com/swasthlink/health-api/internal/handler/patient"
	"github.com/swasthlink/health-api/internal/repository/postgres"
	"github.com/swasthlink/health-api/internal/router"
	"github.com/swasthlink/health-api/internal/service/access"
	"github.com/swasthlink/health-api/internal/service/admission"
	"github.com/swasthlink/health-api/internal/service/consent"
	"github.com/swasthlink/health-api/internal/service/event"
	"github.com/swasthlink/health-api/internal/service/identity"
	"github.com/swasthlink/health-api/internal/service/patient"
	"github.com/swasthlink/health-api/pkg/logger"
	"github.com/swasthlink/health-api/pkg/messaging"
	redisbroker "github.com/swasthlink/health-api/pkg/messaging/redis"
	"github.com/swasthlink/health-api/pkg/metrics"
	"github.com/swasthlink/health-api/pkg/worker"
)

func main() {
	appLogger := logger.NewLogger(nil)
	log.Logger = *appLogger.Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	consentRepo := postgres.NewConsentRepository(db)
	relRepo := postgres.NewRelationshipRepository(db)
	encounterRepo := postgres.NewEncounterRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	txRunner := postgres.NewTxRunner(db)

	appMetrics := metrics.NewMetrics("health_api")

	identitySvc := identity.NewService(cfg.Identity.HMACKey)
	eventSvc := event.NewService(outboxRepo)
	gate := access.NewGateSync(relRepo, cfg.Consent.ScopedUnlock)

	consentSvc := consent.NewService(
		consentRepo,
		patientRepo,
		doctorRepo,
		hospitalRepo,
		encounterRepo,
		relRepo,
		gate,
		eventSvc,
		txRunner,
		cfg.Consent,
		appMetrics,
	)
	accessSvc := access.NewService(relRepo, patientRepo, consentRepo, consentSvc)
	admissionSvc := admission.NewService(hospitalRepo, patientRepo, consentRepo, identitySvc, eventSvc, cfg.Consent)
	patientSvc := patient.NewService(patientRepo, identitySvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.URL, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()

		processor := worker.NewOutboxProcessor(outboxRepo, broker, appMetrics, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
		go processor.Start(ctx)
	} else {
		log.Warn().Msg("redis.url not set, outbox events will not be published")
	}

	r := router.NewRouter(cfg,
		healthhandler.NewHandler(db),
		consenthandler.NewHandler(consentSvc, cfg.Consent.EnableCleanup),
		doctorhandler.NewHandler(accessSvc),
		hospitalhandler.NewHandler(admissionSvc),
		patienthandler.NewHandler(patientSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
