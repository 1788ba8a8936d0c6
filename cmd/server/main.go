package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sistemaservicios/internal/config"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/repository"
	"sistemaservicios/internal/router"
	"sistemaservicios/internal/service"
	"sistemaservicios/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	servicios, err := config.CargarServicios(cfg.ServiciosConfig)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ServiciosConfig).Msg("failed to load servicios")
	}
	log.Info().Int("servicios", len(servicios)).Msg("catálogo de servicios cargado")

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var kafka *infra.KafkaPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafka = infra.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer kafka.Close()
	} else {
		log.Warn().Msg("KAFKA_BROKERS vacío: eventos de caja mayor deshabilitados")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async jobs: acta PDF rendering and e-mail delivery.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	conteoRepo := repository.NewConteoRepository(db)

	pool := worker.NewPool(rdb)
	pool.Handle(worker.JobActaConteo, worker.NewActaWorker(conteoRepo, dispatcher, cfg.ActasPath, cfg.Destinatarios()))
	pool.Handle(worker.JobEmail, worker.NewEmailWorker(mailer))
	pool.Start(ctx, cfg.WorkerPoolSize)

	// Continuity audit only reads, so it runs without an event publisher.
	worker.StartAuditoriaCron(ctx, worker.AuditoriaConfig{
		Caja:          service.NewCajaMayorService(repository.NewCajaMayorRepository(db), nil),
		Emails:        dispatcher,
		Destinatarios: cfg.Destinatarios(),
		Intervalo:     cfg.AuditoriaIntervalo,
	})

	// Dead-lettered e-mails wait until the SMTP breaker lets traffic through.
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		RDB:   rdb,
		Colas: []string{worker.QueueActas, worker.QueueEmail},
		Disponible: func(queue string) bool {
			return queue != worker.QueueEmail || mailer.Disponible()
		},
		Intervalo:      cfg.DLQReintentoIntervalo,
		MaxReencolados: cfg.DLQMaxReencolados,
	})

	r := router.New(cfg, db, rdb, router.Deps{
		Servicios: servicios,
		Kafka:     kafka,
		Actas:     dispatcher,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("caja mayor backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
