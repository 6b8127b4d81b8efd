// worker consume los trabajos process_order publicados por la API y los procesa.
//
// Uso: go run ./cmd/worker
// Configuración por env (KAFKA_BROKERS, KAFKA_TOPIC, KAFKA_GROUP_ID, WORKER_PROCESS_DELAY, ...).
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/observability"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/queue"
	"github.com/jhoicas/Pedidos-api/pkg/config"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	serviceName := cfg.App.Name + "-worker"
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", serviceName).
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("iniciando worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel, serviceName)
	if err != nil {
		log.Error().Err(err).Msg("OpenTelemetry deshabilitado")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	processUC := order.NewProcessOrderUseCase(
		postgres.NewOrderRepository(pool), cfg.Worker.ProcessDelay, log,
	)

	reader := queue.NewKafkaReader(cfg.Kafka)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar lector Kafka")
		}
	}()

	worker := queue.NewWorker(reader, processUC, cfg.Worker, log)
	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker finalizado con error")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}
	log.Info().Msg("worker detenido")
}
