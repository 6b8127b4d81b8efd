package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/pkg/config"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// JobHandler ejecuta un trabajo process_order (order.ProcessOrderUseCase).
type JobHandler interface {
	Process(ctx context.Context, orderID int64) error
}

// Worker consume trabajos y confirma el offset solo después de procesarlos (al menos una vez).
type Worker struct {
	reader      MessageReader
	handler     JobHandler
	log         *logger.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewWorker construye el consumidor de trabajos.
func NewWorker(reader MessageReader, handler JobHandler, cfg config.WorkerConfig, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Worker{
		reader:      reader,
		handler:     handler,
		log:         log.Named("worker"),
		maxAttempts: attempts,
		backoff:     cfg.RetryBackoff,
	}
}

// Run procesa mensajes hasta que ctx se cancela. Retorna nil en un apagado ordenado.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Msg("worker iniciado, esperando trabajos")

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			w.log.Error().Err(err).Msg("error leyendo de Kafka")
			if !sleepCtx(ctx, w.backoff) {
				break
			}
			continue
		}

		if err := w.handle(ctx, msg); err != nil {
			// Apagado a mitad del trabajo: sin commit, el broker lo reentrega.
			break
		}
		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				break
			}
			w.log.Error().Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("no se pudo confirmar el offset")
		}
	}

	w.log.Info().Msg("worker detenido")
	return nil
}

// handle solo retorna error si ctx se canceló; cualquier otro resultado confirma el mensaje.
func (w *Worker) handle(ctx context.Context, msg kafka.Message) error {
	msgCtx := extractTraceContext(ctx, msg.Headers)

	var job Job
	if err := json.Unmarshal(msg.Value, &job); err != nil || job.Job != JobProcessOrder {
		w.log.Error().Err(err).
			Bytes("raw_value", msg.Value).
			Int64("offset", msg.Offset).
			Msg("mensaje inválido descartado")
		return nil
	}

	for attempt := 1; ; attempt++ {
		err := w.handler.Process(msgCtx, job.OrderID)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if domain.IsBusinessError(err) {
			w.log.Warn().Err(err).
				Str("job_id", job.ID).
				Int64("order_id", job.OrderID).
				Msg("trabajo descartado")
			return nil
		}
		if attempt >= w.maxAttempts {
			w.log.Error().Err(err).
				Str("event", "job_failed").
				Str("job_id", job.ID).
				Int64("order_id", job.OrderID).
				Int("attempts", attempt).
				Msg("trabajo agotó sus reintentos")
			return nil
		}
		w.log.Warn().Err(err).
			Int64("order_id", job.OrderID).
			Int("attempt", attempt).
			Msg("reintentando trabajo")
		if !sleepCtx(ctx, w.backoff*time.Duration(attempt)) {
			return ctx.Err()
		}
	}
}

// extractTraceContext recupera el contexto de traza que el producer dejó en los headers.
func extractTraceContext(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// sleepCtx espera d o hasta que ctx termine; false si ctx terminó.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
