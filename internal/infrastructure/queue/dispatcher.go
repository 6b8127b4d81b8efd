package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

var _ order.Dispatcher = (*KafkaDispatcher)(nil)

// KafkaDispatcher publica trabajos process_order en Kafka.
type KafkaDispatcher struct {
	producer Producer
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewKafkaDispatcher construye el dispatcher. timeout > 0 acota la espera por el ack del broker.
func NewKafkaDispatcher(producer Producer, timeout time.Duration, log *logger.Logger) *KafkaDispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaDispatcher{
		producer: producer,
		timeout:  timeout,
		log:      log.Named("dispatcher"),
		now:      time.Now,
	}
}

// Enqueue publica el trabajo del pedido y retorna cuando el broker lo acusa.
// Cualquier fallo sale envuelto en domain.ErrDispatch.
func (d *KafkaDispatcher) Enqueue(ctx context.Context, orderID int64) error {
	job := NewProcessOrderJob(orderID, d.now())
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: encode job: %w", domain.ErrDispatch, err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "job", Value: []byte(job.Job)},
		},
	}
	if err := d.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("%w: order %d: %w", domain.ErrDispatch, orderID, err)
	}

	d.log.Debug().
		Str("job_id", job.ID).
		Int64("order_id", orderID).
		Msg("trabajo encolado")
	return nil
}
