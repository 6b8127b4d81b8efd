package queue

import (
	"context"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Pedidos-api/pkg/config"
)

const (
	batchTimeout = 10 * time.Millisecond
	batchSize    = 100
)

// Producer escritor de mensajes Kafka (*otelkafka.Writer o un fake en tests).
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// MessageReader lector con commit manual de offsets (*kafka.Reader o un fake en tests).
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaProducer crea el writer del topic de trabajos instrumentado con OpenTelemetry:
// cada mensaje lleva el contexto de traza en sus headers.
func NewKafkaProducer(cfg config.KafkaConfig, clientID string, tp trace.TracerProvider) (Producer, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	baseWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // misma key (order_id) -> misma partición
		BatchTimeout: batchTimeout,
		BatchSize:    batchSize,
		RequiredAcks: kafka.RequireAll,
	}

	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(cfg.Topic),
				attribute.String("messaging.kafka.client_id", clientID),
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return writer, nil
}

// NewKafkaReader crea el lector del consumer group de workers. Los offsets se confirman
// explícitamente con CommitMessages después de procesar cada trabajo.
func NewKafkaReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
