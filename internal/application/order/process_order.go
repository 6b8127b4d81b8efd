package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// ProcessOrderUseCase trabajo asíncrono process_order: simula el procesamiento posterior
// de un pedido confirmado (facturación, envío) y lo registra en el log.
type ProcessOrderUseCase struct {
	orders repository.OrderRepository
	delay  time.Duration
	log    *logger.Logger
	tracer trace.Tracer
}

// NewProcessOrderUseCase construye el caso de uso. delay simula el costo del procesamiento.
func NewProcessOrderUseCase(orders repository.OrderRepository, delay time.Duration, log *logger.Logger) *ProcessOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProcessOrderUseCase{
		orders: orders,
		delay:  delay,
		log:    log.Named("process_order"),
		tracer: otel.Tracer(tracerName),
	}
}

// Process procesa el pedido orderID. Retorna domain.ErrNotFound si el pedido no existe
// (trabajo huérfano, no reintentable). Respeta la cancelación de ctx durante la espera.
func (uc *ProcessOrderUseCase) Process(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return domain.ErrInvalidInput
	}
	ctx, span := uc.tracer.Start(ctx, "order.process", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
	))
	defer span.End()

	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if o == nil {
		span.SetStatus(codes.Error, "order not found")
		return domain.ErrNotFound
	}

	if uc.delay > 0 {
		timer := time.NewTimer(uc.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	uc.log.Info().
		Int64("order_id", o.ID).
		Int64("product_id", o.ProductID).
		Int64("quantity", o.Quantity).
		Msgf("Order #%d processed", o.ID)
	return nil
}
