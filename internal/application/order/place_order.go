package order

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

const tracerName = "github.com/jhoicas/Pedidos-api/internal/application/order"

// PlaceOrderUseCase crea pedidos de forma transaccional: bloquea la fila del producto
// (SELECT FOR UPDATE), valida y descuenta stock, inserta el pedido y hace Commit o Rollback.
// Solo tras un Commit exitoso encola el trabajo process_order.
type PlaceOrderUseCase struct {
	txRunner   TxRunner
	dispatcher Dispatcher
	log        *logger.Logger
	tracer     trace.Tracer
}

// NewPlaceOrderUseCase construye el caso de uso.
func NewPlaceOrderUseCase(txRunner TxRunner, dispatcher Dispatcher, log *logger.Logger) *PlaceOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PlaceOrderUseCase{
		txRunner:   txRunner,
		dispatcher: dispatcher,
		log:        log.Named("place_order"),
		tracer:     otel.Tracer(tracerName),
	}
}

// PlaceOrderResult pedido confirmado y resultado del encolado.
// DispatchErr no nulo significa que el pedido existe pero no tiene trabajo asociado.
type PlaceOrderResult struct {
	Order       *entity.Order
	DispatchErr error
}

// Dispatched indica si el trabajo process_order quedó encolado.
func (r *PlaceOrderResult) Dispatched() bool {
	return r.DispatchErr == nil
}

// PlaceOrder ejecuta la transacción de creación de pedido.
// Errores: ErrInvalidInput (sin tocar la BD), ErrNotFound, ErrInsufficientStock, ErrTimeout, ErrTransaction.
// Un fallo de encolado no es error del caller: queda en PlaceOrderResult.DispatchErr y en el log.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, productID, quantity int64) (*PlaceOrderResult, error) {
	if productID <= 0 || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	ctx, span := uc.tracer.Start(ctx, "order.place", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int64("order.quantity", quantity),
	))
	defer span.End()

	var created *entity.Order
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Bloquea la fila del producto; otros pedidos del mismo producto esperan aquí
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := product.Debit(quantity); err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, product.ID, product.Stock); err != nil {
			return err
		}
		o := &entity.Order{ProductID: productID, Quantity: quantity}
		if err := orderRepo.Create(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !domain.IsBusinessError(err) {
			uc.log.Warn().Err(err).
				Int64("product_id", productID).
				Int64("quantity", quantity).
				Msg("transacción de pedido revertida")
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", created.ID))

	result := &PlaceOrderResult{Order: created}
	// El pedido ya está confirmado: el encolado no debe depender de la cancelación del request.
	if err := uc.dispatcher.Enqueue(context.WithoutCancel(ctx), created.ID); err != nil {
		if !errors.Is(err, domain.ErrDispatch) {
			err = fmt.Errorf("%w: %w", domain.ErrDispatch, err)
		}
		result.DispatchErr = err
		span.AddEvent("dispatch_failed")
		uc.log.Error().Err(err).
			Str("event", "dispatch_failed").
			Int64("order_id", created.ID).
			Msg("pedido confirmado sin trabajo process_order")
	}
	return result, nil
}

// CreateOrder adapta PlaceOrder al contrato de entrada (request -> OrderResponse).
func (uc *PlaceOrderUseCase) CreateOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	res, err := uc.PlaceOrder(ctx, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(res.Order), nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	return &dto.OrderResponse{
		ID:        o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
	}
}
