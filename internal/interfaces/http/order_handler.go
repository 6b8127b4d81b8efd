package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// OrderCreator crea pedidos (order.PlaceOrderUseCase).
type OrderCreator interface {
	CreateOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error)
}

// OrderReader consultas de pedidos (order.QueryUseCase).
type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*dto.OrderResponse, error)
	List(ctx context.Context, page dto.PageRequest) (*dto.OrderListResponse, error)
}

// OrderHandler maneja las peticiones HTTP para Order.
type OrderHandler struct {
	creator OrderCreator
	reader  OrderReader
	log     *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(creator OrderCreator, reader OrderReader, log *logger.Logger) *OrderHandler {
	return &OrderHandler{creator: creator, reader: reader, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Descuenta stock bajo bloqueo de fila, registra el pedido y encola process_order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Producto y cantidad"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.creator.CreateOrder(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.reader.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.reader.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
