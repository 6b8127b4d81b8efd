package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// RoleAdmin rol autorizado a modificar el catálogo.
const RoleAdmin = "admin"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PlaceOrder  OrderCreator
	OrderQuery  OrderReader
	ProductUC   ProductService
	HealthCheck func(ctx context.Context) error // p.ej. ping a PostgreSQL; nil = siempre ok
	ServiceName string
	JWTSecret   string // vacío = escrituras de catálogo sin autenticación
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", healthHandler(deps))

	// Orders (público)
	orderHandler := NewOrderHandler(deps.PlaceOrder, deps.OrderQuery, log.Named("http.orders"))
	orders := app.Group("/orders")
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)

	// Products: lectura pública; escritura con Bearer Token + rol admin si hay JWT_SECRET
	productHandler := NewProductHandler(deps.ProductUC, log.Named("http.products"))
	products := app.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	guard := func(h fiber.Handler) []fiber.Handler {
		if deps.JWTSecret == "" {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireRole(RoleAdmin), h}
	}
	products.Post("/", guard(productHandler.Create)...)
	products.Put("/:id", guard(productHandler.Update)...)
	products.Delete("/:id", guard(productHandler.Delete)...)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.HealthCheck(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "degraded",
					"service": deps.ServiceName,
					"error":   err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
