package order

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Los bloqueos de fila se liberan en ambos casos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// Dispatcher entrega el ID de un pedido confirmado a la cola externa de trabajos.
// Retorna en cuanto la cola acusa recibo; no espera el procesamiento.
type Dispatcher interface {
	Enqueue(ctx context.Context, orderID int64) error
}
