package repository

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia para Order. La tabla es de solo inserción.
type OrderRepository interface {
	// Create inserta el pedido y completa ID y CreatedAt asignados por la BD.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
}
