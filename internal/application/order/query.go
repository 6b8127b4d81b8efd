package order

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre pedidos.
type QueryUseCase struct {
	repo repository.OrderRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(repo repository.OrderRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// GetByID obtiene un pedido; ErrNotFound si no existe.
func (uc *QueryUseCase) GetByID(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(o), nil
}

// List lista pedidos del más reciente al más antiguo.
func (uc *QueryUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
