package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Pedidos-api/internal/domain"
)

// Product representa un producto del catálogo y su entrada en el libro de stock.
// Stock solo se modifica bajo bloqueo de fila (SELECT FOR UPDATE) dentro de una transacción.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Stock     int64 // nunca negativo en un estado confirmado
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanFulfill indica si hay stock suficiente para quantity unidades.
func (p *Product) CanFulfill(quantity int64) bool {
	return quantity > 0 && p.Stock >= quantity
}

// Debit descuenta quantity del stock en memoria. El caller persiste el nuevo valor.
func (p *Product) Debit(quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if !p.CanFulfill(quantity) {
		return domain.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}
