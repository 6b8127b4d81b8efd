package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Ensure TxRunner implements order.TxRunner.
var _ order.TxRunner = (*TxRunner)(nil)

// TxBeginner abre transacciones (*pgxpool.Pool o un mock en tests).
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db          TxBeginner
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout > 0 acota la espera por bloqueos de fila dentro de cada tx.
func NewTxRunner(db TxBeginner, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de infraestructura salen como domain.ErrTimeout o domain.ErrTransaction.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	// Rollback aun si ctx venció: libera el bloqueo de fila en el servidor. No-op tras Commit.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.lockTimeout > 0 {
		ms := r.lockTimeout.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		// SET no admite parámetros; ms es un entero controlado por configuración.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)); err != nil {
			return classify("set lock_timeout", err)
		}
	}

	if err := fn(NewProductRepository(tx), NewOrderRepository(tx)); err != nil {
		return classify("order transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}
