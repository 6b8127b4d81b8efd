package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Pedidos-api/internal/domain"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx usado por los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE relevantes.
const (
	codeForeignKeyViolation = "23503"
	codeLockNotAvailable    = "55P03" // lock_timeout
	codeQueryCanceled       = "57014" // statement_timeout / cancelación
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isTimeout indica espera de bloqueo agotada o contexto vencido/cancelado.
func isTimeout(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeQueryCanceled:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// classify traduce un error de almacenamiento a la taxonomía de dominio.
// Los errores de negocio pasan sin cambios; el resto se envuelve en ErrTimeout o ErrTransaction.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsBusinessError(err) || errors.Is(err, domain.ErrTimeout) || errors.Is(err, domain.ErrTransaction) {
		return err
	}
	if isTimeout(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransaction, err)
}

