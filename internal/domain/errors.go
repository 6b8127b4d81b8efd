package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrTransaction fallo de almacenamiento (commit, deadlock, conexión). La transacción se revirtió; se puede reintentar.
	ErrTransaction = errors.New("transacción fallida")
	// ErrTimeout se agotó la espera por el bloqueo de fila o el contexto del caller.
	ErrTimeout = errors.New("tiempo de espera agotado")
	// ErrDispatch el encolado posterior al commit falló; el pedido ya existe.
	ErrDispatch = errors.New("no se pudo encolar el trabajo")
)

// ErrValidation alias de ErrInvalidInput para la taxonomía de pedidos.
var ErrValidation = ErrInvalidInput

// IsBusinessError indica si err es un error esperado de negocio (corregible por el cliente).
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict)
}
