package entity

import "time"

// Order pedido de un único producto. ID y CreatedAt los asigna el almacenamiento al insertar.
// ProductID es una referencia por identificador, no un puntero vivo al producto.
type Order struct {
	ID        int64
	ProductID int64
	Quantity  int64
	CreatedAt time.Time
}
