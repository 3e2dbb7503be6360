package entity

import "time"

// ProductAssignment otorga visibilidad de un producto a un usuario sin rol privilegiado.
// ProductType replica la categoría del producto.
type ProductAssignment struct {
	ID          string
	ProductID   string
	ProductType string
	AssignedTo  string
	CreatedAt   time.Time
}
