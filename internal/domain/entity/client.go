package entity

import "time"

// Client representa un cliente de la tienda (opcional en una venta).
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string // SIRET o número de IVA intracomunitario para clientes profesionales
	CreatedAt time.Time
	UpdatedAt time.Time
}
