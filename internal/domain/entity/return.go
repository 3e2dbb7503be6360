package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una devolución. rembourse y refuse son terminales.
const (
	ReturnStatusPending   = "en_attente"
	ReturnStatusProcessed = "traite"
	ReturnStatusRefunded  = "rembourse"
	ReturnStatusRefused   = "refuse"
)

// Tipos de devolución.
const (
	ReturnKindSimple   = "simple"
	ReturnKindExchange = "echange"
)

// Estados de un cambio. finalise y annule son terminales.
const (
	ExchangeStatusPending   = "en_attente"
	ExchangeStatusFinalized = "finalise"
	ExchangeStatusCancelled = "annule"
)

// ReturnRecord registra la devolución de un artículo. Registrarla no mueve stock:
// el reingreso es un paso explícito (Restocked).
type ReturnRecord struct {
	ID            string
	Number        string
	SaleID        string
	ProductID     string
	Quantity      int
	UnitPrice     decimal.Decimal
	Reason        string
	Kind          string
	RefundMode    string
	RefundAccount string
	Status        string
	Restocked     bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
}

// IsTerminal indica si la devolución ya no admite transiciones.
func (r *ReturnRecord) IsTerminal() bool {
	return r.Status == ReturnStatusRefunded || r.Status == ReturnStatusRefused
}

// ExchangeRecord registra un cambio de un artículo por otro.
// PriceDifference = NewUnitPrice*NewQuantity - OldUnitPrice*OldQuantity (positivo: paga el cliente).
type ExchangeRecord struct {
	ID              string
	Number          string
	ReturnID        string
	OldProductID    string
	OldUnitPrice    decimal.Decimal
	OldQuantity     int
	NewProductID    string
	NewUnitPrice    decimal.Decimal
	NewQuantity     int
	PriceDifference decimal.Decimal
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FinalizedAt     *time.Time
}
