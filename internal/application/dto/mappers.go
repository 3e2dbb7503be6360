package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain/access"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/pkg/money"
)

// NewProductResponse construye la salida de un producto. Sin CanViewPricing se omiten
// costo y precio de venta.
func NewProductResponse(p *entity.Product, scope access.Scope) ProductResponse {
	out := ProductResponse{
		ID:           p.ID,
		Reference:    p.Reference,
		Name:         p.Name,
		Category:     p.Category,
		Brand:        p.Brand,
		Attributes:   p.Attributes,
		StockOnHand:  p.StockOnHand,
		StockMinimum: p.StockMinimum,
		Status:       p.Status,
		ManualStatus: p.ManualStatus,
		Access: &AccessResponse{
			CanView:        scope.CanView,
			CanEdit:        scope.CanEdit,
			CanViewPricing: scope.CanViewPricing,
			Reason:         scope.Reason,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if scope.CanViewPricing {
		cost := money.Round(p.PurchaseCost)
		price := money.Round(p.SalePrice)
		out.PurchaseCost = &cost
		out.SalePrice = &price
	}
	return out
}

// NewMovementResponse construye la salida de un movimiento.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Kind:        m.Kind,
		Delta:       m.Delta,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reference:   m.Reference,
		UnitCost:    m.UnitCost,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// NewSaleResponse construye la salida de una venta, redondeando importes a 2 decimales.
func NewSaleResponse(s *entity.SaleTransaction) SaleResponse {
	out := SaleResponse{
		ID:          s.ID,
		Number:      s.Number,
		SoldAt:      s.SoldAt,
		ClientID:    s.ClientID,
		TotalHT:     money.Round(s.TotalHT),
		TVA:         money.Round(s.TVA),
		TotalTTC:    money.Round(s.TotalTTC),
		PaymentMode: s.PaymentMode,
		Status:      s.Status,
		Notes:       s.Notes,
		SoldBy:      s.SoldBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, SaleLineResponse{
			ID:              l.ID,
			Position:        l.Position,
			ProductID:       l.ProductID,
			ProductCategory: l.ProductCategory,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			WithTax:         l.WithTax,
			UnitPriceHT:     roundPtr(l.UnitPriceHT),
			UnitPriceTTC:    roundPtr(l.UnitPriceTTC),
			TotalHT:         roundPtr(l.TotalHT),
			TotalTTC:        roundPtr(l.TotalTTC),
		})
	}
	return out
}

// NewReturnResponse construye la salida de una devolución.
func NewReturnResponse(r *entity.ReturnRecord) ReturnResponse {
	return ReturnResponse{
		ID:            r.ID,
		Number:        r.Number,
		SaleID:        r.SaleID,
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		UnitPrice:     roundPtr(r.UnitPrice),
		Amount:        roundPtr(r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))),
		Reason:        r.Reason,
		Kind:          r.Kind,
		RefundMode:    r.RefundMode,
		RefundAccount: r.RefundAccount,
		Status:        r.Status,
		Restocked:     r.Restocked,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ProcessedAt:   r.ProcessedAt,
	}
}

// NewExchangeResponse construye la salida de un cambio.
func NewExchangeResponse(e *entity.ExchangeRecord) ExchangeResponse {
	return ExchangeResponse{
		ID:              e.ID,
		Number:          e.Number,
		ReturnID:        e.ReturnID,
		OldProductID:    e.OldProductID,
		OldUnitPrice:    roundPtr(e.OldUnitPrice),
		OldQuantity:     e.OldQuantity,
		NewProductID:    e.NewProductID,
		NewUnitPrice:    roundPtr(e.NewUnitPrice),
		NewQuantity:     e.NewQuantity,
		PriceDifference: money.Round(e.PriceDifference),
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		FinalizedAt:     e.FinalizedAt,
	}
}

// NewClientResponse construye la salida de un cliente.
func NewClientResponse(c *entity.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxID:     c.TaxID,
		CreatedAt: c.CreatedAt,
	}
}

// NewAssignmentResponse construye la salida de una asignación.
func NewAssignmentResponse(a *entity.ProductAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		ProductType: a.ProductType,
		AssignedTo:  a.AssignedTo,
		CreatedAt:   a.CreatedAt,
	}
}

func roundPtr(d decimal.Decimal) *decimal.Decimal {
	r := money.Round(d)
	return &r
}
