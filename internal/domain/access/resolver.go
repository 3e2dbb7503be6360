package access

import "github.com/jhoicas/StockPOS-api/internal/domain/entity"

// Motivos de la decisión de acceso.
const (
	ReasonAdmin      = "admin"
	ReasonManager    = "manager"
	ReasonAssignment = "assignment"
	ReasonNone       = "none"
)

// Scope es la decisión de acceso de un usuario sobre un producto.
type Scope struct {
	CanView        bool
	CanEdit        bool
	CanViewPricing bool
	Reason         string
}

// ResolveAccess decide qué puede hacer el usuario con el producto.
// Función pura: no consulta almacenamiento ni guarda caché.
func ResolveAccess(role, userID, productID, productType string, assignments []entity.ProductAssignment) Scope {
	switch role {
	case entity.RoleAdmin:
		return Scope{CanView: true, CanEdit: true, CanViewPricing: true, Reason: ReasonAdmin}
	case entity.RoleManager:
		return Scope{CanView: true, CanEdit: true, CanViewPricing: true, Reason: ReasonManager}
	}
	for _, a := range assignments {
		if a.ProductID == productID && a.ProductType == productType && a.AssignedTo == userID {
			return Scope{CanView: true, Reason: ReasonAssignment}
		}
	}
	return Scope{Reason: ReasonNone}
}
