package entity

// Roles reconocidos en los tokens del proveedor de identidad.
// admin y manager ven todo el catálogo; el resto depende de asignaciones.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleVendeur    = "vendeur"
	RoleTechnicien = "technicien"
)

// Principal identifica a quien ejecuta una operación (extraído del JWT).
type Principal struct {
	UserID string
	Role   string
}
