package inventory

import "github.com/jhoicas/StockPOS-api/internal/domain/entity"

// ComputeStatus deriva el estado de disponibilidad de un producto.
// Un override manual (Réservé, Archivé) siempre gana.
func ComputeStatus(stock, minimum int, manualOverride string) string {
	if manualOverride != "" {
		return manualOverride
	}
	switch {
	case stock <= 0:
		return entity.StatusOutOfStock
	case stock < minimum:
		return entity.StatusLowStock
	default:
		return entity.StatusAvailable
	}
}

// IsAlertStatus indica si el estado amerita avisar al equipo de compras.
func IsAlertStatus(status string) bool {
	return status == entity.StatusLowStock || status == entity.StatusOutOfStock
}
