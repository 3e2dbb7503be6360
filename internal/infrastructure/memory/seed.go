package memory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/inventory"
)

// NewSeeded crea un almacenamiento con un catálogo de demostración.
func NewSeeded() *Store {
	s := NewStore()
	now := time.Now().UTC()
	seed := []struct {
		ref, name, category, brand string
		cost, price                string
		stock, minimum             int
		attrs                      map[string]any
	}{
		{"LAP-ASUS-TUF15", "ASUS TUF Gaming F15", entity.CategoryLaptop, "ASUS", "720", "1099.99", 6, 3, map[string]any{"cpu": "i7-12700H", "ram_gb": 16, "gpu": "RTX 4060"}},
		{"LAP-LEN-T14", "Lenovo ThinkPad T14", entity.CategoryLaptop, "Lenovo", "810", "1249.00", 2, 3, map[string]any{"cpu": "Ryzen 7 PRO", "ram_gb": 32}},
		{"MON-LG-27GP850", "LG UltraGear 27GP850", entity.CategoryMonitor, "LG", "260", "399.90", 9, 4, map[string]any{"size_in": 27, "refresh_hz": 165}},
		{"PER-LOGI-GPRO", "Logitech G Pro X Superlight", entity.CategoryPeripheral, "Logitech", "78", "129.99", 25, 10, map[string]any{"type": "souris", "wireless": true}},
		{"CHR-SEC-TITAN", "Secretlab Titan Evo", entity.CategoryGamingChair, "Secretlab", "310", "549.00", 0, 2, map[string]any{"size": "R"}},
		{"PC-GAMER-R7", "PC Gamer Ryzen 7 / RTX 4070", entity.CategoryPrebuiltPC, "Maison", "1150", "1699.00", 3, 2, map[string]any{"cpu": "Ryzen 7 7800X3D", "gpu": "RTX 4070"}},
		{"CMP-SSD-990PRO", "Samsung 990 PRO 2 To", entity.CategoryComponent, "Samsung", "120", "189.90", 14, 5, map[string]any{"interface": "NVMe PCIe 4.0"}},
	}
	for _, p := range seed {
		attrs, _ := json.Marshal(p.attrs)
		id := uuid.New().String()
		s.st.products[id] = entity.Product{
			ID:           id,
			Reference:    p.ref,
			Name:         p.name,
			Category:     p.category,
			Brand:        p.brand,
			Attributes:   attrs,
			PurchaseCost: decimal.RequireFromString(p.cost),
			SalePrice:    decimal.RequireFromString(p.price),
			StockOnHand:  p.stock,
			StockMinimum: p.minimum,
			Status:       inventory.ComputeStatus(p.stock, p.minimum, ""),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return s
}
