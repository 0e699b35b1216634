package stubapi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// Seed carga datos de demostración: dos usuarios, un catálogo pequeño y un
// historial de movimientos repartido en los últimos días. Los movimientos se
// aplican por ApplyMovement para que stock_before/stock_after queden
// coherentes con el stock final de cada producto.
func Seed(s *Store) error {
	admin, err := s.AddUser("Ana Admin", "admin@demo.co", "admin123", "admin")
	if err != nil {
		return fmt.Errorf("seed: usuario admin: %w", err)
	}
	bodega, err := s.AddUser("Luis Bodega", "bodega@demo.co", "bodega123", "bodeguero")
	if err != nil {
		return fmt.Errorf("seed: usuario bodega: %w", err)
	}

	products := []entity.Product{
		{SKU: "CAF-001", Name: "Café molido 500g", Unit: "und", Price: decimal.RequireFromString("18500"), MinStock: 10, MaxStock: 120},
		{SKU: "AZU-002", Name: "Azúcar refinada", Unit: "kg", Price: decimal.RequireFromString("4200"), MinStock: 20, MaxStock: 200},
		{SKU: "PAN-003", Name: "Panela orgánica", Unit: "und", Price: decimal.RequireFromString("6800"), MinStock: 8},
		{SKU: "ARR-004", Name: "Arroz premium 1kg", Unit: "und", Price: decimal.RequireFromString("5400"), MinStock: 30, MaxStock: 300},
		{SKU: "ACE-005", Name: "Aceite de girasol 1L", Unit: "und", Price: decimal.RequireFromString("12900"), MinStock: 12, MaxStock: 80},
		{SKU: "LEC-006", Name: "Leche entera UHT", Unit: "lt", Price: decimal.RequireFromString("3800"), MinStock: 24},
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, s.AddProduct(p).ID)
	}

	now := time.Now()
	seedMovs := []struct {
		product  int
		mvType   string
		quantity int
		reason   string
		ref      string
		user     entity.User
		daysAgo  int
	}{
		{0, "in", 60, "compra proveedor", "OC-1001", admin, 6},
		{1, "in", 150, "compra proveedor", "OC-1001", admin, 6},
		{2, "in", 40, "compra proveedor", "OC-1002", admin, 5},
		{3, "in", 200, "compra proveedor", "OC-1002", admin, 5},
		{4, "in", 50, "compra proveedor", "OC-1003", bodega, 4},
		{5, "in", 90, "compra proveedor", "OC-1003", bodega, 4},
		{0, "out", 12, "venta mostrador", "", bodega, 3},
		{1, "out", 35, "venta mayorista", "FV-2201", admin, 3},
		{3, "out", 48, "venta mayorista", "FV-2202", admin, 2},
		{4, "out", 6, "merma por vencimiento", "", bodega, 2},
		{0, "in", 20, "devolución de cliente", "DV-31", bodega, 1},
		{5, "out", 18, "venta mostrador", "", bodega, 1},
		{2, "out", 9, "venta mostrador", "", admin, 0},
		{3, "in", 80, "compra proveedor", "OC-1004", admin, 0},
	}

	for _, sm := range seedMovs {
		_, err := s.ApplyMovement(ApplyInput{
			ProductID:       ids[sm.product],
			Type:            sm.mvType,
			Quantity:        sm.quantity,
			Reason:          sm.reason,
			ReferenceNumber: sm.ref,
			UserID:          sm.user.ID,
			UserName:        sm.user.Name,
			At:              now.AddDate(0, 0, -sm.daysAgo),
		})
		if err != nil {
			return fmt.Errorf("seed: movimiento %s %s: %w", sm.mvType, sm.reason, err)
		}
	}
	return nil
}
