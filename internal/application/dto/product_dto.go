package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// ProductDTO representación wire del snapshot de un producto.
type ProductDTO struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	MaxStock int             `json:"max_stock"` // 0 = sin máximo
	Status   string          `json:"status"`
}

// ToEntity convierte el DTO a la entidad del dominio.
func (d ProductDTO) ToEntity() entity.Product {
	return entity.Product{
		ID:       d.ID,
		SKU:      d.SKU,
		Name:     d.Name,
		Unit:     d.Unit,
		Price:    d.Price,
		Stock:    d.Stock,
		MinStock: d.MinStock,
		MaxStock: d.MaxStock,
		Status:   d.Status,
	}
}

// ProductFromEntity convierte la entidad al DTO wire (lado stub).
func ProductFromEntity(p entity.Product) ProductDTO {
	return ProductDTO{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Unit:     p.Unit,
		Price:    p.Price,
		Stock:    p.Stock,
		MinStock: p.MinStock,
		MaxStock: p.MaxStock,
		Status:   p.Status,
	}
}

// ProductListResponse envelope de GET /api/products.
type ProductListResponse struct {
	Success bool         `json:"success"`
	Data    []ProductDTO `json:"data"`
}
