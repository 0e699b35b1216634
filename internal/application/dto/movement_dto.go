package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// MovementDTO representación wire de un movimiento de inventario.
type MovementDTO struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductSKU      string          `json:"sku"`
	ProductUnit     string          `json:"unit"`
	Type            string          `json:"movement_type"`
	Quantity        int             `json:"quantity"`
	StockBefore     int             `json:"stock_before"`
	StockAfter      int             `json:"stock_after"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Reason          string          `json:"reason"`
	Notes           string          `json:"notes,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedByName   string          `json:"created_by_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToEntity convierte el DTO a la entidad del dominio.
func (d MovementDTO) ToEntity() entity.Movement {
	return entity.Movement{
		ID:              d.ID,
		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		ProductSKU:      d.ProductSKU,
		ProductUnit:     d.ProductUnit,
		Type:            d.Type,
		Quantity:        d.Quantity,
		StockBefore:     d.StockBefore,
		StockAfter:      d.StockAfter,
		UnitPrice:       d.UnitPrice,
		Reason:          d.Reason,
		Notes:           d.Notes,
		ReferenceNumber: d.ReferenceNumber,
		CreatedBy:       d.CreatedBy,
		CreatedByName:   d.CreatedByName,
		CreatedAt:       d.CreatedAt,
	}
}

// MovementFromEntity convierte la entidad al DTO wire (lado stub).
func MovementFromEntity(m entity.Movement) MovementDTO {
	return MovementDTO{
		ID:              m.ID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		ProductSKU:      m.ProductSKU,
		ProductUnit:     m.ProductUnit,
		Type:            m.Type,
		Quantity:        m.Quantity,
		StockBefore:     m.StockBefore,
		StockAfter:      m.StockAfter,
		UnitPrice:       m.UnitPrice,
		Reason:          m.Reason,
		Notes:           m.Notes,
		ReferenceNumber: m.ReferenceNumber,
		CreatedBy:       m.CreatedBy,
		CreatedByName:   m.CreatedByName,
		CreatedAt:       m.CreatedAt,
	}
}

// MovementListResponse envelope de GET /api/inventory/movements.
type MovementListResponse struct {
	Success    bool          `json:"success"`
	Data       []MovementDTO `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// MovementResponse envelope de POST /api/inventory/movements.
type MovementResponse struct {
	Success bool        `json:"success"`
	Data    MovementDTO `json:"data"`
}

// CreateMovementRequest body para POST /api/inventory/movements.
type CreateMovementRequest struct {
	ProductID       string `json:"product_id"`
	Type            string `json:"type"` // in | out
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}
