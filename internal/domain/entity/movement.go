package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (value object conceptual).
const (
	MovementTypeIn  = "in"  // entrada
	MovementTypeOut = "out" // salida
)

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// Movement representa un movimiento de inventario tal como lo expone la API.
// Para el cliente es de solo lectura: StockBefore/StockAfter los mantiene el
// backend (StockAfter − StockBefore = ±Quantity) y aquí solo se muestran.
type Movement struct {
	ID              string
	ProductID       string
	ProductName     string // denormalizado por el backend
	ProductSKU      string
	ProductUnit     string
	Type            string // in | out
	Quantity        int    // siempre positivo; el signo lo da Type
	StockBefore     int
	StockAfter      int
	UnitPrice       decimal.Decimal
	Reason          string
	Notes           string
	ReferenceNumber string
	CreatedBy       string
	CreatedByName   string
	CreatedAt       time.Time
}

// Value devuelve el valor monetario del movimiento (cantidad × precio unitario).
func (m Movement) Value() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}
