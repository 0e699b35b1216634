package entity

import "github.com/shopspring/decimal"

// Estados de producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product es el snapshot de un producto tal como lo entrega el catálogo.
// Stock es el stock vigente al momento de la carga; la previsualización
// optimista del formulario opera únicamente sobre este snapshot, nunca
// consulta la red.
type Product struct {
	ID       string
	SKU      string // código único
	Name     string
	Unit     string // unidad de medida: und, kg, lt...
	Price    decimal.Decimal
	Stock    int
	MinStock int // umbral de alerta por debajo del cual se advierte
	MaxStock int // 0 = sin máximo definido
	Status   string // active | inactive
}

// HasMax indica si el producto define un stock máximo.
func (p Product) HasMax() bool { return p.MaxStock > 0 }
