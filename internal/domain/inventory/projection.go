package inventory

import "github.com/jhoicas/Inventario-console/internal/domain/entity"

// Outcome resultado de la validación de una proyección de stock.
type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeBelowMinimum      Outcome = "below-minimum-warning"   // advertencia: queda bajo el mínimo
	OutcomeAboveMaximum      Outcome = "above-maximum-warning"   // advertencia: supera el máximo
	OutcomeInsufficientStock Outcome = "insufficient-stock-error" // error: bloquea el registro
)

// Blocking indica si el resultado impide registrar el movimiento.
// Las advertencias de mínimo/máximo se muestran pero no bloquean.
func (o Outcome) Blocking() bool { return o == OutcomeInsufficientStock }

// StockProjection es la previsualización optimista del stock resultante de un
// movimiento antes de confirmarlo contra el servidor. Se calcula de forma
// síncrona sobre el snapshot del producto ya cargado.
type StockProjection struct {
	Current   int
	Quantity  int
	Type      string // in | out
	Projected int
	Outcome   Outcome
}

// Project calcula el stock proyectado de aplicar un movimiento sobre el
// snapshot del producto (servicio de dominio, pura):
//
//	salida:  proyectado = actual − cantidad; cantidad > actual → error bloqueante;
//	         proyectado < mínimo → advertencia.
//	entrada: proyectado = actual + cantidad; con máximo definido y
//	         proyectado > máximo → advertencia.
//
// La misma validación se re-ejecuta como guarda justo antes del POST.
func Project(p entity.Product, movementType string, quantity int) StockProjection {
	pr := StockProjection{
		Current:  p.Stock,
		Quantity: quantity,
		Type:     movementType,
		Outcome:  OutcomeOK,
	}

	switch movementType {
	case entity.MovementTypeOut:
		pr.Projected = p.Stock - quantity
		if quantity > p.Stock {
			pr.Outcome = OutcomeInsufficientStock
		} else if pr.Projected < p.MinStock {
			pr.Outcome = OutcomeBelowMinimum
		}
	case entity.MovementTypeIn:
		pr.Projected = p.Stock + quantity
		if p.HasMax() && pr.Projected > p.MaxStock {
			pr.Outcome = OutcomeAboveMaximum
		}
	default:
		pr.Projected = p.Stock
	}

	return pr
}
