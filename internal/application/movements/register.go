package movements

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/internal/domain/inventory"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// RegisterInput formulario de creación de un movimiento. Product es el
// snapshot ya cargado del catálogo; la proyección de stock se calcula sobre
// él sin tocar la red.
type RegisterInput struct {
	Product         entity.Product
	Type            string // in | out
	Quantity        int
	Reason          string
	Notes           string
	ReferenceNumber string
}

// RegisterMovementUseCase registra movimientos contra la API y mantiene
// coherentes el historial y el catálogo tras cada operación exitosa.
type RegisterMovementUseCase struct {
	api     Writer
	history *HistoryStore
	catalog *products.Catalog
	log     *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(api Writer, history *HistoryStore, catalog *products.Catalog, log *logger.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{api: api, history: history, catalog: catalog, log: log}
}

// Validate valida el formulario sin tocar la red: producto elegido,
// tipo conocido, cantidad entera positiva y motivo obligatorio.
func (uc *RegisterMovementUseCase) Validate(in RegisterInput) error {
	if in.Product.ID == "" {
		return fmt.Errorf("%w: seleccione un producto", domain.ErrInvalidInput)
	}
	if !entity.ValidMovementType(in.Type) {
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: el motivo es obligatorio", domain.ErrInvalidInput)
	}
	return nil
}

// Preview calcula la previsualización optimista del stock resultante para el
// formulario. Síncrona y puramente local.
func (uc *RegisterMovementUseCase) Preview(in RegisterInput) inventory.StockProjection {
	return inventory.Project(in.Product, in.Type, in.Quantity)
}

// Register valida el formulario, re-ejecuta la proyección como guarda de
// envío (stock insuficiente bloquea; las advertencias no) y hace el POST.
// En éxito dispara la recarga del historial en página 1 y actualiza el stock
// local del catálogo con el valor confirmado por el servidor.
func (uc *RegisterMovementUseCase) Register(ctx context.Context, in RegisterInput) (*entity.Movement, inventory.StockProjection, error) {
	if err := uc.Validate(in); err != nil {
		return nil, inventory.StockProjection{}, err
	}

	proj := uc.Preview(in)
	if proj.Outcome.Blocking() {
		return nil, proj, fmt.Errorf("%w: stock actual %d, salida solicitada %d",
			domain.ErrInsufficientStock, proj.Current, proj.Quantity)
	}

	mv, err := uc.api.CreateMovement(ctx, dto.CreateMovementRequest{
		ProductID:       in.Product.ID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           strings.TrimSpace(in.Notes),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
	})
	if err != nil {
		return nil, proj, fmt.Errorf("registrar movimiento: %w", err)
	}

	uc.log.Info().
		Str("movement_id", mv.ID).
		Str("product_id", mv.ProductID).
		Str("type", mv.Type).
		Int("quantity", mv.Quantity).
		Msg("movimiento registrado")

	uc.catalog.ApplyStock(mv.ProductID, mv.StockAfter)
	uc.history.RefreshFirstPage()
	return mv, proj, nil
}

// Delete elimina un movimiento y recarga la página vigente del historial.
// La paginación resultante es la que devuelva el servidor.
func (uc *RegisterMovementUseCase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id vacío", domain.ErrInvalidInput)
	}
	if err := uc.api.DeleteMovement(ctx, id); err != nil {
		return fmt.Errorf("eliminar movimiento: %w", err)
	}
	uc.log.Info().Str("movement_id", id).Msg("movimiento eliminado")
	uc.history.Refresh()
	return nil
}
