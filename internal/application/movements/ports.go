package movements

import (
	"context"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// Lister puerto de lectura del historial de movimientos. La implementación
// real es el cliente REST; los tests inyectan dobles.
type Lister interface {
	// ListMovements consulta la página pedida con los criterios dados.
	// La paginación devuelta es la del servidor, nunca recalculada local.
	ListMovements(ctx context.Context, f FilterCriteria, page int) ([]entity.Movement, dto.Pagination, error)
}

// Writer puerto de escritura de movimientos.
type Writer interface {
	CreateMovement(ctx context.Context, req dto.CreateMovementRequest) (*entity.Movement, error)
	DeleteMovement(ctx context.Context, id string) error
}
