package movements

import (
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// Claves de ordenamiento aceptadas por el backend.
const (
	SortByCreatedAt   = "created_at"
	SortByQuantity    = "quantity"
	SortByProductName = "product_name"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// DefaultPageSize tamaño de página por defecto del historial.
const DefaultPageSize = 20

// FilterCriteria criterios de filtro/orden/paginación del historial de
// movimientos. Se muta únicamente a través de los setters del store y se
// reemplaza completo en Reset/ApplyPreset. El orquestador lo captura por
// valor al emitir cada petición.
type FilterCriteria struct {
	StartDate       time.Time // cero = sin filtro
	EndDate         time.Time // cero = sin filtro
	MovementType    string    // "" | in | out
	ProductID       string
	Reason          string // subcadena de texto libre (campo con debounce)
	CreatedBy       string
	ReferenceNumber string
	MinQuantity     int // 0 = sin límite inferior
	MaxQuantity     int // 0 = sin límite superior
	SortBy          string
	SortOrder       string
	PageSize        int
}

// DefaultFilters devuelve los criterios por defecto documentados:
// sin filtros, ordenado por fecha descendente, pageSize entradas por página.
func DefaultFilters(pageSize int) FilterCriteria {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return FilterCriteria{
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		PageSize:  pageSize,
	}
}

// Validate verifica los invariantes del criterio: min ≤ max cuando ambos
// están definidos y fecha inicial ≤ final cuando ambas están definidas.
func (f FilterCriteria) Validate() error {
	if f.MinQuantity > 0 && f.MaxQuantity > 0 && f.MinQuantity > f.MaxQuantity {
		return fmt.Errorf("%w: cantidad mínima mayor que la máxima", domain.ErrInvalidInput)
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.StartDate.After(f.EndDate) {
		return fmt.Errorf("%w: fecha inicial posterior a la final", domain.ErrInvalidInput)
	}
	if f.MovementType != "" && !entity.ValidMovementType(f.MovementType) {
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, f.MovementType)
	}
	if f.PageSize <= 0 {
		return fmt.Errorf("%w: tamaño de página no positivo", domain.ErrInvalidInput)
	}
	return nil
}

// Preset atajo con nombre que rellena el rango de fechas relativo a "ahora".
type Preset string

const (
	PresetToday     Preset = "today"
	PresetThisWeek  Preset = "week"
	PresetThisMonth Preset = "month"
)

// PresetRange calcula el par inicio/fin de un preset respecto a now (hora
// local). La semana es ISO: lunes 00:00 hasta el fin del día de hoy.
func PresetRange(p Preset, now time.Time) (start, end time.Time, err error) {
	end = endOfDay(now)
	switch p {
	case PresetToday:
		start = startOfDay(now)
	case PresetThisWeek:
		// time.Weekday: domingo=0... lunes=1; retroceder hasta el lunes.
		delta := (int(now.Weekday()) + 6) % 7
		start = startOfDay(now.AddDate(0, 0, -delta))
	case PresetThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: preset desconocido %q", domain.ErrInvalidInput, p)
	}
	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
