package movements

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/pkg/debounce"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// queryKeyMovements clave lógica del historial en la guarda de cancelación:
// como máximo una petición de listado en vuelo.
const queryKeyMovements = "movements"

// defaultReasonDelay ventana de debounce del filtro de texto libre.
const defaultReasonDelay = 400 * time.Millisecond

// HistoryConfig parámetros del store de historial.
type HistoryConfig struct {
	PageSize        int
	StatsWindowDays int           // ventana de los buckets por día (0 → 7)
	ReasonDelay     time.Duration // 0 → 400ms
	Now             func() time.Time
}

// HistoryStore mantiene los criterios de filtro del historial de movimientos
// y orquesta las cargas paginadas. Toda mutación que afecta el resultado
// vuelve a página 1 y es el único disparador de red; el store captura los
// criterios por valor al emitir cada petición y reemplaza registros +
// paginación de forma atómica con la respuesta ganadora (la última emitida).
type HistoryStore struct {
	api   Lister
	guard *inflight.Guard
	log   *logger.Logger
	now   func() time.Time

	reasonDeb *debounce.Debouncer[string]

	mu         sync.Mutex
	filters    FilterCriteria
	defaults   FilterCriteria
	records    []entity.Movement
	pagination dto.Pagination
	version    uint64 // se incrementa en cada reemplazo del set de registros
	fetching   bool
	hasLoaded  bool
	lastErr    error

	statsVersion uint64
	statsValid   bool
	stats        DerivedStatistics
	statsWindow  int

	changes chan struct{}
}

// NewHistoryStore construye el store.
func NewHistoryStore(api Lister, guard *inflight.Guard, log *logger.Logger, cfg HistoryConfig) *HistoryStore {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ReasonDelay <= 0 {
		cfg.ReasonDelay = defaultReasonDelay
	}
	if cfg.StatsWindowDays <= 0 {
		cfg.StatsWindowDays = 7
	}
	defaults := DefaultFilters(cfg.PageSize)

	s := &HistoryStore{
		api:         api,
		guard:       guard,
		log:         log,
		now:         cfg.Now,
		filters:     defaults,
		defaults:    defaults,
		statsWindow: cfg.StatsWindowDays,
		changes:     make(chan struct{}, 1),
	}
	s.reasonDeb = debounce.New(cfg.ReasonDelay, s.applyDebouncedReason)
	return s
}

// ── Accesores ─────────────────────────────────────────────────────────────────

// Filters devuelve una copia de los criterios vigentes.
func (s *HistoryStore) Filters() FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Records devuelve la página de registros cargada.
func (s *HistoryStore) Records() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.records))
	copy(out, s.records)
	return out
}

// Pagination devuelve el estado de paginación reportado por el servidor.
func (s *HistoryStore) Pagination() dto.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Err devuelve el último error visible (nil si la última carga fue exitosa).
func (s *HistoryStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loading indica carga inicial: hay petición en vuelo y aún no se ha
// mostrado ningún dato (la UI pinta el esqueleto completo solo en este caso).
func (s *HistoryStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching && !s.hasLoaded
}

// Refreshing indica recarga en segundo plano: hay petición en vuelo pero los
// datos viejos siguen visibles.
func (s *HistoryStore) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching && s.hasLoaded
}

// Version contador que se incrementa en cada reemplazo del set de registros.
// Las derivaciones (estadísticas) se memoizan contra este valor.
func (s *HistoryStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Changes canal de notificación (buffer 1): se señala en cada cambio de
// estado visible. La consola lo usa para saber cuándo repintar.
func (s *HistoryStore) Changes() <-chan struct{} {
	return s.changes
}

// ── Mutaciones de criterio (todas recargan en página 1) ───────────────────────

// SetMovementType filtra por tipo de movimiento ("" = todos).
func (s *HistoryStore) SetMovementType(t string) error {
	return s.mutate(func(f *FilterCriteria) { f.MovementType = t })
}

// SetProduct filtra por producto ("" = todos).
func (s *HistoryStore) SetProduct(productID string) error {
	return s.mutate(func(f *FilterCriteria) { f.ProductID = productID })
}

// SetDateRange filtra por rango de fechas; una fecha cero borra ese extremo.
func (s *HistoryStore) SetDateRange(start, end time.Time) error {
	return s.mutate(func(f *FilterCriteria) {
		f.StartDate = start
		f.EndDate = end
	})
}

// SetQuantityBounds filtra por cotas de cantidad (0 = sin cota).
func (s *HistoryStore) SetQuantityBounds(min, max int) error {
	if min < 0 || max < 0 {
		return domain.ErrInvalidInput
	}
	return s.mutate(func(f *FilterCriteria) {
		f.MinQuantity = min
		f.MaxQuantity = max
	})
}

// SetCreatedBy filtra por autor del movimiento.
func (s *HistoryStore) SetCreatedBy(userID string) error {
	return s.mutate(func(f *FilterCriteria) { f.CreatedBy = userID })
}

// SetReference filtra por número de referencia.
func (s *HistoryStore) SetReference(ref string) error {
	return s.mutate(func(f *FilterCriteria) { f.ReferenceNumber = ref })
}

// SetSort cambia la clave y dirección de ordenamiento.
func (s *HistoryStore) SetSort(by, order string) error {
	switch by {
	case SortByCreatedAt, SortByQuantity, SortByProductName:
	default:
		return domain.ErrInvalidInput
	}
	if order != SortAsc && order != SortDesc {
		return domain.ErrInvalidInput
	}
	return s.mutate(func(f *FilterCriteria) {
		f.SortBy = by
		f.SortOrder = order
	})
}

// SetPageSize cambia el tamaño de página; siempre vuelve a página 1.
func (s *HistoryStore) SetPageSize(n int) error {
	if n <= 0 || n > 100 {
		return domain.ErrInvalidInput
	}
	return s.mutate(func(f *FilterCriteria) { f.PageSize = n })
}

// SetReasonText actualiza el filtro de texto libre. El valor pasa por el
// debouncer: la recarga se dispara solo cuando el valor debounced cambia.
func (s *HistoryStore) SetReasonText(text string) {
	s.reasonDeb.Set(text)
}

// applyDebouncedReason corre en la goroutine del temporizador del debouncer.
func (s *HistoryStore) applyDebouncedReason(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters.Reason == text {
		return
	}
	s.filters.Reason = text
	s.reloadLocked(1)
}

// ApplyPreset reemplaza el rango de fechas con la ventana del preset
// relativa al reloj actual y recarga en página 1.
func (s *HistoryStore) ApplyPreset(p Preset) error {
	start, end, err := PresetRange(p, s.now())
	if err != nil {
		return err
	}
	return s.mutate(func(f *FilterCriteria) {
		f.StartDate = start
		f.EndDate = end
	})
}

// Reset restaura todos los criterios a sus valores por defecto y recarga en
// página 1.
func (s *HistoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.defaults
	s.reloadLocked(1)
}

// mutate aplica el cambio sobre una copia, valida los invariantes del
// criterio resultante y, solo si es válido, lo adopta y recarga en página 1.
func (s *HistoryStore) mutate(apply func(*FilterCriteria)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate := s.filters
	apply(&candidate)
	if err := candidate.Validate(); err != nil {
		return err
	}
	s.filters = candidate
	s.reloadLocked(1)
	return nil
}

// ── Paginación y recargas ─────────────────────────────────────────────────────

// Load dispara la carga inicial (página 1).
func (s *HistoryStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked(1)
}

// GoToPage navega a la página p. Fuera de [1, totalPages] es un no-op (sin
// petición ni cambio de estado) y devuelve false.
func (s *HistoryStore) GoToPage(p int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p < 1 {
		return false
	}
	if s.pagination.TotalPages > 0 && p > s.pagination.TotalPages {
		return false
	}
	if s.pagination.TotalPages == 0 && p != 1 {
		// Aún no conocemos el total: solo la primera página es navegable.
		return false
	}
	s.reloadLocked(p)
	return true
}

// Refresh recarga la página vigente (re-disparo manual del usuario; aquí no
// existe ningún reintento automático).
func (s *HistoryStore) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := s.pagination.Page
	if page < 1 {
		page = 1
	}
	s.reloadLocked(page)
}

// RefreshFirstPage recarga en página 1 (tras registrar un movimiento).
func (s *HistoryStore) RefreshFirstPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked(1)
}

// reloadLocked emite una nueva petición de listado. Requiere s.mu tomado.
// La petición anterior del historial queda cancelada y su respuesta, llegue
// cuando llegue, jamás aplica estado (gana la última emitida).
func (s *HistoryStore) reloadLocked(page int) {
	snapshot := s.filters // captura por valor al momento de emitir
	ctx, ticket := s.guard.Begin(context.Background(), queryKeyMovements)
	s.fetching = true
	s.notifyLocked()

	s.log.Debug().
		Int("page", page).
		Str("sort_by", snapshot.SortBy).
		Str("movement_type", snapshot.MovementType).
		Msg("historial: emitiendo petición")

	go s.fetch(ctx, ticket, snapshot, page)
}

func (s *HistoryStore) fetch(ctx context.Context, ticket *inflight.Ticket, f FilterCriteria, page int) {
	records, pagination, err := s.api.ListMovements(ctx, f, page)

	// Una respuesta cancelada no es un error de cara al usuario: se descarta.
	if err != nil && (errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled)) {
		return
	}

	// Orden de locks: siempre s.mu antes que el mutex de la guarda.
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := ticket.Commit(func() {
		s.fetching = false
		if err != nil {
			s.log.Warn().Err(err).Int("page", page).Msg("historial: carga fallida")
			s.lastErr = err
			s.records = nil
			s.version++
			s.statsValid = false
			return
		}
		// Reemplazo atómico: registros y paginación provienen de la misma
		// respuesta, nunca de peticiones distintas.
		s.records = records
		s.pagination = pagination
		s.hasLoaded = true
		s.lastErr = nil
		s.version++
		s.statsValid = false
	})
	if applied {
		s.notifyLocked()
	}
}

// notifyLocked señala el canal de cambios sin bloquear.
func (s *HistoryStore) notifyLocked() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// ── Estadísticas derivadas ────────────────────────────────────────────────────

// Statistics devuelve las estadísticas derivadas de la página cargada,
// memoizadas contra el contador de versión: solo se recomputan cuando el set
// de registros cambió, no en cada lectura.
func (s *HistoryStore) Statistics() DerivedStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsValid && s.statsVersion == s.version {
		return s.stats
	}
	s.stats = Derive(s.records, s.now(), s.statsWindow)
	s.statsVersion = s.version
	s.statsValid = true
	return s.stats
}

// Close desmonta el store: cancela lo que esté en vuelo y suprime cualquier
// actualización posterior.
func (s *HistoryStore) Close() {
	s.reasonDeb.Close()
	s.guard.Close()
}
