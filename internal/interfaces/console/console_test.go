package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/application/session"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles síncronos: responden en el acto, sin red ni latencia.
// ──────────────────────────────────────────────────────────────────────────────

type syncAPI struct {
	movements []entity.Movement
	products  []entity.Product
	user      entity.User
}

func (a *syncAPI) ListMovements(_ context.Context, f movements.FilterCriteria, page int) ([]entity.Movement, dto.Pagination, error) {
	var out []entity.Movement
	for _, m := range a.movements {
		if f.MovementType != "" && m.Type != f.MovementType {
			continue
		}
		if f.Reason != "" && !strings.Contains(m.Reason, f.Reason) {
			continue
		}
		out = append(out, m)
	}
	return out, dto.Pagination{Page: page, TotalPages: 1, Total: len(out), Limit: f.PageSize}, nil
}

func (a *syncAPI) CreateMovement(_ context.Context, req dto.CreateMovementRequest) (*entity.Movement, error) {
	return &entity.Movement{ID: "nuevo", ProductID: req.ProductID, Type: req.Type,
		Quantity: req.Quantity, Reason: req.Reason, StockBefore: 10, StockAfter: 10 - req.Quantity,
		CreatedAt: time.Now()}, nil
}

func (a *syncAPI) DeleteMovement(_ context.Context, _ string) error { return nil }

func (a *syncAPI) ListProducts(_ context.Context, _ products.Query) ([]entity.Product, error) {
	return a.products, nil
}

func (a *syncAPI) Login(_ context.Context, _, _ string) (string, *entity.User, error) {
	u := a.user
	return "token", &u, nil
}

func (a *syncAPI) Me(_ context.Context) (*entity.User, error) {
	u := a.user
	return &u, nil
}

func sampleMovement(id, reason, mvType string, qty int) entity.Movement {
	return entity.Movement{
		ID: id, ProductID: "p1", ProductName: "Café molido", ProductSKU: "CAF-001",
		ProductUnit: "und", Type: mvType, Quantity: qty, StockBefore: 50, StockAfter: 50 - qty,
		UnitPrice: decimal.NewFromInt(10), Reason: reason, CreatedByName: "Ana",
		CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local),
	}
}

// runConsole ejecuta el REPL contra la entrada scripteada y devuelve todo lo
// que pintó. El doble responde síncrono, así que las esperas se asientan al
// primer chequeo.
func runConsole(t *testing.T, api *syncAPI, script string) string {
	t.Helper()
	guard := inflight.New()
	history := movements.NewHistoryStore(api, guard, logger.Nop(), movements.HistoryConfig{
		PageSize:    20,
		ReasonDelay: time.Millisecond,
	})
	t.Cleanup(history.Close)

	catGuard := inflight.New()
	catalog := products.NewCatalog(api, catGuard, logger.Nop())
	t.Cleanup(catalog.Close)
	catalog.Load()

	sess := session.New(api, logger.Nop())
	register := movements.NewRegisterMovementUseCase(api, history, catalog, logger.Nop())

	history.Load()

	var out bytes.Buffer
	c := New(Deps{
		Session:   sess,
		History:   history,
		Catalog:   catalog,
		Register:  register,
		Log:       logger.Nop(),
		ExportDir: t.TempDir(),
	}, strings.NewReader(script), &out)

	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_TablaInicialYSalida(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{
		sampleMovement("m1", "venta mostrador", "out", 5),
		sampleMovement("m2", "compra proveedor", "in", 20),
	}}

	got := runConsole(t, api, "/exit\n")

	assert.Contains(t, got, "HISTORIAL DE MOVIMIENTOS")
	assert.Contains(t, got, "Café molido")
	assert.Contains(t, got, "SALIDA")
	assert.Contains(t, got, "ENTRADA")
	assert.Contains(t, got, "Página 1 de 1 — 2 movimientos")
	assert.Contains(t, got, "Hasta luego.")
}

func TestRun_FiltroPorTipo(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{
		sampleMovement("m1", "venta", "out", 5),
		sampleMovement("m2", "compra", "in", 20),
	}}

	got := runConsole(t, api, "/filter type out\n/exit\n")
	assert.Contains(t, got, "Filtros: tipo SALIDA")
	assert.Contains(t, got, "1 movimientos en total")
}

func TestRun_FiltroDeMotivoConDebounce(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{
		sampleMovement("m1", "venta mostrador", "out", 5),
		sampleMovement("m2", "compra proveedor", "in", 20),
	}}

	got := runConsole(t, api, "/filter reason compra\n/exit\n")
	assert.Contains(t, got, `motivo "compra"`)
	assert.Contains(t, got, "1 movimientos en total")
}

func TestRun_Estadisticas(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{
		sampleMovement("m1", "venta", "out", 5),
		sampleMovement("m2", "compra", "in", 20),
	}}

	got := runConsole(t, api, "/stats\n/exit\n")
	assert.Contains(t, got, "ESTADÍSTICAS")
	assert.Contains(t, got, "2  (1 entradas, 1 salidas)")
	assert.Contains(t, got, "balance neto +15")
}

func TestRun_ProductosConBusquedaLocal(t *testing.T) {
	api := &syncAPI{
		products: []entity.Product{
			{ID: "p1", SKU: "CAF-001", Name: "Café molido", Unit: "und", Price: decimal.NewFromInt(10), Stock: 40, MinStock: 5},
			{ID: "p2", SKU: "AZU-002", Name: "Azúcar", Unit: "kg", Price: decimal.NewFromInt(4), Stock: 12, MinStock: 3},
		},
	}

	got := runConsole(t, api, "/products cafe\n/exit\n")
	assert.Contains(t, got, "CAF-001")
	assert.NotContains(t, got, "AZU-002", "la búsqueda filtra el listado")
}

func TestRun_PaginaFueraDeRango(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{sampleMovement("m1", "venta", "out", 5)}}

	got := runConsole(t, api, "/page 9\n/exit\n")
	assert.Contains(t, got, "Página fuera de rango: 9")
}

func TestRun_ComandoDesconocido(t *testing.T) {
	api := &syncAPI{}
	got := runConsole(t, api, "/nada\n/exit\n")
	assert.Contains(t, got, "Comando desconocido: /nada")
}

func TestRun_AsistenteDeRegistro(t *testing.T) {
	api := &syncAPI{
		products: []entity.Product{
			{ID: "p1", SKU: "CAF-001", Name: "Café molido", Unit: "und", Price: decimal.NewFromInt(10), Stock: 40, MinStock: 5},
		},
	}

	script := "/new\ncafe\nout\n5\nventa mostrador\n\n\ns\n/exit\n"
	got := runConsole(t, api, script)

	assert.Contains(t, got, "Stock proyectado: 40 → 35")
	assert.Contains(t, got, "Movimiento registrado.")
}

func TestRun_AsistenteBloqueaStockInsuficiente(t *testing.T) {
	api := &syncAPI{
		products: []entity.Product{
			{ID: "p1", SKU: "CAF-001", Name: "Café molido", Unit: "und", Price: decimal.NewFromInt(10), Stock: 3, MinStock: 1},
		},
	}

	// La cantidad 10 bloquea y obliga a corregir; con 2 procede.
	script := "/new\ncafe\nout\n10\n2\nventa\n\n\ns\n/exit\n"
	got := runConsole(t, api, script)

	assert.Contains(t, got, "Stock insuficiente: hay 3 y se piden 10")
	assert.Contains(t, got, "Stock proyectado: 3 → 1")
	assert.Contains(t, got, "Movimiento registrado.")
}

func TestRun_EliminarConConfirmacion(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{sampleMovement("mov-uno", "venta", "out", 5)}}

	got := runConsole(t, api, "/delete mov-uno\ns\n/exit\n")
	assert.Contains(t, got, "¿Eliminar este movimiento?")
	assert.Contains(t, got, "Movimiento eliminado.")
}

func TestRun_EliminarCancelado(t *testing.T) {
	api := &syncAPI{movements: []entity.Movement{sampleMovement("mov-uno", "venta", "out", 5)}}

	got := runConsole(t, api, "/delete mov-uno\nn\n/exit\n")
	assert.Contains(t, got, "Eliminación cancelada.")
}

func TestFilterSummary(t *testing.T) {
	f := movements.DefaultFilters(20)
	assert.Empty(t, filterSummary(f))

	f.MovementType = "in"
	f.Reason = "compra"
	f.MinQuantity = 5
	f.MaxQuantity = 50
	got := filterSummary(f)
	assert.Contains(t, got, "tipo ENTRADA")
	assert.Contains(t, got, `motivo "compra"`)
	assert.Contains(t, got, "cantidad 5–50")
}

func TestAuxiliaresDePresentacion(t *testing.T) {
	assert.Equal(t, "ENTRADA", typeLabel("in"))
	assert.Equal(t, "SALIDA", typeLabel("out"))

	assert.Equal(t, "12345678", shortID("123456789abc"))
	assert.Equal(t, "corto", shortID("corto"))

	assert.Equal(t, "exacto", truncate("exacto", 6))
	assert.Equal(t, "largu…", truncate("larguisimo", 6))
}
