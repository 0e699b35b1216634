package movements_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/internal/domain/inventory"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles
// ──────────────────────────────────────────────────────────────────────────────

type fakeWriter struct {
	created []dto.CreateMovementRequest
	deleted []string
	result  *entity.Movement
	err     error
}

func (w *fakeWriter) CreateMovement(_ context.Context, req dto.CreateMovementRequest) (*entity.Movement, error) {
	w.created = append(w.created, req)
	if w.err != nil {
		return nil, w.err
	}
	return w.result, nil
}

func (w *fakeWriter) DeleteMovement(_ context.Context, id string) error {
	w.deleted = append(w.deleted, id)
	return w.err
}

type staticProducts struct {
	list []entity.Product
}

func (s *staticProducts) ListProducts(_ context.Context, _ products.Query) ([]entity.Product, error) {
	return s.list, nil
}

func newLoadedCatalog(t *testing.T, list []entity.Product) *products.Catalog {
	t.Helper()
	c := products.NewCatalog(&staticProducts{list: list}, inflight.New(), logger.Nop())
	t.Cleanup(c.Close)
	c.Load()
	require.Eventually(t, c.Ready, 2*time.Second, 5*time.Millisecond, "el catálogo debe cargar")
	return c
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_Exito_ActualizaCatalogoYRecargaHistorial(t *testing.T) {
	product := entity.Product{ID: "p1", SKU: "SKU-1", Name: "Tornillo", Stock: 10, MinStock: 2, Price: decimal.NewFromInt(3)}
	created := entity.Movement{
		ID: "m-nuevo", ProductID: "p1", Type: "in", Quantity: 5,
		StockBefore: 10, StockAfter: 15, CreatedAt: time.Now(),
	}

	api := newScriptedLister()
	history := newTestStore(t, api, movements.HistoryConfig{PageSize: 20})
	history.Load()
	api.next(t).Resolve(nil, pag(1, 3, 50, 20))
	waitPage(t, history, 1)
	require.True(t, history.GoToPage(2))
	api.next(t).Resolve(nil, pag(2, 3, 50, 20))
	waitPage(t, history, 2)

	catalog := newLoadedCatalog(t, []entity.Product{product})
	writer := &fakeWriter{result: &created}
	uc := movements.NewRegisterMovementUseCase(writer, history, catalog, logger.Nop())

	mv, proj, err := uc.Register(context.Background(), movements.RegisterInput{
		Product: product, Type: "in", Quantity: 5, Reason: "compra proveedor",
	})
	require.NoError(t, err)
	assert.Equal(t, "m-nuevo", mv.ID)
	assert.Equal(t, inventory.OutcomeOK, proj.Outcome)

	require.Len(t, writer.created, 1)
	assert.Equal(t, dto.CreateMovementRequest{
		ProductID: "p1", Type: "in", Quantity: 5, Reason: "compra proveedor",
	}, writer.created[0])

	// El stock local adopta el valor confirmado por el servidor.
	got, ok := catalog.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 15, got.Stock)

	// Y el historial se recarga en página 1.
	call := api.next(t)
	assert.Equal(t, 1, call.Page, "tras registrar, el historial vuelve a página 1")
	call.Resolve(nil, pag(1, 3, 51, 20))
}

func TestRegister_StockInsuficiente_BloqueaSinLlamarLaRed(t *testing.T) {
	product := entity.Product{ID: "p1", Stock: 10, MinStock: 5}

	api := newScriptedLister()
	history := newTestStore(t, api, movements.HistoryConfig{PageSize: 20})
	catalog := newLoadedCatalog(t, []entity.Product{product})
	writer := &fakeWriter{}
	uc := movements.NewRegisterMovementUseCase(writer, history, catalog, logger.Nop())

	_, proj, err := uc.Register(context.Background(), movements.RegisterInput{
		Product: product, Type: "out", Quantity: 12, Reason: "venta",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, inventory.OutcomeInsufficientStock, proj.Outcome)
	assert.Empty(t, writer.created, "la guarda de envío bloquea antes del POST")
	api.noMoreCalls(t)
}

func TestRegister_AdvertenciaDeMinimo_NoBloquea(t *testing.T) {
	product := entity.Product{ID: "p1", Stock: 10, MinStock: 5, Price: decimal.NewFromInt(1)}
	created := entity.Movement{ID: "m1", ProductID: "p1", Type: "out", Quantity: 8, StockBefore: 10, StockAfter: 2}

	api := newScriptedLister()
	history := newTestStore(t, api, movements.HistoryConfig{PageSize: 20})
	catalog := newLoadedCatalog(t, []entity.Product{product})
	writer := &fakeWriter{result: &created}
	uc := movements.NewRegisterMovementUseCase(writer, history, catalog, logger.Nop())

	_, proj, err := uc.Register(context.Background(), movements.RegisterInput{
		Product: product, Type: "out", Quantity: 8, Reason: "venta",
	})
	require.NoError(t, err, "la advertencia de mínimo no impide registrar")
	assert.Equal(t, inventory.OutcomeBelowMinimum, proj.Outcome)
	assert.Len(t, writer.created, 1)

	api.next(t).Resolve(nil, pag(1, 1, 1, 20))
}

func TestRegister_ValidacionDeFormulario(t *testing.T) {
	api := newScriptedLister()
	history := newTestStore(t, api, movements.HistoryConfig{PageSize: 20})
	catalog := newLoadedCatalog(t, nil)
	writer := &fakeWriter{}
	uc := movements.NewRegisterMovementUseCase(writer, history, catalog, logger.Nop())

	product := entity.Product{ID: "p1", Stock: 10}
	cases := []struct {
		name string
		in   movements.RegisterInput
	}{
		{"sin producto", movements.RegisterInput{Type: "in", Quantity: 1, Reason: "x"}},
		{"tipo desconocido", movements.RegisterInput{Product: product, Type: "adjust", Quantity: 1, Reason: "x"}},
		{"cantidad cero", movements.RegisterInput{Product: product, Type: "in", Quantity: 0, Reason: "x"}},
		{"cantidad negativa", movements.RegisterInput{Product: product, Type: "in", Quantity: -4, Reason: "x"}},
		{"motivo vacío", movements.RegisterInput{Product: product, Type: "in", Quantity: 1, Reason: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := uc.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, writer.created)
}

func TestDelete_RecargaLaPaginaVigente(t *testing.T) {
	api := newScriptedLister()
	history := newTestStore(t, api, movements.HistoryConfig{PageSize: 20})
	history.Load()
	api.next(t).Resolve(nil, pag(1, 2, 30, 20))
	waitPage(t, history, 1)
	require.True(t, history.GoToPage(2))
	api.next(t).Resolve(nil, pag(2, 2, 30, 20))
	waitPage(t, history, 2)

	catalog := newLoadedCatalog(t, nil)
	writer := &fakeWriter{}
	uc := movements.NewRegisterMovementUseCase(writer, history, catalog, logger.Nop())

	require.NoError(t, uc.Delete(context.Background(), "m7"))
	assert.Equal(t, []string{"m7"}, writer.deleted)

	call := api.next(t)
	assert.Equal(t, 2, call.Page, "tras eliminar se recarga la página vigente")
	call.Resolve(nil, pag(2, 2, 29, 20))
}
