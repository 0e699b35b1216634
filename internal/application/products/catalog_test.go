package products_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

type fakeLister struct {
	list    []entity.Product
	err     error
	queries []products.Query
}

func (f *fakeLister) ListProducts(_ context.Context, q products.Query) ([]entity.Product, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func demoProducts() []entity.Product {
	return []entity.Product{
		{ID: "p1", SKU: "CAF-001", Name: "Café molido 500g", Unit: "und", Stock: 40, Status: "active"},
		{ID: "p2", SKU: "AZU-002", Name: "Azúcar refinada", Unit: "kg", Stock: 12, Status: "active"},
		{ID: "p3", SKU: "PAN-003", Name: "Panela orgánica", Unit: "und", Stock: 7, Status: "active"},
	}
}

func loadedCatalog(t *testing.T, api products.Lister) *products.Catalog {
	t.Helper()
	c := products.NewCatalog(api, inflight.New(), logger.Nop())
	t.Cleanup(c.Close)
	c.Load()
	require.Eventually(t, func() bool { return c.Ready() || c.Err() != nil }, 2*time.Second, 5*time.Millisecond)
	return c
}

func TestCatalog_LoadPideActivosConFieldset(t *testing.T) {
	api := &fakeLister{list: demoProducts()}
	c := loadedCatalog(t, api)

	require.NoError(t, c.Err())
	assert.Len(t, c.All(), 3)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.Equal(t, entity.ProductStatusActive, q.Status, "solo productos activos")
	assert.Contains(t, q.Fields, "min_stock", "el fieldset incluye lo que necesita la proyección")
	assert.Contains(t, q.Fields, "max_stock")
}

// Búsqueda local insensible a mayúsculas y acentos.
func TestCatalog_SearchInsensibleAAcentos(t *testing.T) {
	c := loadedCatalog(t, &fakeLister{list: demoProducts()})

	got := c.Search("cafe")
	require.Len(t, got, 1, "\"cafe\" debe encontrar \"Café\"")
	assert.Equal(t, "p1", got[0].ID)

	got = c.Search("AZÚCAR")
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)

	got = c.Search("pan-003")
	require.Len(t, got, 1, "también busca por SKU")
	assert.Equal(t, "p3", got[0].ID)

	assert.Len(t, c.Search(""), 3, "término vacío devuelve todo el snapshot")
	assert.Empty(t, c.Search("inexistente"))
}

func TestCatalog_ApplyStockActualizaElSnapshot(t *testing.T) {
	c := loadedCatalog(t, &fakeLister{list: demoProducts()})

	c.ApplyStock("p2", 99)
	p, ok := c.Get("p2")
	require.True(t, ok)
	assert.Equal(t, 99, p.Stock)

	// Un id desconocido es inocuo.
	c.ApplyStock("px", 1)
	assert.Len(t, c.All(), 3)
}

func TestCatalog_CargaFallida_ExponeError(t *testing.T) {
	c := loadedCatalog(t, &fakeLister{err: domain.ErrUnavailable})
	assert.ErrorIs(t, c.Err(), domain.ErrUnavailable)
	assert.False(t, c.Ready())
	assert.Empty(t, c.All())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe", products.Fold("  Café "))
	assert.Equal(t, "azucar refinada", products.Fold("AZÚCAR Refinada"))
	assert.Equal(t, "nino", products.Fold("NIÑO"))
}
