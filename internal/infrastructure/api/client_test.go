package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*api.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := api.NewClient(srv.URL, 2*time.Second, logger.Nop())
	return c, srv
}

func TestListMovements_ConstruyeLaQueryCompleta(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/inventory/movements", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "m1", "product_id": "p1", "movement_type": "in", "quantity": 5,
					"stock_before": 1, "stock_after": 6, "unit_price": "2.5",
					"created_at": time.Now().Format(time.RFC3339)},
			},
			"pagination": map[string]int{"page": 2, "totalPages": 7, "total": 130, "limit": 20},
		})
	})
	c.SetTokenSource(staticToken("tok-abc"))

	f := movements.DefaultFilters(20)
	f.StartDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	f.EndDate = time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	f.MovementType = "in"
	f.ProductID = "p1"
	f.Reason = "compra"
	f.MinQuantity = 2
	f.MaxQuantity = 50

	records, pag, err := c.ListMovements(context.Background(), f, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
	assert.Equal(t, []string{"created_at"}, gotQuery["sort_by"])
	assert.Equal(t, []string{"desc"}, gotQuery["sort_order"])
	assert.Equal(t, []string{"2026-08-01"}, gotQuery["start_date"])
	assert.Equal(t, []string{"2026-08-30"}, gotQuery["end_date"])
	assert.Equal(t, []string{"in"}, gotQuery["movement_type"])
	assert.Equal(t, []string{"p1"}, gotQuery["product_id"])
	assert.Equal(t, []string{"compra"}, gotQuery["reason"])
	assert.Equal(t, []string{"2"}, gotQuery["min_quantity"])
	assert.Equal(t, []string{"50"}, gotQuery["max_quantity"])
	assert.Equal(t, "Bearer tok-abc", gotAuth)

	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].ID)
	assert.Equal(t, 6, records[0].StockAfter)
	assert.Equal(t, 7, pag.TotalPages, "la paginación viene del servidor tal cual")
	assert.Equal(t, 130, pag.Total)
}

func TestListProducts_SparseFieldset(t *testing.T) {
	var got map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products", r.URL.Path)
		got = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "p1", "sku": "CAF-001", "name": "Café", "stock": 40, "min_stock": 5, "price": "12.5", "status": "active"},
			},
		})
	})

	list, err := c.ListProducts(context.Background(), products.Query{
		Limit: 500, Status: "active", Fields: []string{"id", "sku", "name"},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "CAF-001", list[0].SKU)

	assert.Equal(t, []string{"500"}, got["limit"])
	assert.Equal(t, []string{"active"}, got["status"])
	assert.Equal(t, []string{"id,sku,name"}, got["fields"])
}

func TestMapeoDeErrores(t *testing.T) {
	cases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrInsufficientStock},
		{http.StatusInternalServerError, domain.ErrRequestFailed},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "code": "X", "message": "detalle del backend"})
		})
		_, _, err := c.ListMovements(context.Background(), movements.DefaultFilters(20), 1)
		assert.ErrorIs(t, err, tc.sentinel, "HTTP %d", tc.status)
		assert.ErrorContains(t, err, "detalle del backend", "conserva el mensaje del backend")
	}
}

func TestEnvelopeSinExito_EsErrorDePeticion(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "data": nil})
	})
	_, _, err := c.ListMovements(context.Background(), movements.DefaultFilters(20), 1)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestCancelacion_SeMapeaAErrCancelled(t *testing.T) {
	started := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, _, err := c.ListMovements(ctx, movements.DefaultFilters(20), 1)
	assert.ErrorIs(t, err, domain.ErrCancelled, "una petición superseded se reporta como cancelación, no como fallo")
}

func TestTimeout_SeMapeaAErrUnavailable(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:1", 200*time.Millisecond, logger.Nop())
	_, _, err := c.ListMovements(context.Background(), movements.DefaultFilters(20), 1)
	assert.ErrorIs(t, err, domain.ErrUnavailable, "fallo de red y timeout reciben el mismo trato")
}

func TestLoginYMe(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@demo.co", body["email"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"token": "tok-1",
					"user":  map[string]string{"id": "u1", "name": "Ana", "email": "ana@demo.co", "role": "admin"},
				},
			})
		case "/api/auth/me":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]string{"id": "u1", "name": "Ana", "email": "ana@demo.co", "role": "admin"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	token, user, err := c.Login(context.Background(), "ana@demo.co", "clave")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "Ana", user.Name)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
}

func TestDeleteMovement(t *testing.T) {
	var gotPath, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	require.NoError(t, c.DeleteMovement(context.Background(), "m42"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/inventory/movements/m42", gotPath)
}
