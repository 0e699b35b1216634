// Package products mantiene el snapshot local del catálogo de productos que
// alimenta el selector del formulario de movimientos y la previsualización
// optimista de stock.
package products

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// queryKeyProducts clave lógica del catálogo en la guarda de cancelación.
const queryKeyProducts = "products"

// Query parámetros de GET /api/products.
type Query struct {
	Limit  int
	Status string   // "" = todos
	Fields []string // sparse fieldset; vacío = todos los campos
}

// Lister puerto de lectura del catálogo.
type Lister interface {
	ListProducts(ctx context.Context, q Query) ([]entity.Product, error)
}

// Catalog snapshot en memoria de los productos activos. Se carga al montar
// la consola (en paralelo con el historial) y se actualiza localmente con el
// stock devuelto por cada registro de movimiento exitoso.
type Catalog struct {
	api   Lister
	guard *inflight.Guard
	log   *logger.Logger

	mu       sync.Mutex
	products []entity.Product
	loaded   bool
	fetching bool
	lastErr  error

	changes chan struct{}
}

// NewCatalog construye el catálogo.
func NewCatalog(api Lister, guard *inflight.Guard, log *logger.Logger) *Catalog {
	return &Catalog{
		api:     api,
		guard:   guard,
		log:     log,
		changes: make(chan struct{}, 1),
	}
}

// Load dispara la (re)carga del catálogo: productos activos con el fieldset
// que necesita el formulario. Pasa por la guarda con su propia clave, así
// que una recarga supersede a la anterior sin tocar otras consultas.
func (c *Catalog) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, ticket := c.guard.Begin(context.Background(), queryKeyProducts)
	c.fetching = true

	go func() {
		list, err := c.api.ListProducts(ctx, Query{
			Limit:  500,
			Status: entity.ProductStatusActive,
			Fields: []string{"id", "sku", "name", "unit", "price", "stock", "min_stock", "max_stock", "status"},
		})
		if err != nil && (errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled)) {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		applied := ticket.Commit(func() {
			c.fetching = false
			if err != nil {
				c.log.Warn().Err(err).Msg("catálogo: carga fallida")
				c.lastErr = err
				return
			}
			c.products = list
			c.loaded = true
			c.lastErr = nil
		})
		if applied {
			select {
			case c.changes <- struct{}{}:
			default:
			}
		}
	}()
}

// Loading indica que la carga inicial sigue en vuelo.
func (c *Catalog) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching && !c.loaded
}

// Ready indica si ya hay un snapshot cargado.
func (c *Catalog) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Err devuelve el error de la última carga (nil si fue exitosa).
func (c *Catalog) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Changes canal de notificación de cambios (buffer 1).
func (c *Catalog) Changes() <-chan struct{} {
	return c.changes
}

// All devuelve una copia del snapshot.
func (c *Catalog) All() []entity.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entity.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get busca un producto por id.
func (c *Catalog) Get(id string) (entity.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// Search búsqueda local por nombre o SKU, insensible a mayúsculas y acentos
// ("cafe" encuentra "Café"). Opera solo sobre el snapshot: nunca la red.
func (c *Catalog) Search(term string) []entity.Product {
	folded := Fold(term)
	c.mu.Lock()
	defer c.mu.Unlock()
	if folded == "" {
		out := make([]entity.Product, len(c.products))
		copy(out, c.products)
		return out
	}
	var out []entity.Product
	for _, p := range c.products {
		if strings.Contains(Fold(p.Name), folded) || strings.Contains(Fold(p.SKU), folded) {
			out = append(out, p)
		}
	}
	return out
}

// ApplyStock fija el stock local de un producto con el valor confirmado por
// el servidor (stock_after del movimiento registrado).
func (c *Catalog) ApplyStock(productID string, stock int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == productID {
			c.products[i].Stock = stock
			return
		}
	}
}

// Close desmonta el catálogo.
func (c *Catalog) Close() {
	c.guard.Close()
}

// foldTransformer descompone (NFD), elimina marcas diacríticas y recompone.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normaliza un término para comparación: sin acentos y en minúsculas.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
