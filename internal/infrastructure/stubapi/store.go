// Package stubapi implementa un doble del backend de inventario para
// desarrollo y tests de integración: el contrato completo de la API
// (auth, catálogo, movimientos con filtro/orden/paginación) sobre un
// almacén en memoria. Es herramienta de desarrollo, no un backend real.
package stubapi

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// storedUser usuario con su hash bcrypt (solo el stub conoce contraseñas).
type storedUser struct {
	entity.User
	passwordHash []byte
}

// Store almacén en memoria del stub. El invariante
// stock_after − stock_before = ±quantity se mantiene aquí, del lado
// "servidor", igual que en el backend real.
type Store struct {
	mu        sync.RWMutex
	products  []entity.Product
	users     []storedUser
	movements []entity.Movement // más reciente primero
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{}
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// AddUser registra un usuario con contraseña bcrypt.
func (s *Store) AddUser(name, email, password, role string) (entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.User{}, err
	}
	u := entity.User{ID: uuid.New().String(), Name: name, Email: email, Role: role}
	s.mu.Lock()
	s.users = append(s.users, storedUser{User: u, passwordHash: hash})
	s.mu.Unlock()
	return u, nil
}

// Authenticate verifica email + contraseña contra el hash bcrypt.
func (s *Store) Authenticate(email, password string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
				return nil, domain.ErrUnauthorized
			}
			out := u.User
			return &out, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

// UserByID busca un usuario por id.
func (s *Store) UserByID(id string) (*entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			out := u.User
			return &out, true
		}
	}
	return nil, false
}

// ── Productos ─────────────────────────────────────────────────────────────────

// AddProduct registra un producto (genera id si falta).
func (s *Store) AddProduct(p entity.Product) entity.Product {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = entity.ProductStatusActive
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	return p
}

// Products devuelve los productos, opcionalmente filtrados por estado.
func (s *Store) Products(status string, limit int) []entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// ApplyInput datos de un movimiento a aplicar.
type ApplyInput struct {
	ProductID       string
	Type            string
	Quantity        int
	Reason          string
	Notes           string
	ReferenceNumber string
	UserID          string
	UserName        string
	At              time.Time // cero = ahora
}

// ApplyMovement valida y aplica el movimiento de forma atómica: captura el
// stock vigente como stock_before, calcula stock_after según el tipo y
// actualiza el producto en la misma sección crítica.
func (s *Store) ApplyMovement(in ApplyInput) (*entity.Movement, error) {
	if !entity.ValidMovementType(in.Type) || in.Quantity <= 0 || strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(in.ProductID)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	p := &s.products[idx]

	before := p.Stock
	var after int
	switch in.Type {
	case entity.MovementTypeIn:
		after = before + in.Quantity
	case entity.MovementTypeOut:
		if in.Quantity > before {
			return nil, domain.ErrInsufficientStock
		}
		after = before - in.Quantity
	}

	at := in.At
	if at.IsZero() {
		at = time.Now()
	}

	m := entity.Movement{
		ID:              uuid.New().String(),
		ProductID:       p.ID,
		ProductName:     p.Name,
		ProductSKU:      p.SKU,
		ProductUnit:     p.Unit,
		Type:            in.Type,
		Quantity:        in.Quantity,
		StockBefore:     before,
		StockAfter:      after,
		UnitPrice:       p.Price,
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           strings.TrimSpace(in.Notes),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		CreatedBy:       in.UserID,
		CreatedByName:   in.UserName,
		CreatedAt:       at,
	}

	p.Stock = after
	s.movements = append([]entity.Movement{m}, s.movements...)
	return &m, nil
}

// DeleteMovement elimina el movimiento (sin revertir stock: igual que el
// backend real, el borrado es administrativo).
func (s *Store) DeleteMovement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.movements {
		if s.movements[i].ID == id {
			s.movements = append(s.movements[:i], s.movements[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListQuery criterios de GET /api/inventory/movements.
type ListQuery struct {
	Page            int
	Limit           int
	SortBy          string
	SortOrder       string
	StartDate       time.Time
	EndDate         time.Time
	MovementType    string
	ProductID       string
	Reason          string
	CreatedBy       string
	ReferenceNumber string
	MinQuantity     int
	MaxQuantity     int
}

// ListMovements aplica filtro, orden y paginación y devuelve la página junto
// con los metadatos calculados por el servidor.
func (s *Store) ListMovements(q ListQuery) ([]entity.Movement, dto.Pagination) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}

	s.mu.RLock()
	filtered := make([]entity.Movement, 0, len(s.movements))
	for _, m := range s.movements {
		if !s.matches(m, q) {
			continue
		}
		filtered = append(filtered, m)
	}
	s.mu.RUnlock()

	sortMovements(filtered, q.SortBy, q.SortOrder)

	total := len(filtered)
	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))

	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return filtered[start:end], dto.Pagination{
		Page:       q.Page,
		TotalPages: totalPages,
		Total:      total,
		Limit:      q.Limit,
	}
}

func (s *Store) matches(m entity.Movement, q ListQuery) bool {
	if q.MovementType != "" && m.Type != q.MovementType {
		return false
	}
	if q.ProductID != "" && m.ProductID != q.ProductID {
		return false
	}
	if q.CreatedBy != "" && m.CreatedBy != q.CreatedBy {
		return false
	}
	if q.ReferenceNumber != "" && m.ReferenceNumber != q.ReferenceNumber {
		return false
	}
	if q.Reason != "" && !strings.Contains(strings.ToLower(m.Reason), strings.ToLower(q.Reason)) {
		return false
	}
	if q.MinQuantity > 0 && m.Quantity < q.MinQuantity {
		return false
	}
	if q.MaxQuantity > 0 && m.Quantity > q.MaxQuantity {
		return false
	}
	if !q.StartDate.IsZero() && m.CreatedAt.Before(q.StartDate) {
		return false
	}
	if !q.EndDate.IsZero() && m.CreatedAt.After(q.EndDate.Add(24*time.Hour-time.Second)) {
		return false
	}
	return true
}

func sortMovements(list []entity.Movement, by, order string) {
	less := func(a, b entity.Movement) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch by {
	case "quantity":
		less = func(a, b entity.Movement) bool { return a.Quantity < b.Quantity }
	case "product_name":
		less = func(a, b entity.Movement) bool { return a.ProductName < b.ProductName }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if order == "asc" {
			return less(list[i], list[j])
		}
		return less(list[j], list[i])
	})
}
