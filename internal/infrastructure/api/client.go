// Package api implementa el cliente REST del backend de inventario.
// Consume el contrato JSON {success, data, pagination} y mapea cada fallo al
// taxón de dominio correspondiente: transporte/timeout → ErrUnavailable,
// respuesta no exitosa → centinela según estado, cancelación → ErrCancelled.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// maxBodyBytes límite de lectura del cuerpo de respuesta.
const maxBodyBytes = 4 << 20

// TokenSource entrega el token vigente de la sesión ("" = anónimo).
type TokenSource interface {
	Token() string
}

// Client cliente HTTP del backend. El timeout por petición es fijo (viene de
// configuración); un timeout se trata igual que cualquier fallo de red y
// nada se reintenta automáticamente.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logger.Logger
}

// Verificación en tiempo de compilación de los puertos que implementa.
var (
	_ movements.Lister = (*Client)(nil)
	_ movements.Writer = (*Client)(nil)
	_ products.Lister  = (*Client)(nil)
)

// NewClient construye el cliente.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// SetTokenSource inyecta la fuente del token (la sesión). Se asigna tras la
// construcción porque la sesión necesita a su vez este cliente para /login.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// ListMovements consulta GET /api/inventory/movements con los criterios
// dados. La paginación devuelta es la del servidor tal cual.
func (c *Client) ListMovements(ctx context.Context, f movements.FilterCriteria, page int) ([]entity.Movement, dto.Pagination, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(f.PageSize))
	q.Set("sort_by", f.SortBy)
	q.Set("sort_order", f.SortOrder)
	if !f.StartDate.IsZero() {
		q.Set("start_date", f.StartDate.Format("2006-01-02"))
	}
	if !f.EndDate.IsZero() {
		q.Set("end_date", f.EndDate.Format("2006-01-02"))
	}
	if f.MovementType != "" {
		q.Set("movement_type", f.MovementType)
	}
	if f.ProductID != "" {
		q.Set("product_id", f.ProductID)
	}
	if f.Reason != "" {
		q.Set("reason", f.Reason)
	}
	if f.CreatedBy != "" {
		q.Set("created_by", f.CreatedBy)
	}
	if f.ReferenceNumber != "" {
		q.Set("reference_number", f.ReferenceNumber)
	}
	if f.MinQuantity > 0 {
		q.Set("min_quantity", strconv.Itoa(f.MinQuantity))
	}
	if f.MaxQuantity > 0 {
		q.Set("max_quantity", strconv.Itoa(f.MaxQuantity))
	}

	var resp dto.MovementListResponse
	if err := c.do(ctx, http.MethodGet, "/api/inventory/movements", q, nil, &resp); err != nil {
		return nil, dto.Pagination{}, err
	}
	if !resp.Success {
		return nil, dto.Pagination{}, fmt.Errorf("%w: listar movimientos", domain.ErrRequestFailed)
	}

	records := make([]entity.Movement, 0, len(resp.Data))
	for _, d := range resp.Data {
		records = append(records, d.ToEntity())
	}
	return records, resp.Pagination, nil
}

// CreateMovement registra un movimiento vía POST /api/inventory/movements.
func (c *Client) CreateMovement(ctx context.Context, req dto.CreateMovementRequest) (*entity.Movement, error) {
	var resp dto.MovementResponse
	if err := c.do(ctx, http.MethodPost, "/api/inventory/movements", nil, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: crear movimiento", domain.ErrRequestFailed)
	}
	mv := resp.Data.ToEntity()
	return &mv, nil
}

// DeleteMovement elimina un movimiento vía DELETE /api/inventory/movements/{id}.
func (c *Client) DeleteMovement(ctx context.Context, id string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	path := "/api/inventory/movements/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: eliminar movimiento", domain.ErrRequestFailed)
	}
	return nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// ListProducts consulta GET /api/products.
func (c *Client) ListProducts(ctx context.Context, pq products.Query) ([]entity.Product, error) {
	q := url.Values{}
	if pq.Limit > 0 {
		q.Set("limit", strconv.Itoa(pq.Limit))
	}
	if pq.Status != "" {
		q.Set("status", pq.Status)
	}
	if len(pq.Fields) > 0 {
		q.Set("fields", strings.Join(pq.Fields, ","))
	}

	var resp dto.ProductListResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: listar productos", domain.ErrRequestFailed)
	}

	list := make([]entity.Product, 0, len(resp.Data))
	for _, d := range resp.Data {
		list = append(list, d.ToEntity())
	}
	return list, nil
}

// ── Autenticación ─────────────────────────────────────────────────────────────

// Login autentica vía POST /api/auth/login y devuelve token + usuario.
func (c *Client) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", nil, err
	}
	if !resp.Success || resp.Data.Token == "" {
		return "", nil, fmt.Errorf("%w: login", domain.ErrRequestFailed)
	}
	user := resp.Data.User.ToEntity()
	return resp.Data.Token, &user, nil
}

// Me devuelve el usuario del token vigente vía GET /api/auth/me.
func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var resp dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: me", domain.ErrRequestFailed)
	}
	user := resp.Data.ToEntity()
	return &user, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

// do construye y ejecuta la petición, y decodifica el envelope en out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("api: crear HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// La cancelación cooperativa (petición superseded) se distingue del
		// resto: jamás se muestra al usuario.
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, domain.ErrCancelled)
		}
		// Timeout y fallo de red reciben el mismo trato: no hubo respuesta.
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, domain.ErrCancelled)
		}
		return fmt.Errorf("%s %s: leer respuesta: %w", method, path, domain.ErrUnavailable)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api: petición completada")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp.StatusCode, rawBody)
	}

	if out != nil {
		if err := json.Unmarshal(rawBody, out); err != nil {
			return fmt.Errorf("%w: respuesta no es JSON válido: %v", domain.ErrRequestFailed, err)
		}
	}
	return nil
}

// mapError traduce un estado no 2xx al centinela de dominio, conservando el
// mensaje del backend cuando viene en el envelope de error.
func (c *Client) mapError(status int, rawBody []byte) error {
	var e dto.ErrorResponse
	msg := ""
	if json.Unmarshal(rawBody, &e) == nil && e.Message != "" {
		msg = e.Message
	}

	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = domain.ErrInvalidInput
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrInsufficientStock
	default:
		sentinel = domain.ErrRequestFailed
	}

	if msg != "" {
		return fmt.Errorf("%w: %s (HTTP %d)", sentinel, msg, status)
	}
	return fmt.Errorf("%w: HTTP %d", sentinel, status)
}
