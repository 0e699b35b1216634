package stubapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-console/internal/application/dto"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Inventario-console/pkg/jwt"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// maxDelay tope del retraso artificial por petición.
const maxDelay = 5 * time.Second

// Config parámetros del stub.
type Config struct {
	JWTSecret  string
	JWTIssuer  string
	ExpMinutes int
	AllowDelay bool // honrar ?delay_ms= (para ejercitar cancelaciones)
}

// Server doble del backend sobre fiber.
type Server struct {
	store *Store
	cfg   Config
	log   *logger.Logger
}

// NewServer construye el servidor.
func NewServer(store *Store, cfg Config, log *logger.Logger) *Server {
	return &Server{store: store, cfg: cfg, log: log}
}

// App arma la aplicación fiber con todas las rutas del contrato.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "inventario-stub",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(recover.New())

	if s.cfg.AllowDelay {
		app.Use(s.delayMiddleware)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "inventario-stub"})
	})

	app.Post("/api/auth/login", s.handleLogin)

	api := app.Group("/api", s.authMiddleware)
	api.Get("/auth/me", s.handleMe)
	api.Get("/products", s.handleListProducts)
	api.Get("/inventory/movements", s.handleListMovements)
	api.Post("/inventory/movements", s.handleCreateMovement)
	api.Delete("/inventory/movements/:id", s.handleDeleteMovement)

	return app
}

// ── Middlewares ───────────────────────────────────────────────────────────────

// delayMiddleware retraso artificial acotado, solo si está habilitado.
func (s *Server) delayMiddleware(c *fiber.Ctx) error {
	if raw := c.Query("delay_ms"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			d := time.Duration(ms) * time.Millisecond
			if d > maxDelay {
				d = maxDelay
			}
			time.Sleep(d)
		}
	}
	return c.Next()
}

// authMiddleware valida el Bearer JWT y carga la identidad en locals.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return respondError(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "falta el token Bearer")
	}
	userID, name, role, err := pkgjwt.Parse(s.cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
	if err != nil || userID == "" {
		return respondError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o vencido")
	}
	c.Locals("user_id", userID)
	c.Locals("user_name", name)
	c.Locals("role", role)
	return c.Next()
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	user, err := s.store.Authenticate(in.Email, in.Password)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "BAD_CREDENTIALS", "credenciales inválidas")
	}
	token, err := pkgjwt.Generate(s.cfg.JWTSecret, user.ID, user.Name, user.Role, s.cfg.JWTIssuer, s.cfg.ExpMinutes)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
	s.log.Info().Str("user", user.Email).Msg("stub: login exitoso")
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token": token,
			"user":  dto.UserFromEntity(*user),
		},
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, ok := s.store.UserByID(userID)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "UNKNOWN_USER", "usuario desconocido")
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.UserFromEntity(*user)})
}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	status := c.Query("status")
	list := s.store.Products(status, limit)

	// Sparse fieldset: si se pide fields, cada producto sale solo con esas claves.
	if raw := c.Query("fields"); raw != "" {
		fields := strings.Split(raw, ",")
		out := make([]fiber.Map, 0, len(list))
		for _, p := range list {
			out = append(out, sparseProduct(dto.ProductFromEntity(p), fields))
		}
		return c.JSON(fiber.Map{"success": true, "data": out})
	}

	out := make([]dto.ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductFromEntity(p))
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (s *Server) handleListMovements(c *fiber.Ctx) error {
	q := ListQuery{
		Page:            c.QueryInt("page", 1),
		Limit:           c.QueryInt("limit", 20),
		SortBy:          c.Query("sort_by", "created_at"),
		SortOrder:       c.Query("sort_order", "desc"),
		MovementType:    c.Query("movement_type"),
		ProductID:       c.Query("product_id"),
		Reason:          c.Query("reason"),
		CreatedBy:       c.Query("created_by"),
		ReferenceNumber: c.Query("reference_number"),
		MinQuantity:     c.QueryInt("min_quantity", 0),
		MaxQuantity:     c.QueryInt("max_quantity", 0),
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.MovementType != "" && !entity.ValidMovementType(q.MovementType) {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "movement_type debe ser in u out")
	}
	for _, df := range []struct {
		param string
		dst   *time.Time
	}{
		{"start_date", &q.StartDate},
		{"end_date", &q.EndDate},
	} {
		if raw := c.Query(df.param); raw != "" {
			t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				return respondError(c, fiber.StatusBadRequest, "VALIDATION", df.param+" debe ser YYYY-MM-DD")
			}
			*df.dst = t
		}
	}

	page, pagination := s.store.ListMovements(q)
	out := make([]dto.MovementDTO, 0, len(page))
	for _, m := range page {
		out = append(out, dto.MovementFromEntity(m))
	}
	return c.JSON(fiber.Map{"success": true, "data": out, "pagination": pagination})
}

func (s *Server) handleCreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	userID, _ := c.Locals("user_id").(string)
	userName, _ := c.Locals("user_name").(string)

	m, err := s.store.ApplyMovement(ApplyInput{
		ProductID:       in.ProductID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		Notes:           in.Notes,
		ReferenceNumber: in.ReferenceNumber,
		UserID:          userID,
		UserName:        userName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return respondError(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos")
		case errors.Is(err, domain.ErrNotFound):
			return respondError(c, fiber.StatusNotFound, "NOT_FOUND", "producto no encontrado")
		case errors.Is(err, domain.ErrInsufficientStock):
			return respondError(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente")
		default:
			return respondError(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": dto.MovementFromEntity(*m)})
}

func (s *Server) handleDeleteMovement(c *fiber.Ctx) error {
	if err := s.store.DeleteMovement(c.Params("id")); err != nil {
		return respondError(c, fiber.StatusNotFound, "NOT_FOUND", "movimiento no encontrado")
	}
	return c.JSON(fiber.Map{"success": true})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Code: code, Message: message})
}

// sparseProduct proyecta el DTO a las claves pedidas; las desconocidas se ignoran.
func sparseProduct(p dto.ProductDTO, fields []string) fiber.Map {
	full := fiber.Map{
		"id": p.ID, "sku": p.SKU, "name": p.Name, "unit": p.Unit,
		"price": p.Price, "stock": p.Stock, "min_stock": p.MinStock,
		"max_stock": p.MaxStock, "status": p.Status,
	}
	out := fiber.Map{}
	for _, f := range fields {
		key := strings.TrimSpace(f)
		if v, ok := full[key]; ok {
			out[key] = v
		}
	}
	return out
}
