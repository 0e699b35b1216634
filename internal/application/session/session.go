// Package session administra la sesión autenticada como un objeto explícito
// inyectado por dependencia: nada de singletons ambientales. Ciclo de vida:
// Init (restauración silenciosa) → authenticated | anonymous → Teardown.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Inventario-console/pkg/jwt"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// State estado de la sesión.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// AuthAPI puerto de autenticación contra el backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, user *entity.User, err error)
	Me(ctx context.Context) (*entity.User, error)
}

// Session sesión explícita del usuario. Implementa el TokenSource del
// cliente HTTP: el token vigente viaja en cada petición autenticada.
// El almacenamiento durable del token queda fuera de alcance.
type Session struct {
	api AuthAPI
	log *logger.Logger
	now func() time.Time

	mu    sync.Mutex
	state State
	token string
	user  *entity.User
}

// New construye una sesión anónima.
func New(api AuthAPI, log *logger.Logger) *Session {
	return &Session{api: api, log: log, now: time.Now, state: StateAnonymous}
}

// Init intenta la restauración silenciosa: si se inyectó un token por
// entorno, inspecciona su expiración en el cliente (sin verificar firma) y
// lo valida contra GET /api/auth/me. Cualquier fallo deja la sesión anónima
// sin propagar error: la restauración silenciosa nunca es ruidosa.
func (s *Session) Init(ctx context.Context, token string) {
	if token == "" {
		return
	}
	exp, err := pkgjwt.ExpiresAt(token)
	if err != nil || !exp.After(s.now()) {
		s.log.Debug().Msg("sesión: token inyectado vencido o malformado, se ignora")
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Debug().Err(err).Msg("sesión: el backend rechazó el token inyectado")
		s.token = ""
		return
	}
	s.state = StateAuthenticated
	s.user = user
	s.log.Info().Str("user", user.Email).Msg("sesión restaurada")
}

// Login autentica contra el backend y deja la sesión en authenticated.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email y contraseña son obligatorios", domain.ErrInvalidInput)
	}
	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.token = token
	s.user = user
	s.log.Info().Str("user", user.Email).Msg("sesión iniciada")
	return nil
}

// Logout limpia todo el estado derivado de la sesión.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.token = ""
	s.user = nil
	s.log.Info().Msg("sesión cerrada")
}

// Teardown desmontaje explícito: hoy equivale a Logout.
func (s *Session) Teardown() { s.Logout() }

// Token implementa el TokenSource del cliente HTTP. Vacío si es anónima.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// State devuelve el estado vigente.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User devuelve el usuario autenticado (nil si la sesión es anónima).
func (s *Session) User() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
