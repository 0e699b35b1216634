package dto

import "github.com/jhoicas/Inventario-console/internal/domain/entity"

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO representación wire del usuario autenticado.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ToEntity convierte el DTO a la entidad del dominio.
func (d UserDTO) ToEntity() entity.User {
	return entity.User{ID: d.ID, Name: d.Name, Email: d.Email, Role: d.Role}
}

// UserFromEntity convierte la entidad al DTO wire (lado stub).
func UserFromEntity(u entity.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// LoginResponse envelope de POST /api/auth/login.
type LoginResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Token string  `json:"token"`
		User  UserDTO `json:"user"`
	} `json:"data"`
}

// MeResponse envelope de GET /api/auth/me.
type MeResponse struct {
	Success bool    `json:"success"`
	Data    UserDTO `json:"data"`
}
