package entity

// User usuario autenticado de la sesión.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string // "admin" | "bodeguero"
}
