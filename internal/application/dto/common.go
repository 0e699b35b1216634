package dto

// Pagination metadatos de página del envelope de listados.
// Los nombres de clave (camelCase) son exactamente los que emite el backend;
// el cliente nunca los recalcula por su cuenta.
type Pagination struct {
	Page       int `json:"page"`       // 1-based
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
	Limit      int `json:"limit"`
}

// ErrorResponse cuerpo de error HTTP del backend.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
