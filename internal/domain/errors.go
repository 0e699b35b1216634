package domain

import "errors"

// Errores de dominio del cliente (sin dependencias externas).
// La capa de transporte mapea estado HTTP / envelope a estos centinelas;
// la consola decide con errors.Is qué mostrar al usuario.
var (
	ErrUnavailable       = errors.New("servicio no disponible")  // fallo de red o timeout: no hubo respuesta
	ErrRequestFailed     = errors.New("la petición falló")       // respuesta recibida con success:false o estado no 2xx
	ErrCancelled         = errors.New("petición cancelada")      // superseded: se descarta en silencio, nunca se muestra
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
