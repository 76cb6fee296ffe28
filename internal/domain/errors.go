package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrAuthenticationFailed = errors.New("email o contraseña incorrectos")
	ErrUnauthenticated      = errors.New("autenticación requerida")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInvalidToken         = errors.New("token inválido")
	ErrExpiredToken         = errors.New("token expirado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrTooManyRequests      = errors.New("demasiadas solicitudes")
)

// InsufficientStockError detalla una compra rechazada; errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	SweetID   int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
