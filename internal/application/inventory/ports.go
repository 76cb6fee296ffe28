package inventory

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un repositorio atado a esa tx.
// Garantiza que lectura-verificación-escritura sobre una fila sea atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.SweetRepository) error) error
}

// EventPublisher publica eventos de inventario ya confirmados. Best effort:
// un error se registra en la implementación y no revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
