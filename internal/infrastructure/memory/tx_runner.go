package memory

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones sobre un SweetRepo (equivalente a un bloqueo de tabla).
// No hay rollback: las funciones deben validar antes de escribir, como hace el caso de uso.
type TxRunner struct {
	repo *SweetRepo
}

// NewTxRunner construye el runner.
func NewTxRunner(repo *SweetRepo) *TxRunner {
	return &TxRunner{repo: repo}
}

// Run ejecuta fn con acceso exclusivo a las mutaciones compuestas.
func (r *TxRunner) Run(ctx context.Context, fn func(repo repository.SweetRepository) error) error {
	r.repo.txMu.Lock()
	defer r.repo.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.repo)
}
