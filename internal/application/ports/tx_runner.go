package ports

import (
	"context"

	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

// TxRepositories repositorios atados a una misma transacción.
type TxRepositories struct {
	Products     repository.ProductRepository
	Clients      repository.ClientRepository
	Stock        repository.StockRepository
	StockEntries repository.StockEntryRepository
	Sales        repository.SaleRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD y hace Commit si fn devuelve nil,
// Rollback en cualquier otro caso. Ningún efecto de fn es visible antes del Commit.
// Los errores de infraestructura se devuelven envueltos en domain.ErrConflict
// (reintentable) o domain.ErrStorageUnavailable.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepositories) error) error
}
