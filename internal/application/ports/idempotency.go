package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// IdempotencyRecord resultado recordado de una venta ya confirmada.
type IdempotencyRecord struct {
	SaleID      string
	RequestHash string
	Total       decimal.Decimal
}

// IdempotencyCache caché opcional delante del índice único sales.idempotency_key.
// La base de datos es la fuente de verdad; un fallo del caché nunca bloquea una venta.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Put(ctx context.Context, key string, rec IdempotencyRecord) error
}

// NopIdempotencyCache caché deshabilitado.
type NopIdempotencyCache struct{}

func (NopIdempotencyCache) Get(context.Context, string) (*IdempotencyRecord, error) { return nil, nil }
func (NopIdempotencyCache) Put(context.Context, string, IdempotencyRecord) error    { return nil }
