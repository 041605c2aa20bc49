// Package cache guarda en Redis el resultado de ventas confirmadas por clave de idempotencia.
// Es solo un atajo de lectura: la fuente de verdad es el índice único de sales.idempotency_key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ ports.IdempotencyCache = (*RedisIdempotencyCache)(nil)

const keyPrefix = "gelp:sale:idem:"

// RedisIdempotencyCache implementa ports.IdempotencyCache con TTL fijo.
type RedisIdempotencyCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisIdempotencyCache client puede ser *redis.Client o *redis.ClusterClient.
func NewRedisIdempotencyCache(client redis.Cmdable, ttl time.Duration) *RedisIdempotencyCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyCache{client: client, ttl: ttl}
}

type record struct {
	SaleID      string          `json:"sale_id"`
	RequestHash string          `json:"request_hash"`
	Total       decimal.Decimal `json:"total"`
}

// Key clave Redis para una clave de idempotencia.
func Key(idempotencyKey string) string {
	return keyPrefix + idempotencyKey
}

// Get (nil, nil) si la clave no está en caché.
func (c *RedisIdempotencyCache) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	raw, err := c.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &ports.IdempotencyRecord{SaleID: r.SaleID, RequestHash: r.RequestHash, Total: r.Total}, nil
}

// Put SET NX: la primera venta confirmada para una clave no se sobrescribe.
func (c *RedisIdempotencyCache) Put(ctx context.Context, key string, rec ports.IdempotencyRecord) error {
	raw, err := json.Marshal(record{SaleID: rec.SaleID, RequestHash: rec.RequestHash, Total: rec.Total})
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := c.client.SetNX(ctx, Key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Ping verifica la conexión al arrancar.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
