// Package memory implementa los puertos de persistencia en proceso (modo local / demo y tests).
// Cada escritura trabaja sobre una copia del estado y la publica completa al confirmar;
// los lectores nunca ven una transacción a medias.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	categories  map[string]entity.Category
	products    map[string]entity.Product
	clients     map[string]entity.Client
	suppliers   map[string]entity.Supplier
	stock       map[string]entity.StockLevel
	entries     []entity.StockEntry
	sales       map[string]entity.Sale
	idempotency map[string]string // clave -> sale id
}

func newState() *state {
	return &state{
		categories:  map[string]entity.Category{},
		products:    map[string]entity.Product{},
		clients:     map[string]entity.Client{},
		suppliers:   map[string]entity.Supplier{},
		stock:       map[string]entity.StockLevel{},
		sales:       map[string]entity.Sale{},
		idempotency: map[string]string{},
	}
}

// clone copia superficial: las entidades se guardan por valor y los slices publicados no se mutan.
func (s *state) clone() *state {
	return &state{
		categories:  cloneMap(s.categories),
		products:    cloneMap(s.products),
		clients:     cloneMap(s.clients),
		suppliers:   cloneMap(s.suppliers),
		stock:       cloneMap(s.stock),
		entries:     append([]entity.StockEntry(nil), s.entries...),
		sales:       cloneMap(s.sales),
		idempotency: cloneMap(s.idempotency),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// access abstrae el estado sobre el que opera un repositorio: el publicado (Store) o la copia de una tx.
type access interface {
	read(ctx context.Context) (*state, error)
	write(ctx context.Context, fn func(st *state) error) error
}

// Store estado en memoria. Las escrituras se serializan con un semáforo que respeta ctx.
type Store struct {
	mu     sync.RWMutex
	state  *state
	writer chan struct{}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState(), writer: make(chan struct{}, 1)}
}

func (s *Store) read(ctx context.Context) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return contextError(ctx.Err())
	}
	defer func() { <-s.writer }()

	s.mu.RLock()
	next := s.state.clone()
	s.mu.RUnlock()

	if err := fn(next); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return contextError(err)
	}
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return nil
}

// Run ejecuta fn sobre una copia privada del estado; se publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepositories) error) error {
	return s.write(ctx, func(st *state) error {
		tx := &txAccess{st: st}
		return fn(ports.TxRepositories{
			Products:     &ProductRepo{a: tx},
			Clients:      &ClientRepo{a: tx},
			Stock:        &StockRepo{a: tx},
			StockEntries: &StockEntryRepo{a: tx},
			Sales:        &SaleRepo{a: tx},
		})
	})
}

// Repositorios fuera de transacción.
func (s *Store) Categories() *CategoryRepo     { return &CategoryRepo{a: s} }
func (s *Store) Products() *ProductRepo        { return &ProductRepo{a: s} }
func (s *Store) Clients() *ClientRepo          { return &ClientRepo{a: s} }
func (s *Store) Suppliers() *SupplierRepo      { return &SupplierRepo{a: s} }
func (s *Store) Stock() *StockRepo             { return &StockRepo{a: s} }
func (s *Store) StockEntries() *StockEntryRepo { return &StockEntryRepo{a: s} }
func (s *Store) Sales() *SaleRepo              { return &SaleRepo{a: s} }
func (s *Store) Dashboard() *DashboardRepo     { return &DashboardRepo{a: s} }

// txAccess estado privado de una transacción en curso; el semáforo del Store ya está tomado.
type txAccess struct {
	st *state
}

func (t *txAccess) read(ctx context.Context) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return t.st, nil
}

func (t *txAccess) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return contextError(err)
	}
	return fn(t.st)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}
