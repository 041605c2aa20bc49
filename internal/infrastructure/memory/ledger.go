package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var (
	_ repository.StockRepository      = (*StockRepo)(nil)
	_ repository.StockEntryRepository = (*StockEntryRepo)(nil)
	_ repository.SaleRepository       = (*SaleRepo)(nil)
	_ repository.DashboardRepository  = (*DashboardRepo)(nil)
)

type StockRepo struct{ a access }

func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockLevel, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	level, ok := st.stock[productID]
	if !ok {
		level = entity.StockLevel{ProductID: productID}
	}
	return &level, nil
}

// LockForUpdate dentro de Store.Run el semáforo de escritura ya serializa el acceso;
// solo crea en 0 las filas faltantes.
func (r *StockRepo) LockForUpdate(ctx context.Context, productIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	err := r.a.write(ctx, func(st *state) error {
		for _, id := range productIDs {
			if _, ok := st.products[id]; !ok {
				return domain.ErrNotFound
			}
			level, ok := st.stock[id]
			if !ok {
				// La clave sobrevive al request: copia propia.
				key := strings.Clone(id)
				level = entity.StockLevel{ProductID: key}
				st.stock[key] = level
			}
			out[id] = level.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.products[level.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if level.Quantity < 0 {
			return fmt.Errorf("%w: %s quedaría en %d", domain.ErrInsufficientStock, level.ProductID, level.Quantity)
		}
		row := *level
		row.ProductID = strings.Clone(level.ProductID)
		st.stock[row.ProductID] = row
		return nil
	})
}

func (r *StockRepo) List(ctx context.Context) ([]repository.StockListItem, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]repository.StockListItem, 0, len(st.stock))
	for id, level := range st.stock {
		p, ok := st.products[id]
		if !ok {
			continue
		}
		list = append(list, repository.StockListItem{
			ProductID:   id,
			ProductName: p.Name,
			Quantity:    level.Quantity,
			LastUpdated: level.LastUpdated,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductName != list[j].ProductName {
			return list[i].ProductName < list[j].ProductName
		}
		return list[i].ProductID < list[j].ProductID
	})
	return list, nil
}

type StockEntryRepo struct{ a access }

func (r *StockEntryRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.products[e.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if e.SupplierID != "" {
			if _, ok := st.suppliers[e.SupplierID]; !ok {
				return domain.ErrNotFound
			}
		}
		st.entries = append(st.entries, *e)
		return nil
	})
}

func (r *StockEntryRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.StockEntry, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	var list []*entity.StockEntry
	for _, e := range st.entries {
		if productID != "" && e.ProductID != productID {
			continue
		}
		e := e
		list = append(list, &e)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].EntryDate.Equal(list[j].EntryDate) {
			return list[i].EntryDate.After(list[j].EntryDate)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

type SaleRepo struct{ a access }

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		if sale.IdempotencyKey != "" {
			if _, ok := st.idempotency[sale.IdempotencyKey]; ok {
				return domain.ErrDuplicate
			}
		}
		if sale.ClientID != "" {
			if _, ok := st.clients[sale.ClientID]; !ok {
				return domain.ErrNotFound
			}
		}
		for _, it := range sale.Items {
			if _, ok := st.products[it.ProductID]; !ok {
				return domain.ErrNotFound
			}
		}
		stored := *sale
		stored.Items = append([]entity.SaleItem(nil), sale.Items...)
		st.sales[sale.ID] = stored
		if sale.IdempotencyKey != "" {
			st.idempotency[sale.IdempotencyKey] = sale.ID
		}
		return nil
	})
}

func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := st.idempotency[key]
	if !ok {
		return nil, nil
	}
	sale := st.sales[id]
	sale.Items = nil
	return &sale, nil
}

func summarize(st *state, s entity.Sale) repository.SaleSummary {
	out := repository.SaleSummary{
		ID:        s.ID,
		Date:      s.Date,
		Total:     s.Total,
		Status:    s.Status,
		ClientID:  s.ClientID,
		ItemCount: len(s.Items),
	}
	if c, ok := st.clients[s.ClientID]; ok {
		out.ClientName = c.Name
	}
	return out
}

func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]repository.SaleSummary, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]repository.SaleSummary, 0, len(st.sales))
	for _, s := range st.sales {
		list = append(list, summarize(st, s))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return strings.Compare(list[i].ID, list[j].ID) < 0
	})
	return page(list, limit, offset), nil
}

func (r *SaleRepo) GetDetail(ctx context.Context, id string) (*repository.SaleDetail, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := st.sales[id]
	if !ok {
		return nil, nil
	}
	d := &repository.SaleDetail{SaleSummary: summarize(st, s), Items: make([]repository.SaleDetailItem, 0, len(s.Items))}
	for _, it := range s.Items {
		name := it.ProductName
		if p, ok := st.products[it.ProductID]; ok {
			name = p.Name
		}
		d.Items = append(d.Items, repository.SaleDetailItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return d, nil
}

type DashboardRepo struct{ a access }

func (r *DashboardRepo) CountProducts(ctx context.Context) (int, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return 0, err
	}
	return len(st.products), nil
}

func (r *DashboardRepo) CountProductsInStock(ctx context.Context) (int, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, level := range st.stock {
		if level.Quantity > 0 {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) CountClients(ctx context.Context) (int, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return 0, err
	}
	return len(st.clients), nil
}

func (r *DashboardRepo) CountSalesBetween(ctx context.Context, start, end time.Time) (int, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range st.sales {
		if !s.Date.Before(start) && s.Date.Before(end) {
			n++
		}
	}
	return n, nil
}
