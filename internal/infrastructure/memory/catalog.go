package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.ClientRepository   = (*ClientRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

type CategoryRepo struct{ a access }

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.categories[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := st.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.a.write(ctx, func(st *state) error {
		old, ok := st.categories[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := *c
		upd.CreatedAt = old.CreatedAt
		st.categories[c.ID] = upd
		return nil
	})
}

func (r *CategoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Category, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Category, 0, len(st.categories))
	for _, c := range st.categories {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

// Delete deja sin categoría a sus productos.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.categories, id)
		for pid, p := range st.products {
			if p.CategoryID == id {
				p.CategoryID = ""
				st.products[pid] = p
			}
		}
		return nil
	})
}

type ProductRepo struct{ a access }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if p.CategoryID != "" {
			if _, ok := st.categories[p.CategoryID]; !ok {
				return domain.ErrNotFound
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := st.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

// Update no toca Cost.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.a.write(ctx, func(st *state) error {
		old, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.CategoryID != "" {
			if _, ok := st.categories[p.CategoryID]; !ok {
				return domain.ErrNotFound
			}
		}
		upd := *p
		upd.Cost = old.Cost
		upd.CreatedAt = old.CreatedAt
		st.products[p.ID] = upd
		return nil
	})
}

func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	return r.a.write(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.Cost = cost
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*repository.ProductView, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*repository.ProductView, 0, len(st.products))
	for _, p := range st.products {
		v := &repository.ProductView{Product: p}
		if c, ok := st.categories[p.CategoryID]; ok {
			v.CategoryName = c.Name
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

// Delete borra el producto y su stock; las líneas de venta pierden la referencia y conservan el nombre copiado.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		delete(st.stock, id)
		kept := st.entries[:0]
		for _, e := range st.entries {
			if e.ProductID != id {
				kept = append(kept, e)
			}
		}
		st.entries = kept
		for sid, sale := range st.sales {
			touched := false
			items := make([]entity.SaleItem, len(sale.Items))
			for i, it := range sale.Items {
				if it.ProductID == id {
					it.ProductID = ""
					touched = true
				}
				items[i] = it
			}
			if touched {
				sale.Items = items
				st.sales[sid] = sale
			}
		}
		return nil
	})
}

type ClientRepo struct{ a access }

func cpfTaken(st *state, cpf, exceptID string) bool {
	if cpf == "" {
		return false
	}
	for id, c := range st.clients {
		if c.CPF == cpf && id != exceptID {
			return true
		}
	}
	return false
}

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.clients[c.ID]; ok || cpfTaken(st, c.CPF, "") {
			return domain.ErrDuplicate
		}
		st.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := st.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) GetByCPF(ctx context.Context, cpf string) (*entity.Client, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range st.clients {
		if cpf != "" && c.CPF == cpf {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Client, 0, len(st.clients))
	for _, c := range st.clients {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	return r.a.write(ctx, func(st *state) error {
		old, ok := st.clients[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cpfTaken(st, c.CPF, c.ID) {
			return domain.ErrDuplicate
		}
		upd := *c
		upd.CreatedAt = old.CreatedAt
		st.clients[c.ID] = upd
		return nil
	})
}

// Delete sus ventas quedan como ventas de mostrador.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.clients[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.clients, id)
		for sid, sale := range st.sales {
			if sale.ClientID == id {
				sale.ClientID = ""
				st.sales[sid] = sale
			}
		}
		return nil
	})
}

type SupplierRepo struct{ a access }

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return domain.ErrDuplicate
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	st, err := r.a.read(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Supplier, 0, len(st.suppliers))
	for _, s := range st.suppliers {
		s := s
		list = append(list, &s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	return r.a.write(ctx, func(st *state) error {
		old, ok := st.suppliers[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := *s
		upd.CreatedAt = old.CreatedAt
		st.suppliers[s.ID] = upd
		return nil
	})
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	return r.a.write(ctx, func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.suppliers, id)
		for i := range st.entries {
			if st.entries[i].SupplierID == id {
				st.entries[i].SupplierID = ""
			}
		}
		return nil
	})
}
