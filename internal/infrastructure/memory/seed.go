package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Seed carga los datos de demostración de la primera ejecución (categorías, productos con stock,
// clientes y proveedores). Solo tiene efecto sobre un store vacío.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	return s.write(ctx, func(st *state) error {
		if len(st.products) > 0 || len(st.categories) > 0 {
			return nil
		}
		category := func(name, description string) string {
			id := uuid.New().String()
			st.categories[id] = entity.Category{ID: id, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
			return id
		}
		frutas := category("Frutas", "Frutas frescas")
		laticinios := category("Laticínios", "Leites e derivados")
		padaria := category("Padaria", "Pães e assados")

		product := func(name, price, categoryID string, quantity int) {
			id := uuid.New().String()
			st.products[id] = entity.Product{
				ID:         id,
				Name:       name,
				Price:      decimal.RequireFromString(price),
				Status:     entity.ProductStatusActive,
				CategoryID: categoryID,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			st.stock[id] = entity.StockLevel{ProductID: id, Quantity: quantity, LastUpdated: now}
		}
		product("Maçã Gala", "5.50", frutas, 50)
		product("Leite Integral 1L", "4.20", laticinios, 30)
		product("Pão Francês", "0.80", padaria, 200)

		for _, name := range []string{"Ana Paula", "Bruno Costa"} {
			id := uuid.New().String()
			st.clients[id] = entity.Client{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
		}
		for _, name := range []string{"Fazenda Verde", "Laticínios Bom Leite"} {
			id := uuid.New().String()
			st.suppliers[id] = entity.Supplier{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
		}
		return nil
	})
}
