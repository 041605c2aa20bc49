package repository

import (
	"context"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, limit, offset int) ([]*entity.Category, error)
	// Delete devuelve domain.ErrNotFound si no existe. Los productos quedan sin categoría.
	Delete(ctx context.Context, id string) error
}
