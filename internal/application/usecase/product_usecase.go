package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía el libro de stock.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create crea un nuevo producto. Cost inicia en 0 y el estado por defecto es active.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.ProductStatusActive
	}
	if !entity.ValidProductStatus(status) {
		return nil, domain.Invalid("status", "active o inactive")
	}
	if err := uc.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(entity.MoneyPlaces),
		Cost:        decimal.Zero,
		Status:      status,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, ""), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product, ""), nil
}

// Update actualización parcial. No permite modificar Cost ni Stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
		product.Price = in.Price.Round(entity.MoneyPlaces)
	}
	if in.Status != nil {
		if !entity.ValidProductStatus(*in.Status) {
			return nil, domain.Invalid("status", "active o inactive")
		}
		product.Status = *in.Status
	}
	if in.CategoryID != nil {
		if err := uc.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, ""), nil
}

// List lista productos con su categoría, ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page = page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(&p.Product, p.CategoryName))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto y su stock. Las ventas históricas conservan el nombre.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) requireCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	c, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return domain.Invalid("price", "no puede ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product, categoryName string) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Cost:         p.Cost,
		Status:       p.Status,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
