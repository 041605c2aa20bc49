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
)

// CategoryUseCase CRUD de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	now := time.Now()
	c := &entity.Category{ID: uuid.New().String(), Name: name, Description: in.Description, CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// Update reemplazo completo (name obligatorio).
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Name = name
	c.Description = in.Description
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

func (uc *CategoryUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.CategoryResponse, error) {
	page = page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// ClientUseCase CRUD de clientes. El CPF, si viene, debe ser único.
type ClientUseCase struct {
	repo repository.ClientRepository
}

func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

func normalizeClient(in dto.ClientRequest) (dto.ClientRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CPF = strings.TrimSpace(in.CPF)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return in, domain.Invalid("name", "requerido")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return in, domain.Invalid("email", "formato inválido")
	}
	return in, nil
}

func (uc *ClientUseCase) Create(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in, err := normalizeClient(in)
	if err != nil {
		return nil, err
	}
	if in.CPF != "" {
		existing, err := uc.repo.GetByCPF(ctx, in.CPF)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	c := &entity.Client{
		ID: uuid.New().String(), Name: in.Name, CPF: in.CPF, Email: in.Email,
		Phone: in.Phone, Address: in.Address, CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toClientResponse(c), nil
}

func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in, err := normalizeClient(in)
	if err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.CPF != "" && in.CPF != c.CPF {
		existing, err := uc.repo.GetByCPF(ctx, in.CPF)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, domain.ErrDuplicate
		}
	}
	c.Name, c.CPF, c.Email, c.Phone, c.Address = in.Name, in.CPF, in.Email, in.Phone, in.Address
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

func (uc *ClientUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.ClientResponse, error) {
	page = page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toClientResponse(c))
	}
	return out, nil
}

func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID: c.ID, Name: c.Name, CPF: c.CPF, Email: c.Email, Phone: c.Phone, Address: c.Address,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

// SupplierUseCase CRUD de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	now := time.Now()
	s := &entity.Supplier{
		ID: uuid.New().String(), Name: name, ContactName: in.ContactName, Phone: in.Phone, Email: in.Email,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(s), nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	s.Name, s.ContactName, s.Phone, s.Email = name, in.ContactName, in.Phone, in.Email
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

func (uc *SupplierUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.SupplierResponse, error) {
	page = page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID: s.ID, Name: s.Name, ContactName: s.ContactName, Phone: s.Phone, Email: s.Email,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}
