package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"` // active|inactive, por defecto active
	CategoryID  string          `json:"category_id"`
}

// UpdateProductRequest actualización parcial (Cost y Stock no se editan aquí).
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
	CategoryID  *string          `json:"category_id"` // "" quita la categoría
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Status       string          `json:"status"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
