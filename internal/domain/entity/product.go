package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto del catálogo.
// El precio vigente no se historiza: cada línea de venta captura su propio precio unitario.
// Cost es promedio ponderado calculado desde las entradas de stock.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Status      string
	CategoryID  string // vacío si no tiene categoría
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si el producto puede venderse.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ValidProductStatus valida el estado recibido.
func ValidProductStatus(s string) bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}
