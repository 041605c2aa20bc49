package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusCancelled = "cancelled"
)

// MoneyPlaces precisión de montos persistidos.
const MoneyPlaces = 2

// Sale cabecera de una venta. ClientID vacío = venta de mostrador (walk-in).
// Una vez persistida es inmutable.
type Sale struct {
	ID             string
	Date           time.Time
	Total          decimal.Decimal
	Status         string
	ClientID       string
	IdempotencyKey string
	RequestHash    string
	Items          []SaleItem
}

// SaleItem línea de venta. UnitPrice es el precio capturado al vender.
// ProductName es una copia del nombre al momento de la venta; se usa solo si el producto fue eliminado.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal quantity × unitPrice. Derivado, nunca persistido como fuente de verdad.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleTotal suma de subtotales redondeada a MoneyPlaces.
func SaleTotal(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(MoneyPlaces)
}
