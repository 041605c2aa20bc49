package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry entrada de mercadería (compra a proveedor). Incrementa el stock del producto.
type StockEntry struct {
	ID         string
	ProductID  string
	SupplierID string // vacío si no se registró proveedor
	Quantity   int
	UnitCost   decimal.Decimal
	EntryDate  time.Time
	ExpiryDate *time.Time
	LotNumber  string
	CreatedAt  time.Time
}
