package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelResponse GET /api/stock/:productId. LastUpdated es null si nunca hubo stock.
type StockLevelResponse struct {
	ProductID   string     `json:"product_id"`
	Quantity    int        `json:"quantity"`
	LastUpdated *time.Time `json:"last_updated"`
}

// StockListItemResponse fila de GET /api/stock. LastUpdated es null en filas nunca escritas.
type StockListItemResponse struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	LastUpdated *time.Time `json:"last_updated"`
}

// SetStockRequest body para PUT /api/stock/:productId.
type SetStockRequest struct {
	Quantity *int `json:"quantity"`
}

// AdjustStockRequest body para POST /api/stock/:productId/adjust.
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// StockAdjustmentItem un delta dentro de un ajuste agrupado.
type StockAdjustmentItem struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
}

// AdjustManyRequest body para POST /api/stock/adjustments (todo o nada).
type AdjustManyRequest struct {
	Items []StockAdjustmentItem `json:"items"`
}

// AdjustManyResponse cantidades resultantes por producto.
type AdjustManyResponse struct {
	Quantities map[string]int `json:"quantities"`
}

// CreateStockEntryRequest body para POST /api/stock/entries.
type CreateStockEntryRequest struct {
	ProductID  string          `json:"product_id"`
	SupplierID string          `json:"supplier_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiryDate string          `json:"expiry_date"` // YYYY-MM-DD, opcional
	LotNumber  string          `json:"lot_number"`
}

// StockEntryResponse entrada registrada.
type StockEntryResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	EntryDate   time.Time       `json:"entry_date"`
	ExpiryDate  string          `json:"expiry_date,omitempty"`
	LotNumber   string          `json:"lot_number,omitempty"`
	NewQuantity int             `json:"new_quantity,omitempty"`
}
