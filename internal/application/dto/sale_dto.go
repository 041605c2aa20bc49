package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada.
type SaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales.
// El total se recalcula en el servidor; cualquier total enviado por el cliente se ignora.
type CreateSaleRequest struct {
	ClientID       string            `json:"client_id"`
	Items          []SaleItemRequest `json:"items"`
	IdempotencyKey string            `json:"idempotency_key"`
}

// CreateSaleResponse resultado de registrar una venta.
type CreateSaleResponse struct {
	SaleID   string          `json:"sale_id"`
	Total    decimal.Decimal `json:"total"`
	Replayed bool            `json:"replayed"`
}

// SaleSummaryResponse fila de GET /api/sales.
type SaleSummaryResponse struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	ClientID   string          `json:"client_id,omitempty"`
	ClientName string          `json:"client_name,omitempty"`
	ItemCount  int             `json:"item_count"`
}

// SaleDetailItemResponse línea del detalle.
type SaleDetailItemResponse struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleDetailResponse GET /api/sales/:id.
type SaleDetailResponse struct {
	SaleSummaryResponse
	Items []SaleDetailItemResponse `json:"items"`
}
