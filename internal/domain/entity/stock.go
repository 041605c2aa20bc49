package entity

import "time"

// StockLevel cantidad actual de un producto (una fila por producto, upsert).
// LastUpdated es cero si el producto nunca tuvo movimientos de stock.
type StockLevel struct {
	ProductID   string
	Quantity    int
	LastUpdated time.Time
}
