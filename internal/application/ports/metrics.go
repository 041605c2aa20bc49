package ports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de falla de venta reportados a métricas.
const (
	FailureValidation   = "validation"
	FailureNotFound     = "not_found"
	FailureInsufficient = "insufficient_stock"
	FailureConflict     = "conflict"
	FailureStorage      = "storage"
	FailureOther        = "other"
)

// SalesMetrics puerto de salida para instrumentación del libro de ventas y stock.
type SalesMetrics interface {
	SaleCommitted(total decimal.Decimal, elapsed time.Duration)
	SaleReplayed()
	SaleFailed(reason string)
	SaleRetried()
	StockAdjusted(kind string, products int)
}

// NopMetrics implementación vacía (tests / métricas deshabilitadas).
type NopMetrics struct{}

func (NopMetrics) SaleCommitted(decimal.Decimal, time.Duration) {}
func (NopMetrics) SaleReplayed()                                {}
func (NopMetrics) SaleFailed(string)                            {}
func (NopMetrics) SaleRetried()                                 {}
func (NopMetrics) StockAdjusted(string, int)                    {}
