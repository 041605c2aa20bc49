package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")

	// Variantes de validación: errors.Is(err, ErrInvalidInput) es true para ambas.
	ErrInvalidQuantity = fmt.Errorf("%w: cantidad inválida", ErrInvalidInput)
	ErrEmptySale       = fmt.Errorf("%w: la venta debe contener al menos un ítem", ErrInvalidInput)

	// ErrTimeout la operación no terminó (o no obtuvo sus locks) dentro del plazo; se hizo rollback.
	ErrTimeout = fmt.Errorf("%w: tiempo de espera agotado", ErrConflict)

	// ErrIdempotencyMismatch la clave de idempotencia ya se usó con otro contenido. No se reintenta.
	ErrIdempotencyMismatch = fmt.Errorf("%w: clave de idempotencia reutilizada con otro contenido", ErrConflict)
)

// ValidationError identifica el campo rechazado. Coincide con ErrInvalidInput vía errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockShortage producto sin stock suficiente dentro de una operación.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError lista los productos que no alcanzan. Coincide con ErrInsufficientStock.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortages) == 0 {
		return ErrInsufficientStock.Error()
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (solicitado %d, disponible %d)", s.ProductID, s.Requested, s.Available))
	}
	return ErrInsufficientStock.Error() + ": " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// IsRetryable indica si el caller puede reintentar la operación completa.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrIdempotencyMismatch) {
		return false
	}
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStorageUnavailable)
}
