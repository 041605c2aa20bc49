package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// errorStatus traduce la taxonomía de dominio a status HTTP y cuerpo de error.
func errorStatus(err error) (int, dto.ErrorResponse) {
	var (
		validation *domain.ValidationError
		short      *domain.InsufficientStockError
	)
	switch {
	case errors.Is(err, domain.ErrEmptySale):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "EMPTY_SALE", Message: "la venta debe contener al menos un ítem", Field: "items"}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "cantidad inválida", Field: "quantity"}
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: validation.Reason, Field: validation.Field}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"}
	case errors.As(err, &short):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente", Details: short.Shortages}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrIdempotencyMismatch):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "IDEMPOTENCY_MISMATCH", Message: "clave de idempotencia reutilizada con otro contenido"}
	case errors.Is(err, domain.ErrTimeout):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación no terminó a tiempo", Retryable: true}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: "modificación concurrente, reintente", Retryable: true}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible", Retryable: true}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// writeError responde el error mapeado. Los 5xx se registran con el error completo.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Int("status", status).Msg("request fallido")
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}.Normalize()
}
