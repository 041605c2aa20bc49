package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// RequestIDHeader cabecera de correlación aceptada y devuelta.
const RequestIDHeader = "X-Request-ID"

// RequestID asigna un id por request (o reutiliza el recibido).
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{Header: RequestIDHeader})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(RequestIDHeader)
}

// RequestLogger registra método, ruta, status y latencia de cada request.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("http request")
		return err
	}
}
