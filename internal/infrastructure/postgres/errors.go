package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/gelp-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
	codeInvalidTextRepr      = "22P02"
	codeNumericOutOfRange    = "22003"
)

// mapError traduce errores de pgx a la taxonomía de dominio conservando el error original en la cadena.
// op describe la operación ("insert sale", "lock stock").
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrStorageUnavailable) || errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrDuplicate, pgErr.ConstraintName)
		case pgErr.Code == codeInvalidTextRepr:
			// id que no es un uuid válido: no puede existir.
			return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pgErr.Message)
		case pgErr.Code == codeNumericOutOfRange:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.Message)
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pgErr.ConstraintName)
		case pgErr.Code == codeCheckViolation:
			// stock_quantity_non_negative: respaldo del invariante aplicado en la aplicación.
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInsufficientStock, pgErr.ConstraintName)
		case pgErr.Code == codeSerializationFailure, pgErr.Code == codeDeadlockDetected, pgErr.Code == codeLockNotAvailable:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.Message)
		case pgErr.Code == codeQueryCanceled:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrTimeout, pgErr.Message)
		case pgErr.Code == codeAdminShutdown, pgErr.Code == codeCannotConnectNow, strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%s: %w: %s", op, domain.ErrStorageUnavailable, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
