package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgConnectionClass     = "08"
)

// Translate maps a storage error into an *internal.AppError.
// gorm.ErrRecordNotFound is returned unchanged so repositories can pick their own not-found code.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return internal.ErrAlreadyExists.WithCause(err)
		case pgErr.Code == pgForeignKeyViolation:
			return invalidReference(err)
		case strings.HasPrefix(pgErr.Code, pgConnectionClass):
			return internal.NewStoreUnavailableError(err)
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.ErrAlreadyExists.WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return invalidReference(err)
	case IsUnavailable(err):
		return internal.NewStoreUnavailableError(err)
	}

	return internal.NewInternalError("Store error", err)
}

// IsUnavailable reports whether err means the store could not be reached in time.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func invalidReference(cause error) *internal.AppError {
	return internal.NewValidationError(internal.MsgFieldInvalid, internal.ErrCodeInvalidReference, "Referenced record does not exist").
		WithParams("reference").
		WithCause(cause)
}
