package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soumikc/driftline/internal/errs"
)

// PostgreSQL SQLSTATE classes relevant to planning queries.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection = "08" // connection exceptions
	pgErrSyntaxError  = "42601"
	pgErrUndefTable   = "42P01"
	pgErrUndefColumn  = "42703"
)

// mapError converts a pgx error into the unified errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgClassConnection {
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		}
		switch pgErr.Code {
		case pgErrSyntaxError, pgErrUndefTable, pgErrUndefColumn:
			return errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindUnknown, msg, err)
}
