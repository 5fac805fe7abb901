package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/soumikc/driftline/internal/errs"
)

// MySQL server error numbers relevant to planning queries.
// Full list: https://dev.mysql.com/doc/mysql-errors/en/
const (
	mysqlErrBadTable    = 1146 // ER_NO_SUCH_TABLE
	mysqlErrBadField    = 1054 // ER_BAD_FIELD_ERROR
	mysqlErrParse       = 1064 // ER_PARSE_ERROR
	mysqlErrConnRefused = 2003 // CR_CONN_HOST_ERROR
)

// mapError converts a go-sql-driver error into the unified errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrConnRefused:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case mysqlErrBadTable, mysqlErrBadField, mysqlErrParse:
			return errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("%s: %s", msg, myErr.Message), err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindUnknown, msg, err)
}
