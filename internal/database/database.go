// Package database defines the connection contract the migration engine
// needs from a live database: count queries for the destructive checker,
// statement execution for shadow-database replay, and enough metadata access
// for introspection.
//
// Callers depend only on this package — they never import the postgres,
// mysql, sqlite or mssql driver packages directly.
package database

import "context"

// Conn is the borrowed connection handle used by the destructive checker
// and the introspectors. Implementations are safe for concurrent use, but
// the checker issues its queries sequentially, in step order.
type Conn interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Exec executes a statement that returns no rows (DDL, DML). Only the
	// shadow-database replayer uses it; planning never writes to the
	// caller's database.
	Exec(ctx context.Context, sql string, args ...any) error
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row. Returns false when no more rows
	// exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}

// CountScalar runs a COUNT query and scans its single int64 result. This is
// the one query shape the destructive checker ever issues.
func CountScalar(ctx context.Context, conn Conn, sql string) (int64, error) {
	var n int64
	if err := conn.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
