// Package flavour holds the per-backend rules the migration engine needs:
// column type-cast classification, identifier quoting, count-query SQL and
// capability flags. One implementation exists per supported backend
// (Postgres, CockroachDB, MySQL, SQLite, MSSQL).
//
// Flavours are pure values. They never touch a connection; live-data
// checks belong to the destructive package.
package flavour

import (
	"fmt"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// ColumnTypeChange classifies a column type transition by its potential for
// silent data loss.
type ColumnTypeChange int

const (
	// SafeCast never loses data.
	SafeCast ColumnTypeChange = iota
	// RiskyCast may truncate or alter values depending on the data present.
	RiskyCast
	// NotCastable cannot be expressed as a cast at all; applying it means
	// dropping and recreating the column.
	NotCastable
)

func (c ColumnTypeChange) String() string {
	switch c {
	case SafeCast:
		return "safe"
	case RiskyCast:
		return "risky"
	default:
		return "not_castable"
	}
}

// Capabilities describes what a backend can express. The step builder and
// the destructive checker consult these instead of switching on the flavour
// name.
type Capabilities struct {
	// InPlaceAlterColumn is false when the backend has no usable
	// ALTER COLUMN and every column change requires a table rebuild
	// (SQLite).
	InPlaceAlterColumn bool

	// AlterPrimaryKeyColumnType is false when changing the type of a
	// column that participates in the primary key requires a table
	// rebuild even though plain columns can be altered in place.
	AlterPrimaryKeyColumnType bool

	// NamedPrimaryKeys is false when primary key constraints cannot carry
	// a user-chosen name; the builder then omits the name rather than
	// failing.
	NamedPrimaryKeys bool

	// ClusteredIndexes is true when the backend distinguishes clustered
	// from non-clustered indexes (MSSQL).
	ClusteredIndexes bool

	// DefaultNamespace is the schema namespace assumed when a table does
	// not carry one ("public" on Postgres, "dbo" on MSSQL, "" elsewhere).
	DefaultNamespace string
}

// Flavour is the backend-specific rule set consumed by the differ, the step
// builder and the destructive checker.
type Flavour interface {
	// Name returns the backend identifier ("postgres", "mysql", ...).
	Name() string

	// Capabilities returns the backend's capability flags.
	Capabilities() Capabilities

	// ClassifyTypeChange classifies a transition between two differing
	// column types. It is total: pairs the backend knows nothing about
	// come back NotCastable, never a panic.
	ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange

	// QuoteIdent quotes a single identifier for this backend.
	QuoteIdent(name string) string

	// QualifiedName renders a (namespace, table) reference, applying the
	// default namespace when none is set.
	QualifiedName(namespace, table string) string

	// CountRowsQuery returns the SQL counting all rows of a table.
	CountRowsQuery(namespace, table string) string

	// CountNonNullQuery returns the SQL counting non-null values of one
	// column.
	CountNonNullQuery(namespace, table, column string) string
}

// ByName resolves a flavour from its configured name.
func ByName(name string) (Flavour, error) {
	switch name {
	case "postgres", "postgresql":
		return Postgres{}, nil
	case "cockroachdb", "cockroach":
		return CockroachDB{}, nil
	case "mysql", "mariadb":
		return MySQL{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	case "mssql", "sqlserver":
		return MSSQL{}, nil
	default:
		return nil, fmt.Errorf("unknown flavour %q", name)
	}
}

// All returns one instance of every supported flavour, in a fixed order.
func All() []Flavour {
	return []Flavour{Postgres{}, CockroachDB{}, MySQL{}, SQLite{}, MSSQL{}}
}
