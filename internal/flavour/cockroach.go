package flavour

import (
	"fmt"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// CockroachDB implements Flavour for CockroachDB. It speaks the Postgres
// dialect but restricts some in-place column conversions, so a primary key
// column type change triggers a table rebuild instead of an ALTER.
type CockroachDB struct{}

func (CockroachDB) Name() string { return "cockroachdb" }

func (CockroachDB) Capabilities() Capabilities {
	return Capabilities{
		InPlaceAlterColumn:        true,
		AlterPrimaryKeyColumnType: false,
		NamedPrimaryKeys:          true,
		ClusteredIndexes:          false,
		DefaultNamespace:          "public",
	}
}

func (CockroachDB) ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	// Same cast semantics as Postgres; capability flags carry the
	// differences that matter for planning.
	return postgresCasts.classify(previous, next)
}

func (CockroachDB) QuoteIdent(name string) string { return pgQuote(name) }

func (f CockroachDB) QualifiedName(namespace, table string) string {
	return pgQualified(f.Capabilities().DefaultNamespace, namespace, table)
}

func (f CockroachDB) CountRowsQuery(namespace, table string) string {
	return "SELECT COUNT(*) FROM " + f.QualifiedName(namespace, table)
}

func (f CockroachDB) CountNonNullQuery(namespace, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", pgQuote(column), f.QualifiedName(namespace, table))
}
