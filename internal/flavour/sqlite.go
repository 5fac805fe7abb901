package flavour

import (
	"fmt"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// SQLite implements Flavour for SQLite. There is no usable ALTER COLUMN, so
// every column alteration is planned as a table rebuild (RedefineTable).
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Capabilities() Capabilities {
	return Capabilities{
		InPlaceAlterColumn:        false,
		AlterPrimaryKeyColumnType: false,
		NamedPrimaryKeys:          false,
		ClusteredIndexes:          false,
		DefaultNamespace:          "",
	}
}

// sqliteCasts: column affinity means almost any value fits anywhere, but the
// rebuild copies values through the new declared type, so narrowing remains
// risky: existing rows keep whatever representation they had.
var sqliteCasts = castMatrix{
	sqlschema.FamilyInt: {
		sqlschema.FamilyBigInt:  SafeCast,
		sqlschema.FamilyDecimal: SafeCast,
		sqlschema.FamilyFloat:   SafeCast,
		sqlschema.FamilyString:  SafeCast,
		sqlschema.FamilyBoolean: RiskyCast,
	},
	sqlschema.FamilyBigInt: {
		sqlschema.FamilyInt:     RiskyCast,
		sqlschema.FamilyDecimal: RiskyCast,
		sqlschema.FamilyFloat:   RiskyCast,
		sqlschema.FamilyString:  SafeCast,
	},
	sqlschema.FamilyDecimal: {
		sqlschema.FamilyInt:    RiskyCast,
		sqlschema.FamilyBigInt: RiskyCast,
		sqlschema.FamilyFloat:  RiskyCast,
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyFloat: {
		sqlschema.FamilyInt:     RiskyCast,
		sqlschema.FamilyBigInt:  RiskyCast,
		sqlschema.FamilyDecimal: RiskyCast,
		sqlschema.FamilyString:  SafeCast,
	},
	sqlschema.FamilyBoolean: {
		sqlschema.FamilyInt:    SafeCast,
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyString: {
		sqlschema.FamilyInt:      RiskyCast,
		sqlschema.FamilyBigInt:   RiskyCast,
		sqlschema.FamilyDecimal:  RiskyCast,
		sqlschema.FamilyFloat:    RiskyCast,
		sqlschema.FamilyBoolean:  RiskyCast,
		sqlschema.FamilyDateTime: RiskyCast,
		sqlschema.FamilyDate:     RiskyCast,
		sqlschema.FamilyTime:     RiskyCast,
		sqlschema.FamilyJSON:     RiskyCast,
		sqlschema.FamilyBytes:    SafeCast,
	},
	sqlschema.FamilyDateTime: {
		sqlschema.FamilyString: SafeCast,
		sqlschema.FamilyDate:   RiskyCast,
	},
	sqlschema.FamilyDate: {
		sqlschema.FamilyDateTime: SafeCast,
		sqlschema.FamilyString:   SafeCast,
	},
	sqlschema.FamilyTime: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyJSON: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyBytes: {
		sqlschema.FamilyString: RiskyCast,
	},
}

func (SQLite) ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	return sqliteCasts.classify(previous, next)
}

func (SQLite) QuoteIdent(name string) string { return pgQuote(name) }

func (f SQLite) QualifiedName(_, table string) string {
	// SQLite has no schema namespaces worth planning for; attached
	// databases are out of scope.
	return f.QuoteIdent(table)
}

func (f SQLite) CountRowsQuery(namespace, table string) string {
	return "SELECT COUNT(*) FROM " + f.QualifiedName(namespace, table)
}

func (f SQLite) CountNonNullQuery(namespace, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", f.QuoteIdent(column), f.QualifiedName(namespace, table))
}
