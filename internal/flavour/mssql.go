package flavour

import (
	"fmt"
	"strings"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// MSSQL implements Flavour for Microsoft SQL Server.
type MSSQL struct{}

func (MSSQL) Name() string { return "mssql" }

func (MSSQL) Capabilities() Capabilities {
	return Capabilities{
		InPlaceAlterColumn: true,
		// A primary key column cannot change type without dropping the
		// constraint first; plan a rebuild instead.
		AlterPrimaryKeyColumnType: false,
		NamedPrimaryKeys:          true,
		ClusteredIndexes:          true,
		DefaultNamespace:          "dbo",
	}
}

// mssqlCasts: SQL Server is strict about binary/character conversions, so
// the bytes row is absent entirely (NotCastable).
var mssqlCasts = castMatrix{
	sqlschema.FamilyInt: {
		sqlschema.FamilyBigInt:  SafeCast,
		sqlschema.FamilyDecimal: SafeCast,
		sqlschema.FamilyFloat:   SafeCast,
		sqlschema.FamilyString:  SafeCast,
		sqlschema.FamilyBoolean: RiskyCast,
	},
	sqlschema.FamilyBigInt: {
		sqlschema.FamilyInt:     RiskyCast,
		sqlschema.FamilyDecimal: SafeCast,
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
		sqlschema.FamilyDateTime: RiskyCast,
		sqlschema.FamilyDate:     RiskyCast,
		sqlschema.FamilyTime:     RiskyCast,
		sqlschema.FamilyUUID:     RiskyCast,
	},
	sqlschema.FamilyDateTime: {
		sqlschema.FamilyString: SafeCast,
		sqlschema.FamilyDate:   RiskyCast,
		sqlschema.FamilyTime:   RiskyCast,
	},
	sqlschema.FamilyDate: {
		sqlschema.FamilyDateTime: SafeCast,
		sqlschema.FamilyString:   SafeCast,
	},
	sqlschema.FamilyTime: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyUUID: {
		sqlschema.FamilyString: SafeCast,
	},
}

func (MSSQL) ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	return mssqlCasts.classify(previous, next)
}

func (MSSQL) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (f MSSQL) QualifiedName(namespace, table string) string {
	if namespace == "" {
		namespace = f.Capabilities().DefaultNamespace
	}
	return f.QuoteIdent(namespace) + "." + f.QuoteIdent(table)
}

func (f MSSQL) CountRowsQuery(namespace, table string) string {
	return "SELECT COUNT(*) FROM " + f.QualifiedName(namespace, table)
}

func (f MSSQL) CountNonNullQuery(namespace, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", f.QuoteIdent(column), f.QualifiedName(namespace, table))
}
