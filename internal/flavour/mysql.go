package flavour

import (
	"fmt"
	"strings"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// MySQL implements Flavour for MySQL and MariaDB.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Capabilities() Capabilities {
	return Capabilities{
		InPlaceAlterColumn:        true,
		AlterPrimaryKeyColumnType: true,
		// The primary key constraint is always called PRIMARY; a
		// user-supplied name cannot be expressed.
		NamedPrimaryKeys: false,
		ClusteredIndexes: false,
		DefaultNamespace: "",
	}
}

// mysqlCasts: MySQL coerces silently rather than raising, which makes many
// transitions risky rather than impossible: truncation happens without an
// error under non-strict SQL modes.
var mysqlCasts = castMatrix{
	sqlschema.FamilyInt: {
		sqlschema.FamilyBigInt:  SafeCast,
		sqlschema.FamilyDecimal: SafeCast,
		sqlschema.FamilyFloat:   SafeCast,
		sqlschema.FamilyString:  SafeCast,
		sqlschema.FamilyBoolean: RiskyCast,
		sqlschema.FamilyEnum:    RiskyCast,
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
		sqlschema.FamilyBigInt: SafeCast,
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
		sqlschema.FamilyJSON:     RiskyCast,
		sqlschema.FamilyEnum:     RiskyCast,
		sqlschema.FamilyBytes:    SafeCast,
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
	sqlschema.FamilyJSON: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyBytes: {
		sqlschema.FamilyString: RiskyCast,
	},
	sqlschema.FamilyUUID: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyEnum: {
		sqlschema.FamilyString: SafeCast,
	},
}

func (MySQL) ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	return mysqlCasts.classify(previous, next)
}

func (MySQL) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (f MySQL) QualifiedName(namespace, table string) string {
	if namespace == "" {
		return f.QuoteIdent(table)
	}
	return f.QuoteIdent(namespace) + "." + f.QuoteIdent(table)
}

func (f MySQL) CountRowsQuery(namespace, table string) string {
	return "SELECT COUNT(*) FROM " + f.QualifiedName(namespace, table)
}

func (f MySQL) CountNonNullQuery(namespace, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", f.QuoteIdent(column), f.QualifiedName(namespace, table))
}
