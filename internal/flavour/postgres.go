package flavour

import (
	"fmt"
	"strings"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// Postgres implements Flavour for PostgreSQL.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Capabilities() Capabilities {
	return Capabilities{
		InPlaceAlterColumn:        true,
		AlterPrimaryKeyColumnType: true,
		NamedPrimaryKeys:          true,
		ClusteredIndexes:          false,
		DefaultNamespace:          "public",
	}
}

// postgresCasts reflects what ALTER TABLE ... ALTER COLUMN TYPE ... USING
// can express. Postgres casts almost anything to text, so the string column
// is generous; transitions into narrower domains are risky because USING
// will raise on unconvertible rows.
var postgresCasts = castMatrix{
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
		sqlschema.FamilyBoolean:  RiskyCast,
		sqlschema.FamilyDateTime: RiskyCast,
		sqlschema.FamilyDate:     RiskyCast,
		sqlschema.FamilyTime:     RiskyCast,
		sqlschema.FamilyJSON:     RiskyCast,
		sqlschema.FamilyUUID:     RiskyCast,
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
		sqlschema.FamilyString:   SafeCast,
		sqlschema.FamilyDateTime: RiskyCast,
	},
	sqlschema.FamilyJSON: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyBytes: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyUUID: {
		sqlschema.FamilyString: SafeCast,
	},
	sqlschema.FamilyEnum: {
		sqlschema.FamilyString: SafeCast,
	},
}

func (Postgres) ClassifyTypeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	return postgresCasts.classify(previous, next)
}

func (Postgres) QuoteIdent(name string) string { return pgQuote(name) }

func (f Postgres) QualifiedName(namespace, table string) string {
	return pgQualified(f.Capabilities().DefaultNamespace, namespace, table)
}

func (f Postgres) CountRowsQuery(namespace, table string) string {
	return "SELECT COUNT(*) FROM " + f.QualifiedName(namespace, table)
}

func (f Postgres) CountNonNullQuery(namespace, table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", pgQuote(column), f.QualifiedName(namespace, table))
}

func pgQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func pgQualified(defaultNamespace, namespace, table string) string {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return pgQuote(namespace) + "." + pgQuote(table)
}
