package flavour

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soumikc/driftline/internal/sqlschema"
)

func typ(family sqlschema.Family) sqlschema.ColumnType {
	return sqlschema.ColumnType{Family: family}
}

func TestClassifyTypeChange_WideningIntIsSafeEverywhere(t *testing.T) {
	for _, flav := range All() {
		t.Run(flav.Name(), func(t *testing.T) {
			got := flav.ClassifyTypeChange(typ(sqlschema.FamilyInt), typ(sqlschema.FamilyBigInt))
			assert.Equal(t, SafeCast, got)
		})
	}
}

func TestClassifyTypeChange_NarrowingIntIsNeverSafe(t *testing.T) {
	for _, flav := range All() {
		t.Run(flav.Name(), func(t *testing.T) {
			got := flav.ClassifyTypeChange(typ(sqlschema.FamilyBigInt), typ(sqlschema.FamilyInt))
			assert.NotEqual(t, SafeCast, got, "a narrowing cast can overflow")
		})
	}
}

func TestClassifyTypeChange_BytesToBooleanNotCastable(t *testing.T) {
	for _, flav := range All() {
		t.Run(flav.Name(), func(t *testing.T) {
			got := flav.ClassifyTypeChange(typ(sqlschema.FamilyBytes), typ(sqlschema.FamilyBoolean))
			assert.Equal(t, NotCastable, got)
		})
	}
}

func TestClassifyTypeChange_UnknownPairsDefaultToNotCastable(t *testing.T) {
	pairs := []sqlschema.Pair[sqlschema.Family]{
		sqlschema.MakePair(sqlschema.FamilyUnsupported, sqlschema.FamilyInt),
		sqlschema.MakePair(sqlschema.FamilyJSON, sqlschema.FamilyDate),
		sqlschema.MakePair(sqlschema.FamilyUUID, sqlschema.FamilyFloat),
	}
	for _, flav := range All() {
		for _, p := range pairs {
			got := flav.ClassifyTypeChange(typ(p.Previous), typ(p.Next))
			assert.Equal(t, NotCastable, got,
				"%s: %s -> %s must fall back to not_castable", flav.Name(), p.Previous, p.Next)
		}
	}
}

func TestClassifyTypeChange_StringLength(t *testing.T) {
	flav := Postgres{}

	grow := flav.ClassifyTypeChange(
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "varchar(50)"},
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "varchar(100)"},
	)
	assert.Equal(t, SafeCast, grow)

	shrink := flav.ClassifyTypeChange(
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "varchar(100)"},
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "varchar(50)"},
	)
	assert.Equal(t, RiskyCast, shrink)

	lifted := flav.ClassifyTypeChange(
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "varchar(50)"},
		sqlschema.ColumnType{Family: sqlschema.FamilyString, Native: "text"},
	)
	assert.Equal(t, SafeCast, lifted)
}

func TestByName(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"postgres", "postgres"},
		{"postgresql", "postgres"},
		{"cockroachdb", "cockroachdb"},
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"sqlite3", "sqlite"},
		{"sqlserver", "mssql"},
	}
	for _, tt := range tests {
		flav, err := ByName(tt.alias)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, flav.Name())
	}

	_, err := ByName("oracle")
	assert.Error(t, err)
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"us""ers"`, Postgres{}.QuoteIdent(`us"ers`))
	assert.Equal(t, "`us``ers`", MySQL{}.QuoteIdent("us`ers"))
	assert.Equal(t, "[us]]ers]", MSSQL{}.QuoteIdent("us]ers"))
}

func TestQualifiedName_DefaultNamespace(t *testing.T) {
	assert.Equal(t, `"public"."users"`, Postgres{}.QualifiedName("", "users"))
	assert.Equal(t, `"audit"."users"`, Postgres{}.QualifiedName("audit", "users"))
	assert.Equal(t, `[dbo].[users]`, MSSQL{}.QualifiedName("", "users"))
	// SQLite has no namespaces at all.
	assert.Equal(t, `"users"`, SQLite{}.QualifiedName("main", "users"))
}
