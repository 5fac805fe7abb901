package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// --- catalog builders ---

func col(name string, family sqlschema.Family) sqlschema.Column {
	return sqlschema.Column{
		Name:  name,
		Type:  sqlschema.ColumnType{Family: family},
		Arity: sqlschema.Required,
	}
}

func nullableCol(name string, family sqlschema.Family) sqlschema.Column {
	c := col(name, family)
	c.Arity = sqlschema.Nullable
	return c
}

func table(name string, cols ...sqlschema.Column) sqlschema.Table {
	return sqlschema.Table{Name: name, Columns: cols}
}

func schemaOf(tables ...sqlschema.Table) *sqlschema.Schema {
	return &sqlschema.Schema{Tables: tables}
}

func fk(name, refTable string, cols, refCols []string) sqlschema.ForeignKey {
	return sqlschema.ForeignKey{
		Name:              name,
		Columns:           cols,
		ReferencedTable:   refTable,
		ReferencedColumns: refCols,
	}
}

func stepKinds(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		switch s.(type) {
		case CreateTable:
			out[i] = "CreateTable"
		case DropTable:
			out[i] = "DropTable"
		case RenameTable:
			out[i] = "RenameTable"
		case AlterTable:
			out[i] = "AlterTable"
		case RedefineTable:
			out[i] = "RedefineTable"
		case CreateIndex:
			out[i] = "CreateIndex"
		case DropIndex:
			out[i] = "DropIndex"
		case RenameIndex:
			out[i] = "RenameIndex"
		case AddForeignKey:
			out[i] = "AddForeignKey"
		case DropForeignKey:
			out[i] = "DropForeignKey"
		case CreatePrimaryKey:
			out[i] = "CreatePrimaryKey"
		case DropPrimaryKey:
			out[i] = "DropPrimaryKey"
		case RenamePrimaryKey:
			out[i] = "RenamePrimaryKey"
		}
	}
	return out
}

// --- step builder ---

func TestCalculateSteps_IdenticalCatalogsAreANoop(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))
	users.PrimaryKey = &sqlschema.PrimaryKey{Columns: []string{"id"}}
	users.Indexes = []sqlschema.Index{{Name: "users_email_idx", Columns: []sqlschema.IndexColumn{{Name: "email"}}, Unique: true}}

	posts := table("posts", col("id", sqlschema.FamilyInt), col("author_id", sqlschema.FamilyInt))
	posts.ForeignKeys = []sqlschema.ForeignKey{fk("posts_author_fk", "users", []string{"author_id"}, []string{"id"})}

	schema := schemaOf(users, posts)

	for _, flav := range flavour.All() {
		t.Run(flav.Name(), func(t *testing.T) {
			assert.Empty(t, CalculateSteps(schema, schema, flav))
		})
	}
}

func TestCalculateSteps_Deterministic(t *testing.T) {
	previous := schemaOf(
		table("a", col("id", sqlschema.FamilyInt), col("gone", sqlschema.FamilyString)),
		table("b", col("id", sqlschema.FamilyInt)),
	)
	next := schemaOf(
		table("a", col("id", sqlschema.FamilyBigInt), col("added", sqlschema.FamilyString)),
		table("c", col("id", sqlschema.FamilyInt)),
		table("d", col("id", sqlschema.FamilyInt), col("c_id", sqlschema.FamilyInt)),
	)
	next.Tables[2].ForeignKeys = []sqlschema.ForeignKey{fk("d_c_fk", "c", []string{"c_id"}, []string{"id"})}

	first := CalculateSteps(previous, next, flavour.Postgres{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CalculateSteps(previous, next, flavour.Postgres{}))
	}
}

func TestCalculateSteps_CreatedTablesFollowReferences(t *testing.T) {
	// posts comes first in catalog order but references users.
	posts := table("posts", col("id", sqlschema.FamilyInt), col("author_id", sqlschema.FamilyInt))
	posts.ForeignKeys = []sqlschema.ForeignKey{fk("posts_author_fk", "users", []string{"author_id"}, []string{"id"})}
	users := table("users", col("id", sqlschema.FamilyInt))

	steps := CalculateSteps(schemaOf(), schemaOf(posts, users), flavour.Postgres{})

	require.Equal(t, []string{"CreateTable", "CreateTable", "AddForeignKey"}, stepKinds(steps))
	assert.Equal(t, "users", steps[0].(CreateTable).Table.Name())
	assert.Equal(t, "posts", steps[1].(CreateTable).Table.Name())
	assert.Equal(t, "posts", steps[2].(AddForeignKey).ForeignKey.TableWalker().Name())
}

func TestCalculateSteps_CyclicReferencesFallBackToCatalogOrder(t *testing.T) {
	a := table("a", col("id", sqlschema.FamilyInt), col("b_id", sqlschema.FamilyInt))
	a.ForeignKeys = []sqlschema.ForeignKey{fk("a_b_fk", "b", []string{"b_id"}, []string{"id"})}
	b := table("b", col("id", sqlschema.FamilyInt), col("a_id", sqlschema.FamilyInt))
	b.ForeignKeys = []sqlschema.ForeignKey{fk("b_a_fk", "a", []string{"a_id"}, []string{"id"})}

	steps := CalculateSteps(schemaOf(), schemaOf(a, b), flavour.Postgres{})

	// Both tables exist before either foreign key is added, so the cycle is
	// harmless.
	require.Equal(t, []string{"CreateTable", "CreateTable", "AddForeignKey", "AddForeignKey"}, stepKinds(steps))
	assert.Equal(t, "a", steps[0].(CreateTable).Table.Name())
	assert.Equal(t, "b", steps[1].(CreateTable).Table.Name())
}

func TestCalculateSteps_DroppedForeignKeysPrecedeDroppedTables(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt))
	posts := table("posts", col("id", sqlschema.FamilyInt), col("author_id", sqlschema.FamilyInt))
	posts.ForeignKeys = []sqlschema.ForeignKey{fk("posts_author_fk", "users", []string{"author_id"}, []string{"id"})}

	steps := CalculateSteps(schemaOf(users, posts), schemaOf(), flavour.Postgres{})

	require.Equal(t, []string{"DropForeignKey", "DropTable", "DropTable"}, stepKinds(steps))
	assert.Equal(t, "posts", steps[0].(DropForeignKey).ForeignKey.TableWalker().Name())
}

func TestCalculateSteps_PrimaryKeyColumnTypeChangeRebuildsTheKey(t *testing.T) {
	build := func(family sqlschema.Family) *sqlschema.Schema {
		users := table("users", col("id", family))
		users.PrimaryKey = &sqlschema.PrimaryKey{Name: "users_pkey", Columns: []string{"id"}}
		return schemaOf(users)
	}

	steps := CalculateSteps(build(sqlschema.FamilyInt), build(sqlschema.FamilyBigInt), flavour.Postgres{})

	require.Equal(t, []string{"DropPrimaryKey", "AlterTable", "CreatePrimaryKey"}, stepKinds(steps))

	alter := steps[1].(AlterTable)
	require.Len(t, alter.Changes, 1)
	ac := alter.Changes[0].(AlterColumn)
	assert.True(t, ac.Changes.TypeChanged())
	require.NotNil(t, ac.TypeChange)
	assert.Equal(t, flavour.SafeCast, *ac.TypeChange)
}

func TestCalculateSteps_SQLiteAlwaysRedefines(t *testing.T) {
	previous := schemaOf(table("users", col("id", sqlschema.FamilyInt), nullableCol("bio", sqlschema.FamilyString)))
	next := schemaOf(table("users", col("id", sqlschema.FamilyInt), col("bio", sqlschema.FamilyString)))

	steps := CalculateSteps(previous, next, flavour.SQLite{})

	require.Equal(t, []string{"RedefineTable"}, stepKinds(steps))
}

func TestCalculateSteps_PKTypeChangeRedefinesWhenAlterIsUnsupported(t *testing.T) {
	build := func(family sqlschema.Family) *sqlschema.Schema {
		users := table("users", col("id", family))
		users.PrimaryKey = &sqlschema.PrimaryKey{Columns: []string{"id"}}
		return schemaOf(users)
	}
	previous, next := build(sqlschema.FamilyInt), build(sqlschema.FamilyBigInt)

	for _, flav := range []flavour.Flavour{flavour.MSSQL{}, flavour.CockroachDB{}} {
		t.Run(flav.Name(), func(t *testing.T) {
			steps := CalculateSteps(previous, next, flav)
			require.Equal(t, []string{"RedefineTable"}, stepKinds(steps),
				"no in-place primary key type change on this backend")
		})
	}
}

func TestCalculateSteps_NonCastableColumnIsDroppedAndRecreated(t *testing.T) {
	previous := schemaOf(table("files", col("id", sqlschema.FamilyInt), nullableCol("payload", sqlschema.FamilyBytes)))
	next := schemaOf(table("files", col("id", sqlschema.FamilyInt), nullableCol("payload", sqlschema.FamilyBoolean)))

	steps := CalculateSteps(previous, next, flavour.Postgres{})

	require.Equal(t, []string{"AlterTable"}, stepKinds(steps))
	alter := steps[0].(AlterTable)
	require.Len(t, alter.Changes, 1)
	_, ok := alter.Changes[0].(DropAndRecreateColumn)
	assert.True(t, ok)
}

func TestCalculateSteps_AddAndDropColumns(t *testing.T) {
	previous := schemaOf(table("users", col("id", sqlschema.FamilyInt), col("old", sqlschema.FamilyString)))
	next := schemaOf(table("users", col("id", sqlschema.FamilyInt), col("new", sqlschema.FamilyString)))

	steps := CalculateSteps(previous, next, flavour.Postgres{})

	require.Equal(t, []string{"AlterTable"}, stepKinds(steps))
	alter := steps[0].(AlterTable)
	require.Len(t, alter.Changes, 2)
	// Drops come before adds within one table.
	drop := alter.Changes[0].(DropColumn)
	add := alter.Changes[1].(AddColumn)
	assert.Equal(t, "old", drop.Column.Name())
	assert.Equal(t, "new", add.Column.Name())
}

func TestCalculateSteps_NewTableIndexesAndKeysAreOrdered(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString), col("org_id", sqlschema.FamilyInt))
	users.PrimaryKey = &sqlschema.PrimaryKey{Columns: []string{"id"}}
	users.Indexes = []sqlschema.Index{{Name: "users_email_key", Unique: true, Columns: []sqlschema.IndexColumn{{Name: "email"}}}}
	users.ForeignKeys = []sqlschema.ForeignKey{fk("users_org_fk", "orgs", []string{"org_id"}, []string{"id"})}
	orgs := table("orgs", col("id", sqlschema.FamilyInt))

	steps := CalculateSteps(schemaOf(), schemaOf(users, orgs), flavour.Postgres{})

	require.Equal(t, []string{"CreateTable", "CreateTable", "CreateIndex", "AddForeignKey"}, stepKinds(steps))
	assert.Equal(t, "orgs", steps[0].(CreateTable).Table.Name())
}
