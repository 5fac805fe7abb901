package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

func pairFor(t *testing.T, previous, next *sqlschema.Schema) *TablePair {
	t.Helper()
	pairs := NewDifferDatabase(previous, next).TablePairs()
	require.Len(t, pairs, 1)
	return pairs[0]
}

func idx(name string, cols ...string) sqlschema.Index {
	ix := sqlschema.Index{Name: name}
	for _, c := range cols {
		ix.Columns = append(ix.Columns, sqlschema.IndexColumn{Name: c})
	}
	return ix
}

func TestDiffIndexes_UnambiguousRename(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))

	prev := users
	prev.Indexes = []sqlschema.Index{idx("old_email_idx", "email")}
	next := users
	next.Indexes = []sqlschema.Index{idx("new_email_idx", "email")}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffIndexes()

	assert.Empty(t, diff.Created)
	assert.Empty(t, diff.Dropped)
	require.Len(t, diff.Renamed, 1)
	assert.Equal(t, "old_email_idx", diff.Renamed[0].Previous.Name())
	assert.Equal(t, "new_email_idx", diff.Renamed[0].Next.Name())
}

func TestDiffIndexes_SameNameSameStructureIsANoop(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))
	users.Indexes = []sqlschema.Index{idx("email_idx", "email")}
	schema := schemaOf(users)

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schema, schema))
	diff := differ.DiffIndexes()

	assert.Empty(t, diff.Created)
	assert.Empty(t, diff.Dropped)
	assert.Empty(t, diff.Renamed)
}

func TestDiffIndexes_AmbiguousStructuresAreNeverRenamed(t *testing.T) {
	// Two structurally identical indexes on each side, all four names
	// distinct. Any pairing would be arbitrary, so nothing is renamed.
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))

	prev := users
	prev.Indexes = []sqlschema.Index{idx("p1", "email"), idx("p2", "email")}
	next := users
	next.Indexes = []sqlschema.Index{idx("n1", "email"), idx("n2", "email")}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffIndexes()

	assert.Empty(t, diff.Renamed)
	assert.Len(t, diff.Created, 2)
	assert.Len(t, diff.Dropped, 2)
}

func TestDiffIndexes_AmbiguousGroupKeepsNameMatches(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))

	prev := users
	prev.Indexes = []sqlschema.Index{idx("kept", "email"), idx("dropped", "email")}
	next := users
	next.Indexes = []sqlschema.Index{idx("kept", "email"), idx("created", "email")}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffIndexes()

	assert.Empty(t, diff.Renamed)
	require.Len(t, diff.Created, 1)
	require.Len(t, diff.Dropped, 1)
	assert.Equal(t, "created", diff.Created[0].Name())
	assert.Equal(t, "dropped", diff.Dropped[0].Name())
}

func TestDiffIndexes_StructuralChangeDropsAndRecreates(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("email", sqlschema.FamilyString))

	prev := users
	prev.Indexes = []sqlschema.Index{idx("email_idx", "email")}
	next := users
	unique := idx("email_idx", "email")
	unique.Unique = true
	next.Indexes = []sqlschema.Index{unique}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffIndexes()

	assert.Empty(t, diff.Renamed)
	require.Len(t, diff.Created, 1)
	require.Len(t, diff.Dropped, 1)
}

func TestDiffForeignKeys_MatchedByRelationNotName(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("org_id", sqlschema.FamilyInt))

	prev := users
	prev.ForeignKeys = []sqlschema.ForeignKey{fk("fk_old_name", "orgs", []string{"org_id"}, []string{"id"})}
	next := users
	next.ForeignKeys = []sqlschema.ForeignKey{fk("fk_new_name", "orgs", []string{"org_id"}, []string{"id"})}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffForeignKeys()

	assert.Empty(t, diff.Created, "a name-only difference is cosmetic")
	assert.Empty(t, diff.Dropped)
}

func TestDiffForeignKeys_ActionChangeRecreates(t *testing.T) {
	users := table("users", col("id", sqlschema.FamilyInt), col("org_id", sqlschema.FamilyInt))

	prev := users
	prevFk := fk("org_fk", "orgs", []string{"org_id"}, []string{"id"})
	prevFk.OnDelete = sqlschema.NoAction
	prev.ForeignKeys = []sqlschema.ForeignKey{prevFk}

	next := users
	nextFk := fk("org_fk", "orgs", []string{"org_id"}, []string{"id"})
	nextFk.OnDelete = sqlschema.Cascade
	next.ForeignKeys = []sqlschema.ForeignKey{nextFk}

	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, schemaOf(prev), schemaOf(next)))
	diff := differ.DiffForeignKeys()

	require.Len(t, diff.Dropped, 1)
	require.Len(t, diff.Created, 1)
}

func TestDiffPrimaryKey_RenameOnlyWherePKNamesExist(t *testing.T) {
	build := func(pkName string) *sqlschema.Schema {
		users := table("users", col("id", sqlschema.FamilyInt))
		users.PrimaryKey = &sqlschema.PrimaryKey{Name: pkName, Columns: []string{"id"}}
		return schemaOf(users)
	}
	prev, next := build("old_pkey"), build("new_pkey")

	pg := NewTableDiffer(flavour.Postgres{}, pairFor(t, prev, next))
	pgDiff := pg.DiffPrimaryKey(pg.ColumnPairs())
	assert.True(t, pgDiff.Renamed)
	assert.False(t, pgDiff.Created)
	assert.False(t, pgDiff.Dropped)

	// MySQL primary keys have no names, so the difference is meaningless.
	my := NewTableDiffer(flavour.MySQL{}, pairFor(t, prev, next))
	myDiff := my.DiffPrimaryKey(my.ColumnPairs())
	assert.Equal(t, PrimaryKeyDiff{}, myDiff)
}

func TestDiffPrimaryKey_MemberChangeDropsAndCreates(t *testing.T) {
	build := func(cols ...string) *sqlschema.Schema {
		users := table("users", col("id", sqlschema.FamilyInt), col("tenant", sqlschema.FamilyInt))
		users.PrimaryKey = &sqlschema.PrimaryKey{Columns: cols}
		return schemaOf(users)
	}
	differ := NewTableDiffer(flavour.Postgres{}, pairFor(t, build("id"), build("id", "tenant")))
	diff := differ.DiffPrimaryKey(differ.ColumnPairs())

	assert.True(t, diff.Created)
	assert.True(t, diff.Dropped)
	assert.False(t, diff.Renamed)
}
