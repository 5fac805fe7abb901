package sqlschema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSchema() *Schema {
	return &Schema{
		Tables: []Table{
			{
				Name: "users",
				Columns: []Column{
					{Name: "id", Type: ColumnType{Family: FamilyInt, Native: "int4"}, Arity: Required, AutoIncrement: true,
						Default: &Default{Kind: DefaultSequence}},
					{Name: "email", Type: ColumnType{Family: FamilyString, Native: "varchar(191)"}, Arity: Required},
					{Name: "bio", Type: ColumnType{Family: FamilyString}, Arity: Nullable},
				},
				Indexes: []Index{
					{Name: "users_email_key", Unique: true, Columns: []IndexColumn{{Name: "email"}}},
				},
				PrimaryKey: &PrimaryKey{Name: "users_pkey", Columns: []string{"id"}},
			},
			{
				Name: "posts",
				Columns: []Column{
					{Name: "id", Type: ColumnType{Family: FamilyInt}, Arity: Required},
					{Name: "author_id", Type: ColumnType{Family: FamilyInt}, Arity: Required},
				},
				ForeignKeys: []ForeignKey{
					{Name: "posts_author_fkey", Columns: []string{"author_id"},
						ReferencedTable: "users", ReferencedColumns: []string{"id"}, OnDelete: Cascade},
				},
			},
		},
		Enums: []Enum{{Name: "mood", Values: []string{"happy", "sad"}}},
	}
}

func TestWalkers(t *testing.T) {
	schema := fixtureSchema()

	tables := schema.WalkTables()
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name())

	email, ok := tables[0].Column("email")
	require.True(t, ok)
	assert.Equal(t, "email", email.Name())
	assert.Equal(t, "users", email.TableWalker().Name())
	assert.False(t, email.IsPartOfPrimaryKey())

	id, ok := tables[0].Column("id")
	require.True(t, ok)
	assert.True(t, id.IsPartOfPrimaryKey())

	_, ok = tables[0].Column("missing")
	assert.False(t, ok)

	fks := tables[1].ForeignKeys()
	require.Len(t, fks, 1)
	ref, ok := fks[0].ReferencedTable()
	require.True(t, ok)
	assert.Equal(t, "users", ref.Name())
}

func TestForeignKey_SameRelation(t *testing.T) {
	a := ForeignKey{Name: "one", Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}}
	b := ForeignKey{Name: "two", Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}, OnDelete: Cascade}
	assert.True(t, a.SameRelation(&b), "names and actions do not participate in relation identity")

	c := ForeignKey{Columns: []string{"editor_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}}
	assert.False(t, a.SameRelation(&c))
}

func TestIndex_StructurallyEqual(t *testing.T) {
	a := Index{Name: "one", Unique: true, Columns: []IndexColumn{{Name: "email"}}}
	b := Index{Name: "two", Unique: true, Columns: []IndexColumn{{Name: "email"}}}
	assert.True(t, a.StructurallyEqual(&b))

	c := Index{Name: "three", Columns: []IndexColumn{{Name: "email"}}}
	assert.False(t, a.StructurallyEqual(&c), "uniqueness is structural")

	d := Index{Name: "four", Unique: true, Columns: []IndexColumn{{Name: "email", Sort: Descending}}}
	assert.False(t, a.StructurallyEqual(&d), "sort order is structural")
}

func TestDefaultsEqual(t *testing.T) {
	assert.True(t, DefaultsEqual(nil, nil))
	assert.False(t, DefaultsEqual(&Default{Kind: DefaultNow}, nil))
	assert.True(t, DefaultsEqual(&Default{Kind: DefaultLiteral, Value: "0"}, &Default{Kind: DefaultLiteral, Value: "0"}))
	assert.False(t, DefaultsEqual(&Default{Kind: DefaultLiteral, Value: "0"}, &Default{Kind: DefaultLiteral, Value: "1"}))
}

func TestPair(t *testing.T) {
	p := MakePair(1, 2)
	prev, next := p.Tuple()
	assert.Equal(t, 1, prev)
	assert.Equal(t, 2, next)

	doubled := MapPair(p, func(v int) int { return v * 2 })
	assert.Equal(t, Pair[int]{Previous: 2, Next: 4}, doubled)
}

func TestReadWriteFile_RoundTrip(t *testing.T) {
	schema := fixtureSchema()
	path := filepath.Join(t.TempDir(), "schema.json")

	require.NoError(t, WriteFile(path, schema))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, schema, loaded)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := ReadFile(path)
	assert.Error(t, err)
}
