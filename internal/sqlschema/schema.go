// Package sqlschema holds the catalog model: the full structural description
// of one database (tables, columns, indexes, foreign keys, primary keys) at
// one point in time.
//
// A Schema is materialized once per diff run, either from introspection of a
// live database or from a declarative model, and is never mutated afterwards.
// Diffing only reads.
package sqlschema

// Schema is the catalog of one database at one point in time.
// Table names are unique within a namespace.
type Schema struct {
	Tables []Table `json:"tables"`
	Enums  []Enum  `json:"enums,omitempty"`
}

// Enum is a database-level enumerated type (Postgres CREATE TYPE ... AS ENUM).
type Enum struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Table owns its columns, indexes, foreign keys and at most one primary key.
type Table struct {
	Namespace   string       `json:"namespace,omitempty"`
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Indexes     []Index      `json:"indexes,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
	PrimaryKey  *PrimaryKey  `json:"primary_key,omitempty"`
}

// Column is a single table column.
type Column struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	Arity         Arity      `json:"arity"`
	Default       *Default   `json:"default,omitempty"`
	AutoIncrement bool       `json:"auto_increment,omitempty"`
}

// Index is a secondary index. Two indexes are structurally identical when
// their column lists, sort orders and algorithm match; the name does not
// participate in identity.
type Index struct {
	Name      string         `json:"name"`
	Columns   []IndexColumn  `json:"columns"`
	Unique    bool           `json:"unique,omitempty"`
	Algorithm IndexAlgorithm `json:"algorithm,omitempty"`
	Clustered bool           `json:"clustered,omitempty"`
}

// IndexColumn is one key part of an index.
type IndexColumn struct {
	Name   string    `json:"name"`
	Sort   SortOrder `json:"sort,omitempty"`
	Length int       `json:"length,omitempty"` // prefix length, 0 = whole column
}

// ForeignKey is a referential constraint. Two foreign keys describe the same
// logical relationship when the (columns, referenced table, referenced
// columns) tuple matches, regardless of constraint name.
type ForeignKey struct {
	Name              string            `json:"name,omitempty"`
	Columns           []string          `json:"columns"`
	ReferencedTable   string            `json:"referenced_table"`
	ReferencedColumns []string          `json:"referenced_columns"`
	OnDelete          ReferentialAction `json:"on_delete,omitempty"`
	OnUpdate          ReferentialAction `json:"on_update,omitempty"`
}

// PrimaryKey is the (at most one) primary key of a table. The constraint
// name is optional; some backends cannot name primary keys at all.
type PrimaryKey struct {
	Columns   []string `json:"columns"`
	Name      string   `json:"name,omitempty"`
	Clustered bool     `json:"clustered,omitempty"`
}

// TableIndex returns the position of the named table, or -1.
func (s *Schema) TableIndex(namespace, name string) int {
	for i := range s.Tables {
		if s.Tables[i].Name == name && s.Tables[i].Namespace == namespace {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the position of the named column in t, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// ColumnsMatch reports whether the index covers exactly the given column
// names in order, ignoring sort order and prefix lengths.
func (ix *Index) ColumnsMatch(names []string) bool {
	if len(ix.Columns) != len(names) {
		return false
	}
	for i, c := range ix.Columns {
		if c.Name != names[i] {
			return false
		}
	}
	return true
}

// StructurallyEqual reports whether two indexes are the same index up to
// renaming: identical key parts (names, sort orders, prefix lengths),
// uniqueness and algorithm.
func (ix *Index) StructurallyEqual(other *Index) bool {
	if ix.Unique != other.Unique || ix.Algorithm != other.Algorithm || ix.Clustered != other.Clustered {
		return false
	}
	if len(ix.Columns) != len(other.Columns) {
		return false
	}
	for i := range ix.Columns {
		if ix.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// SameRelation reports whether two foreign keys express the same logical
// relationship, irrespective of constraint name and referential actions.
func (fk *ForeignKey) SameRelation(other *ForeignKey) bool {
	if fk.ReferencedTable != other.ReferencedTable {
		return false
	}
	if !stringsEqual(fk.Columns, other.Columns) {
		return false
	}
	return stringsEqual(fk.ReferencedColumns, other.ReferencedColumns)
}

// ColumnsEqual reports whether two primary keys cover the same columns in
// the same order.
func (pk *PrimaryKey) ColumnsEqual(other *PrimaryKey) bool {
	return stringsEqual(pk.Columns, other.Columns)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
