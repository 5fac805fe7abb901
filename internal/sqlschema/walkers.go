package sqlschema

// The walker types below are index-based handles into a Schema. A walker is
// two words (schema pointer + position) and is passed by value; it stays
// valid for the lifetime of the schema it points into. Diff results carry
// walkers so that steps can be rendered later without re-diffing.

// TableID is the position of a table within its schema.
type TableID int

// TableWalker is a handle on one table of a schema.
type TableWalker struct {
	Schema *Schema
	ID     TableID
}

// WalkTable returns a walker for the table at id.
func (s *Schema) WalkTable(id TableID) TableWalker {
	return TableWalker{Schema: s, ID: id}
}

// WalkTables returns walkers for every table, in schema order.
func (s *Schema) WalkTables() []TableWalker {
	out := make([]TableWalker, len(s.Tables))
	for i := range s.Tables {
		out[i] = TableWalker{Schema: s, ID: TableID(i)}
	}
	return out
}

// Get returns the underlying table.
func (w TableWalker) Get() *Table { return &w.Schema.Tables[w.ID] }

// Name returns the table name.
func (w TableWalker) Name() string { return w.Get().Name }

// Namespace returns the table's schema namespace ("" for the default one).
func (w TableWalker) Namespace() string { return w.Get().Namespace }

// Column looks up a column by name.
func (w TableWalker) Column(name string) (ColumnWalker, bool) {
	i := w.Get().ColumnIndex(name)
	if i < 0 {
		return ColumnWalker{}, false
	}
	return ColumnWalker{Schema: w.Schema, Table: w.ID, Pos: i}, true
}

// Columns returns walkers for every column, in table order.
func (w TableWalker) Columns() []ColumnWalker {
	cols := w.Get().Columns
	out := make([]ColumnWalker, len(cols))
	for i := range cols {
		out[i] = ColumnWalker{Schema: w.Schema, Table: w.ID, Pos: i}
	}
	return out
}

// Indexes returns walkers for every index, in table order.
func (w TableWalker) Indexes() []IndexWalker {
	ixs := w.Get().Indexes
	out := make([]IndexWalker, len(ixs))
	for i := range ixs {
		out[i] = IndexWalker{Schema: w.Schema, Table: w.ID, Pos: i}
	}
	return out
}

// ForeignKeys returns walkers for every foreign key, in table order.
func (w TableWalker) ForeignKeys() []ForeignKeyWalker {
	fks := w.Get().ForeignKeys
	out := make([]ForeignKeyWalker, len(fks))
	for i := range fks {
		out[i] = ForeignKeyWalker{Schema: w.Schema, Table: w.ID, Pos: i}
	}
	return out
}

// PrimaryKey returns the table's primary key, or nil.
func (w TableWalker) PrimaryKey() *PrimaryKey { return w.Get().PrimaryKey }

// ColumnWalker is a handle on one column of one table.
type ColumnWalker struct {
	Schema *Schema
	Table  TableID
	Pos    int
}

// Get returns the underlying column.
func (c ColumnWalker) Get() *Column { return &c.Schema.Tables[c.Table].Columns[c.Pos] }

// Name returns the column name.
func (c ColumnWalker) Name() string { return c.Get().Name }

// TableWalker returns the owning table.
func (c ColumnWalker) TableWalker() TableWalker {
	return TableWalker{Schema: c.Schema, ID: c.Table}
}

// IsPartOfPrimaryKey reports whether the column participates in the owning
// table's primary key.
func (c ColumnWalker) IsPartOfPrimaryKey() bool {
	pk := c.TableWalker().PrimaryKey()
	if pk == nil {
		return false
	}
	name := c.Name()
	for _, col := range pk.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// IndexWalker is a handle on one index of one table.
type IndexWalker struct {
	Schema *Schema
	Table  TableID
	Pos    int
}

// Get returns the underlying index.
func (ix IndexWalker) Get() *Index { return &ix.Schema.Tables[ix.Table].Indexes[ix.Pos] }

// Name returns the index name.
func (ix IndexWalker) Name() string { return ix.Get().Name }

// TableWalker returns the owning table.
func (ix IndexWalker) TableWalker() TableWalker {
	return TableWalker{Schema: ix.Schema, ID: ix.Table}
}

// ForeignKeyWalker is a handle on one foreign key of one table.
type ForeignKeyWalker struct {
	Schema *Schema
	Table  TableID
	Pos    int
}

// Get returns the underlying foreign key.
func (fk ForeignKeyWalker) Get() *ForeignKey {
	return &fk.Schema.Tables[fk.Table].ForeignKeys[fk.Pos]
}

// TableWalker returns the owning table.
func (fk ForeignKeyWalker) TableWalker() TableWalker {
	return TableWalker{Schema: fk.Schema, ID: fk.Table}
}

// ReferencedTable resolves the referenced table in the same schema.
// The bool is false when the reference dangles (invalid input schema).
func (fk ForeignKeyWalker) ReferencedTable() (TableWalker, bool) {
	i := fk.Schema.TableIndex(fk.TableWalker().Namespace(), fk.Get().ReferencedTable)
	if i < 0 {
		return TableWalker{}, false
	}
	return TableWalker{Schema: fk.Schema, ID: TableID(i)}, true
}
