// Package diff computes the ordered sequence of migration steps that
// transforms a previous catalog into a next one. The algorithm is pure and
// deterministic: no I/O, no shared state, identical inputs always produce an
// identical step list. Risk classification against live data lives in the
// destructive package.
package diff

import (
	"github.com/soumikc/driftline/internal/sqlschema"
)

// DifferDatabase precomputes name-based correspondence between the previous
// and next catalogs once per diff run, so per-table differs never re-scan
// linearly. It only ever reads the two schemas.
type DifferDatabase struct {
	Schemas sqlschema.Pair[*sqlschema.Schema]

	created []sqlschema.TableWalker
	dropped []sqlschema.TableWalker
	pairs   []*TablePair
}

// TablePair is a table present in both catalogs under the same qualified
// name, with its column correspondence precomputed.
type TablePair struct {
	Tables sqlschema.Pair[sqlschema.TableWalker]

	// columnNames lists the union of column names: next-schema order
	// first, previous-only columns appended in previous-schema order.
	columnNames []string
	// columns maps a column name to its position on each side, -1 when
	// the side does not have it.
	columns map[string]sqlschema.Pair[int]
}

type tableKey struct {
	namespace string
	name      string
}

// NewDifferDatabase indexes the two catalogs. O(n log n) in the total number
// of tables and columns.
func NewDifferDatabase(previous, next *sqlschema.Schema) *DifferDatabase {
	db := &DifferDatabase{
		Schemas: sqlschema.MakePair(previous, next),
	}

	prevByName := make(map[tableKey]sqlschema.TableID, len(previous.Tables))
	for i := range previous.Tables {
		t := &previous.Tables[i]
		prevByName[tableKey{t.Namespace, t.Name}] = sqlschema.TableID(i)
	}

	nextNames := make(map[tableKey]struct{}, len(next.Tables))
	for _, nextTable := range next.WalkTables() {
		key := tableKey{nextTable.Namespace(), nextTable.Name()}
		nextNames[key] = struct{}{}
		prevID, ok := prevByName[key]
		if !ok {
			db.created = append(db.created, nextTable)
			continue
		}
		db.pairs = append(db.pairs, newTablePair(previous.WalkTable(prevID), nextTable))
	}

	for _, prevTable := range previous.WalkTables() {
		if _, ok := nextNames[tableKey{prevTable.Namespace(), prevTable.Name()}]; !ok {
			db.dropped = append(db.dropped, prevTable)
		}
	}

	return db
}

func newTablePair(previous, next sqlschema.TableWalker) *TablePair {
	pair := &TablePair{
		Tables:  sqlschema.MakePair(previous, next),
		columns: make(map[string]sqlschema.Pair[int]),
	}

	for i, col := range next.Get().Columns {
		pair.columnNames = append(pair.columnNames, col.Name)
		pair.columns[col.Name] = sqlschema.MakePair(previous.Get().ColumnIndex(col.Name), i)
	}
	for i, col := range previous.Get().Columns {
		if _, seen := pair.columns[col.Name]; seen {
			continue
		}
		pair.columnNames = append(pair.columnNames, col.Name)
		pair.columns[col.Name] = sqlschema.MakePair(i, -1)
	}

	return pair
}

// CreatedTables returns tables present only in the next catalog, in next
// catalog order.
func (db *DifferDatabase) CreatedTables() []sqlschema.TableWalker { return db.created }

// DroppedTables returns tables present only in the previous catalog, in
// previous catalog order.
func (db *DifferDatabase) DroppedTables() []sqlschema.TableWalker { return db.dropped }

// TablePairs returns tables present in both catalogs, in next catalog order.
func (db *DifferDatabase) TablePairs() []*TablePair { return db.pairs }

// CreatedColumns returns columns present only on the next side, in next
// table order.
func (p *TablePair) CreatedColumns() []sqlschema.ColumnWalker {
	var out []sqlschema.ColumnWalker
	for _, name := range p.columnNames {
		pos := p.columns[name]
		if pos.Previous < 0 {
			out = append(out, columnAt(p.Tables.Next, pos.Next))
		}
	}
	return out
}

// DroppedColumns returns columns present only on the previous side, in
// previous table order.
func (p *TablePair) DroppedColumns() []sqlschema.ColumnWalker {
	var out []sqlschema.ColumnWalker
	for _, name := range p.columnNames {
		pos := p.columns[name]
		if pos.Next < 0 {
			out = append(out, columnAt(p.Tables.Previous, pos.Previous))
		}
	}
	return out
}

// ColumnPairs returns columns present on both sides, in next table order.
func (p *TablePair) ColumnPairs() []sqlschema.Pair[sqlschema.ColumnWalker] {
	var out []sqlschema.Pair[sqlschema.ColumnWalker]
	for _, name := range p.columnNames {
		pos := p.columns[name]
		if pos.Previous >= 0 && pos.Next >= 0 {
			out = append(out, sqlschema.MakePair(
				columnAt(p.Tables.Previous, pos.Previous),
				columnAt(p.Tables.Next, pos.Next),
			))
		}
	}
	return out
}

func columnAt(t sqlschema.TableWalker, pos int) sqlschema.ColumnWalker {
	return sqlschema.ColumnWalker{Schema: t.Schema, Table: t.ID, Pos: pos}
}
