package diff

import (
	"fmt"
	"strings"

	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// TableDiffer computes the differences of one table pair. It never fails:
// ambiguous situations degrade to the conservative branch (drop + create
// instead of rename).
type TableDiffer struct {
	flav flavour.Flavour
	pair *TablePair
}

// NewTableDiffer builds a differ for one table pair.
func NewTableDiffer(flav flavour.Flavour, pair *TablePair) *TableDiffer {
	return &TableDiffer{flav: flav, pair: pair}
}

// ColumnPairChange is a column present on both sides, annotated with what
// changed about it.
type ColumnPairChange struct {
	Columns sqlschema.Pair[sqlschema.ColumnWalker]
	Changes ColumnChanges
}

// CreatedColumns returns columns only the next side has.
func (d *TableDiffer) CreatedColumns() []sqlschema.ColumnWalker { return d.pair.CreatedColumns() }

// DroppedColumns returns columns only the previous side has.
func (d *TableDiffer) DroppedColumns() []sqlschema.ColumnWalker { return d.pair.DroppedColumns() }

// ColumnPairs returns all columns present on both sides with their change
// bitsets, unchanged columns included (Changes == 0).
func (d *TableDiffer) ColumnPairs() []ColumnPairChange {
	pairs := d.pair.ColumnPairs()
	out := make([]ColumnPairChange, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, ColumnPairChange{Columns: p, Changes: compareColumns(p)})
	}
	return out
}

// IndexDiff is the outcome of index matching for one table pair.
type IndexDiff struct {
	Created []sqlschema.IndexWalker
	Dropped []sqlschema.IndexWalker
	Renamed []sqlschema.Pair[sqlschema.IndexWalker]
}

// DiffIndexes matches indexes structurally (columns, sort orders, algorithm,
// never by name) and decides which are created, dropped or renamed.
//
// Rename detection is deliberately conservative: a previous index is only a
// rename candidate when it is the unique previous index with its exact
// structural signature, and likewise on the next side. Pairing two
// structurally identical indexes by anything else would be arbitrary, so
// ambiguous groups are dropped and recreated wholesale.
func (d *TableDiffer) DiffIndexes() IndexDiff {
	prevBySig := groupIndexesBySignature(d.pair.Tables.Previous)
	nextBySig := groupIndexesBySignature(d.pair.Tables.Next)

	var out IndexDiff

	// Walk next-side indexes in table order so output order is stable.
	seenSig := make(map[string]bool)
	for _, ix := range d.pair.Tables.Next.Indexes() {
		sig := indexSignature(ix.Get())
		if seenSig[sig] {
			continue
		}
		seenSig[sig] = true

		prevGroup := prevBySig[sig]
		nextGroup := nextBySig[sig]

		if len(prevGroup) == 1 && len(nextGroup) == 1 {
			if prevGroup[0].Name() != nextGroup[0].Name() {
				out.Renamed = append(out.Renamed, sqlschema.MakePair(prevGroup[0], nextGroup[0]))
			}
			continue
		}

		// Ambiguous group: keep name-identical indexes, recreate the
		// rest.
		prevNames := make(map[string]bool, len(prevGroup))
		for _, p := range prevGroup {
			prevNames[p.Name()] = true
		}
		nextNames := make(map[string]bool, len(nextGroup))
		for _, n := range nextGroup {
			nextNames[n.Name()] = true
		}
		for _, n := range nextGroup {
			if !prevNames[n.Name()] {
				out.Created = append(out.Created, n)
			}
		}
		for _, p := range prevGroup {
			if !nextNames[p.Name()] {
				out.Dropped = append(out.Dropped, p)
			}
		}
	}

	// Previous-side signatures with no next counterpart at all. Next-only
	// signatures were already handled above (empty previous group).
	for _, ix := range d.pair.Tables.Previous.Indexes() {
		sig := indexSignature(ix.Get())
		if _, ok := nextBySig[sig]; !ok {
			out.Dropped = append(out.Dropped, ix)
		}
	}

	return out
}

func groupIndexesBySignature(t sqlschema.TableWalker) map[string][]sqlschema.IndexWalker {
	groups := make(map[string][]sqlschema.IndexWalker)
	for _, ix := range t.Indexes() {
		sig := indexSignature(ix.Get())
		groups[sig] = append(groups[sig], ix)
	}
	return groups
}

// indexSignature serializes everything that participates in structural
// index identity. The name is excluded on purpose.
func indexSignature(ix *sqlschema.Index) string {
	var b strings.Builder
	if ix.Unique {
		b.WriteString("u;")
	}
	b.WriteString(string(ix.Algorithm))
	if ix.Clustered {
		b.WriteString(";c")
	}
	for _, col := range ix.Columns {
		fmt.Fprintf(&b, "|%s:%s:%d", col.Name, col.Sort, col.Length)
	}
	return b.String()
}

// ForeignKeyDiff is the outcome of foreign key matching for one table pair.
type ForeignKeyDiff struct {
	Created []sqlschema.ForeignKeyWalker
	Dropped []sqlschema.ForeignKeyWalker
}

// DiffForeignKeys matches foreign keys by their logical relationship: the
// (referencing columns, referenced table, referenced columns) tuple,
// irrespective of constraint name. A matched pair whose referential actions
// differ is recreated; name-only differences are cosmetic and produce no
// step.
func (d *TableDiffer) DiffForeignKeys() ForeignKeyDiff {
	var out ForeignKeyDiff

	prevFks := d.pair.Tables.Previous.ForeignKeys()
	matched := make([]bool, len(prevFks))

	for _, nextFk := range d.pair.Tables.Next.ForeignKeys() {
		pairedAt := -1
		for i, prevFk := range prevFks {
			if !matched[i] && prevFk.Get().SameRelation(nextFk.Get()) {
				pairedAt = i
				break
			}
		}
		if pairedAt < 0 {
			out.Created = append(out.Created, nextFk)
			continue
		}
		matched[pairedAt] = true
		prev, next := prevFks[pairedAt].Get(), nextFk.Get()
		if prev.OnDelete != next.OnDelete || prev.OnUpdate != next.OnUpdate {
			out.Dropped = append(out.Dropped, prevFks[pairedAt])
			out.Created = append(out.Created, nextFk)
		}
	}

	for i, prevFk := range prevFks {
		if !matched[i] {
			out.Dropped = append(out.Dropped, prevFk)
		}
	}

	return out
}

// PrimaryKeyDiff is the outcome of primary key comparison.
type PrimaryKeyDiff struct {
	Created bool
	Dropped bool
	Renamed bool
}

// DiffPrimaryKey decides whether the primary key must be dropped and/or
// recreated. A type change on any column of an otherwise unchanged key still
// forces a rebuild: the constraint must be recreated over the new type.
func (d *TableDiffer) DiffPrimaryKey(columnPairs []ColumnPairChange) PrimaryKeyDiff {
	prev := d.pair.Tables.Previous.PrimaryKey()
	next := d.pair.Tables.Next.PrimaryKey()

	switch {
	case prev == nil && next == nil:
		return PrimaryKeyDiff{}
	case prev == nil:
		return PrimaryKeyDiff{Created: true}
	case next == nil:
		return PrimaryKeyDiff{Dropped: true}
	}

	if !prev.ColumnsEqual(next) {
		return PrimaryKeyDiff{Created: true, Dropped: true}
	}

	for _, pc := range columnPairs {
		if pc.Changes.TypeChanged() && pc.Columns.Next.IsPartOfPrimaryKey() {
			return PrimaryKeyDiff{Created: true, Dropped: true}
		}
	}

	if prev.Name != next.Name && d.flav.Capabilities().NamedPrimaryKeys {
		return PrimaryKeyDiff{Renamed: true}
	}

	return PrimaryKeyDiff{}
}
