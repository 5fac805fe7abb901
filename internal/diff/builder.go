package diff

import (
	"sort"

	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// CalculateSteps diffs two catalogs and flattens the result into one
// dependency-ordered step list. The ordering invariants:
//
//  1. every CreateTable precedes every AddForeignKey, so forward and cyclic
//     references always resolve;
//  2. among created tables, a table precedes the tables whose foreign keys
//     reference it (cycles fall back to catalog order, harmless because of
//     rule 1);
//  3. DropForeignKey steps precede the DropTable of the table that carries
//     them;
//  4. column changes a backend cannot ALTER in place become one
//     RedefineTable step for the whole table;
//  5. identical inputs yield an identical step list.
func CalculateSteps(previous, next *sqlschema.Schema, flav flavour.Flavour) []Step {
	db := NewDifferDatabase(previous, next)
	var steps []Step

	for _, table := range db.DroppedTables() {
		for _, fk := range table.ForeignKeys() {
			steps = append(steps, DropForeignKey{ForeignKey: fk})
		}
		steps = append(steps, DropTable{Table: table})
	}

	for _, table := range sortCreatedByReferences(db.CreatedTables()) {
		steps = append(steps, CreateTable{Table: table})
		for _, ix := range table.Indexes() {
			steps = append(steps, CreateIndex{Index: ix})
		}
		for _, fk := range table.ForeignKeys() {
			steps = append(steps, AddForeignKey{ForeignKey: fk})
		}
	}

	for _, pair := range db.TablePairs() {
		steps = append(steps, diffTablePair(flav, pair)...)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return stepRank(steps[i]) < stepRank(steps[j])
	})
	return steps
}

// diffTablePair emits the steps for one table present on both sides.
func diffTablePair(flav flavour.Flavour, pair *TablePair) []Step {
	differ := NewTableDiffer(flav, pair)
	var steps []Step

	indexes := differ.DiffIndexes()
	for _, ix := range indexes.Dropped {
		steps = append(steps, DropIndex{Index: ix})
	}
	for _, ix := range indexes.Created {
		steps = append(steps, CreateIndex{Index: ix})
	}
	for _, renamed := range indexes.Renamed {
		steps = append(steps, RenameIndex{Indexes: renamed})
	}

	fks := differ.DiffForeignKeys()
	for _, fk := range fks.Dropped {
		steps = append(steps, DropForeignKey{ForeignKey: fk})
	}
	for _, fk := range fks.Created {
		steps = append(steps, AddForeignKey{ForeignKey: fk})
	}

	columnPairs := differ.ColumnPairs()
	changes, redefine := columnChanges(flav, differ, columnPairs)
	if len(changes) > 0 {
		if redefine {
			steps = append(steps, RedefineTable{Tables: pair.Tables, Changes: changes})
		} else {
			steps = append(steps, AlterTable{Tables: pair.Tables, Changes: changes})
		}
	}

	// A rebuilt table carries its next-side primary key already.
	if !redefine {
		pk := differ.DiffPrimaryKey(columnPairs)
		if pk.Dropped {
			steps = append(steps, DropPrimaryKey{Table: pair.Tables.Previous})
		}
		if pk.Created {
			steps = append(steps, CreatePrimaryKey{Table: pair.Tables.Next})
		}
		if pk.Renamed {
			steps = append(steps, RenamePrimaryKey{Tables: pair.Tables})
		}
	}

	return steps
}

// columnChanges assembles the column-level change list for one table pair
// and decides whether it can be applied in place or needs a table rebuild.
func columnChanges(flav flavour.Flavour, differ *TableDiffer, pairs []ColumnPairChange) ([]TableChange, bool) {
	caps := flav.Capabilities()
	var changes []TableChange
	redefine := false

	for _, col := range differ.DroppedColumns() {
		changes = append(changes, DropColumn{Column: col})
	}

	for _, pc := range pairs {
		if !pc.Changes.DiffersInSomething() {
			continue
		}
		if !caps.InPlaceAlterColumn {
			redefine = true
		}

		if !pc.Changes.TypeChanged() {
			changes = append(changes, AlterColumn{Columns: pc.Columns, Changes: pc.Changes})
			continue
		}

		prev, next := pc.Columns.Previous.Get(), pc.Columns.Next.Get()
		cast := flav.ClassifyTypeChange(prev.Type, next.Type)
		if pc.Columns.Next.IsPartOfPrimaryKey() && !caps.AlterPrimaryKeyColumnType {
			redefine = true
		}
		if cast == flavour.NotCastable {
			changes = append(changes, DropAndRecreateColumn{Columns: pc.Columns, Changes: pc.Changes})
			continue
		}
		c := cast
		changes = append(changes, AlterColumn{Columns: pc.Columns, Changes: pc.Changes, TypeChange: &c})
	}

	for _, col := range differ.CreatedColumns() {
		changes = append(changes, AddColumn{Column: col})
	}

	return changes, redefine
}

// sortCreatedByReferences orders newly created tables so that referenced
// tables come before referencing ones. Kahn's algorithm with catalog order
// as the deterministic tie-break; self-references are skipped and cycles
// fall back to catalog order.
func sortCreatedByReferences(created []sqlschema.TableWalker) []sqlschema.TableWalker {
	if len(created) < 2 {
		return created
	}

	pos := make(map[sqlschema.TableID]int, len(created))
	for i, t := range created {
		pos[t.ID] = i
	}

	// dependents[a] lists the created tables whose foreign keys reference
	// created[a].
	dependents := make([][]int, len(created))
	indegree := make([]int, len(created))
	for i, t := range created {
		for _, fk := range t.ForeignKeys() {
			ref, ok := fk.ReferencedTable()
			if !ok || ref.ID == t.ID {
				continue
			}
			j, ok := pos[ref.ID]
			if !ok {
				continue // references a pre-existing table
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	var queue []int
	for i := range created {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	out := make([]sqlschema.TableWalker, 0, len(created))
	emitted := make([]bool, len(created))
	for len(queue) > 0 {
		sort.Ints(queue)
		i := queue[0]
		queue = queue[1:]
		out = append(out, created[i])
		emitted[i] = true
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	// Anything still unemitted is part of a reference cycle.
	for i := range created {
		if !emitted[i] {
			out = append(out, created[i])
		}
	}
	return out
}

// stepRank fixes the relative order of step kinds. Steps of the same kind
// keep their insertion order, which follows catalog order and is therefore
// deterministic.
func stepRank(s Step) int {
	switch s.(type) {
	case DropForeignKey:
		return 0
	case DropPrimaryKey:
		return 1
	case DropIndex:
		return 2
	case DropTable:
		return 3
	case RedefineTable:
		return 4
	case AlterTable:
		return 5
	case RenameTable:
		return 6
	case CreateTable:
		return 7
	case RenamePrimaryKey:
		return 8
	case CreatePrimaryKey:
		return 9
	case RenameIndex:
		return 10
	case CreateIndex:
		return 11
	case AddForeignKey:
		return 12
	default:
		return 13
	}
}
