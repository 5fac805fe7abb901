package diff

import (
	"fmt"

	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Step is one migration operation. The set of implementations is closed:
// renderers and checkers switch exhaustively over the concrete types below.
// Each step carries walkers into the previous or next catalog, so it can be
// rendered without re-diffing.
type Step interface {
	isStep()
	// Description is a one-line human summary used in logs, warnings and
	// the fallback script renderer.
	Description() string
}

// CreateTable creates a table of the next catalog. Foreign keys are never
// part of this step; they are added by AddForeignKey steps after every
// CreateTable.
type CreateTable struct {
	Table sqlschema.TableWalker // next
}

// DropTable drops a table of the previous catalog. Its foreign keys are
// dropped by earlier DropForeignKey steps.
type DropTable struct {
	Table sqlschema.TableWalker // previous
}

// RenameTable renames a previous table to its next name. The differ pairs
// tables by name only, so this step is produced solely from explicit rename
// hints supplied by the caller, never from a heuristic.
type RenameTable struct {
	Tables sqlschema.Pair[sqlschema.TableWalker]
}

// AlterTable applies in-place column changes to a table present on both
// sides.
type AlterTable struct {
	Tables  sqlschema.Pair[sqlschema.TableWalker]
	Changes []TableChange
}

// RedefineTable rebuilds a table whose changes the backend cannot apply with
// an in-place ALTER: create the table in its next shape under a temporary
// name, copy rows across, drop the old table, rename. The destructive
// checker applies stricter rules to it than to AlterTable.
type RedefineTable struct {
	Tables  sqlschema.Pair[sqlschema.TableWalker]
	Changes []TableChange
}

// CreateIndex creates an index of the next catalog.
type CreateIndex struct {
	Index sqlschema.IndexWalker // next
}

// DropIndex drops an index of the previous catalog.
type DropIndex struct {
	Index sqlschema.IndexWalker // previous
}

// RenameIndex renames a previous index to its next name. Emitted only when
// the structural signature identifies the pair unambiguously.
type RenameIndex struct {
	Indexes sqlschema.Pair[sqlschema.IndexWalker]
}

// AddForeignKey adds a foreign key of the next catalog. All AddForeignKey
// steps order after all CreateTable steps so that forward and cyclic
// references resolve.
type AddForeignKey struct {
	ForeignKey sqlschema.ForeignKeyWalker // next
}

// DropForeignKey drops a foreign key of the previous catalog. Orders before
// any DropTable.
type DropForeignKey struct {
	ForeignKey sqlschema.ForeignKeyWalker // previous
}

// CreatePrimaryKey adds the primary key of the next side of a table pair.
type CreatePrimaryKey struct {
	Table sqlschema.TableWalker // next
}

// DropPrimaryKey drops the primary key of the previous side of a table pair.
type DropPrimaryKey struct {
	Table sqlschema.TableWalker // previous
}

// RenamePrimaryKey renames the primary key constraint without touching its
// columns. Only planned on backends that support named primary keys.
type RenamePrimaryKey struct {
	Tables sqlschema.Pair[sqlschema.TableWalker]
}

func (CreateTable) isStep()      {}
func (DropTable) isStep()        {}
func (RenameTable) isStep()      {}
func (AlterTable) isStep()       {}
func (RedefineTable) isStep()    {}
func (CreateIndex) isStep()      {}
func (DropIndex) isStep()        {}
func (RenameIndex) isStep()      {}
func (AddForeignKey) isStep()    {}
func (DropForeignKey) isStep()   {}
func (CreatePrimaryKey) isStep() {}
func (DropPrimaryKey) isStep()   {}
func (RenamePrimaryKey) isStep() {}

func (s CreateTable) Description() string {
	return fmt.Sprintf("create table %q", s.Table.Name())
}

func (s DropTable) Description() string {
	return fmt.Sprintf("drop table %q", s.Table.Name())
}

func (s RenameTable) Description() string {
	return fmt.Sprintf("rename table %q to %q", s.Tables.Previous.Name(), s.Tables.Next.Name())
}

func (s AlterTable) Description() string {
	return fmt.Sprintf("alter table %q (%d changes)", s.Tables.Next.Name(), len(s.Changes))
}

func (s RedefineTable) Description() string {
	return fmt.Sprintf("redefine table %q (%d changes)", s.Tables.Next.Name(), len(s.Changes))
}

func (s CreateIndex) Description() string {
	return fmt.Sprintf("create index %q on table %q", s.Index.Name(), s.Index.TableWalker().Name())
}

func (s DropIndex) Description() string {
	return fmt.Sprintf("drop index %q on table %q", s.Index.Name(), s.Index.TableWalker().Name())
}

func (s RenameIndex) Description() string {
	return fmt.Sprintf("rename index %q to %q on table %q",
		s.Indexes.Previous.Name(), s.Indexes.Next.Name(), s.Indexes.Next.TableWalker().Name())
}

func (s AddForeignKey) Description() string {
	fk := s.ForeignKey.Get()
	return fmt.Sprintf("add foreign key on table %q referencing %q",
		s.ForeignKey.TableWalker().Name(), fk.ReferencedTable)
}

func (s DropForeignKey) Description() string {
	return fmt.Sprintf("drop foreign key %q on table %q",
		s.ForeignKey.Get().Name, s.ForeignKey.TableWalker().Name())
}

func (s CreatePrimaryKey) Description() string {
	return fmt.Sprintf("create primary key on table %q", s.Table.Name())
}

func (s DropPrimaryKey) Description() string {
	return fmt.Sprintf("drop primary key on table %q", s.Table.Name())
}

func (s RenamePrimaryKey) Description() string {
	return fmt.Sprintf("rename primary key on table %q", s.Tables.Next.Name())
}

// TableChange is one column-level change inside an AlterTable or
// RedefineTable step. Closed sum, like Step.
type TableChange interface {
	isTableChange()
	Description() string
}

// AddColumn adds a column of the next table.
type AddColumn struct {
	Column sqlschema.ColumnWalker // next
}

// DropColumn drops a column of the previous table.
type DropColumn struct {
	Column sqlschema.ColumnWalker // previous
}

// AlterColumn changes a column in place. TypeChange is set iff the type
// participates in the change; its classification is attached so neither the
// renderer nor the checker re-classifies.
type AlterColumn struct {
	Columns    sqlschema.Pair[sqlschema.ColumnWalker]
	Changes    ColumnChanges
	TypeChange *flavour.ColumnTypeChange
}

// DropAndRecreateColumn replaces a column whose type transition is not
// castable. Guaranteed loss of the column's values.
type DropAndRecreateColumn struct {
	Columns sqlschema.Pair[sqlschema.ColumnWalker]
	Changes ColumnChanges
}

func (AddColumn) isTableChange()             {}
func (DropColumn) isTableChange()            {}
func (AlterColumn) isTableChange()           {}
func (DropAndRecreateColumn) isTableChange() {}

func (c AddColumn) Description() string {
	return fmt.Sprintf("add column %q", c.Column.Name())
}

func (c DropColumn) Description() string {
	return fmt.Sprintf("drop column %q", c.Column.Name())
}

func (c AlterColumn) Description() string {
	return fmt.Sprintf("alter column %q (%s)", c.Columns.Next.Name(), c.Changes)
}

func (c DropAndRecreateColumn) Description() string {
	return fmt.Sprintf("drop and recreate column %q", c.Columns.Next.Name())
}
