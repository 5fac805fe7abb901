package destructive

import (
	"context"
	"fmt"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/diff"
	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Checker walks a step list and classifies each step. Backend differences
// (quoting, count-query syntax, capability flags) come from the injected
// Flavour, so one Checker serves every backend.
//
// Count queries are issued sequentially, in step order, on the one borrowed
// connection. A query failure aborts the whole check: no partial plan is
// ever returned.
type Checker struct {
	flav flavour.Flavour
	conn database.Conn // nil when planning offline; counts degrade conservatively
}

// NewChecker builds a checker for the given backend. conn may be nil, in
// which case steps that would need a count are classified as if the affected
// tables contained data.
func NewChecker(flav flavour.Flavour, conn database.Conn) *Checker {
	return &Checker{flav: flav, conn: conn}
}

// Check classifies every step and returns the accumulated plan.
func (c *Checker) Check(ctx context.Context, steps []diff.Step) (*Plan, error) {
	plan := &Plan{}

	for i, step := range steps {
		switch s := step.(type) {
		case diff.DropTable:
			if err := c.checkDropTable(ctx, plan, i, s); err != nil {
				return nil, err
			}
		case diff.AlterTable:
			if err := c.checkTableChanges(ctx, plan, i, s.Tables, s.Changes, false); err != nil {
				return nil, err
			}
		case diff.RedefineTable:
			if err := c.checkTableChanges(ctx, plan, i, s.Tables, s.Changes, true); err != nil {
				return nil, err
			}
		default:
			// Everything else (creations, renames, foreign key
			// changes) never loses data.
		}
	}

	return plan, nil
}

func (c *Checker) checkDropTable(ctx context.Context, plan *Plan, index int, step diff.DropTable) error {
	table := step.Table
	rows, counted, err := c.countRows(ctx, table)
	if err != nil {
		return err
	}
	if counted && rows == 0 {
		return nil
	}
	if counted {
		plan.AddWarning(index, fmt.Sprintf(
			"You are about to drop the table %q, which is not empty (%d rows).", table.Name(), rows))
		return nil
	}
	plan.AddWarning(index, fmt.Sprintf(
		"You are about to drop the table %q; all its data will be lost.", table.Name()))
	return nil
}

func (c *Checker) checkTableChanges(ctx context.Context, plan *Plan, index int, tables sqlschema.Pair[sqlschema.TableWalker], changes []diff.TableChange, redefine bool) error {
	for _, change := range changes {
		switch ch := change.(type) {
		case diff.DropColumn:
			if err := c.checkDropColumn(ctx, plan, index, ch); err != nil {
				return err
			}
		case diff.AddColumn:
			if err := c.checkAddColumn(ctx, plan, index, tables, ch); err != nil {
				return err
			}
		case diff.AlterColumn:
			c.checkAlterColumn(plan, index, ch, redefine)
		case diff.DropAndRecreateColumn:
			c.checkDropAndRecreate(plan, index, ch)
		}
	}
	return nil
}

func (c *Checker) checkDropColumn(ctx context.Context, plan *Plan, index int, ch diff.DropColumn) error {
	col := ch.Column
	values, counted, err := c.countNonNull(ctx, col)
	if err != nil {
		return err
	}
	if counted && values == 0 {
		return nil
	}
	if counted {
		plan.AddWarning(index, fmt.Sprintf(
			"You are about to drop the column %q on table %q, which still contains %d non-null values.",
			col.Name(), col.TableWalker().Name(), values))
		return nil
	}
	plan.AddWarning(index, fmt.Sprintf(
		"You are about to drop the column %q on table %q; its data will be lost.",
		col.Name(), col.TableWalker().Name()))
	return nil
}

func (c *Checker) checkAddColumn(ctx context.Context, plan *Plan, index int, tables sqlschema.Pair[sqlschema.TableWalker], ch diff.AddColumn) error {
	col := ch.Column.Get()
	if col.Arity != sqlschema.Required || col.Default != nil || col.AutoIncrement {
		return nil
	}

	// A required column without a default only fails on rows that already
	// exist, so the count resolves the ambiguity.
	rows, counted, err := c.countRows(ctx, tables.Previous)
	if err != nil {
		return err
	}
	if counted && rows == 0 {
		return nil
	}
	if counted {
		plan.SetUnexecutable(index, fmt.Sprintf(
			"Added the required column %q to table %q without a default value, but the table has %d rows.",
			col.Name, tables.Next.Name(), rows))
		return nil
	}
	plan.SetUnexecutable(index, fmt.Sprintf(
		"Added the required column %q to table %q without a default value.",
		col.Name, tables.Next.Name()))
	return nil
}

func (c *Checker) checkAlterColumn(plan *Plan, index int, ch diff.AlterColumn, redefine bool) {
	if ch.Changes.OnlyDefaultChanged() {
		return
	}

	prev, next := ch.Columns.Previous.Get(), ch.Columns.Next.Get()

	// Optional made required: any existing NULL violates the new
	// constraint deterministically, no count needed.
	if ch.Changes.ArityChanged() && prev.Arity == sqlschema.Nullable && next.Arity == sqlschema.Required {
		if next.Default == nil && !next.AutoIncrement {
			plan.SetUnexecutable(index, fmt.Sprintf(
				"Made the column %q on table %q required, but there is no default value and existing NULL values would violate the constraint.",
				next.Name, ch.Columns.Next.TableWalker().Name()))
		}
	}

	if ch.TypeChange != nil && *ch.TypeChange == flavour.RiskyCast {
		msg := fmt.Sprintf(
			"Changing the type of column %q on table %q from %s to %s may result in truncated or altered data.",
			next.Name, ch.Columns.Next.TableWalker().Name(), prev.Type, next.Type)
		if redefine {
			msg += " The table will be rebuilt to apply this change."
		}
		plan.AddWarning(index, msg)
	}
}

func (c *Checker) checkDropAndRecreate(plan *Plan, index int, ch diff.DropAndRecreateColumn) {
	prev, next := ch.Columns.Previous.Get(), ch.Columns.Next.Get()

	if next.Arity == sqlschema.Required && next.Default == nil && !next.AutoIncrement {
		plan.SetUnexecutable(index, fmt.Sprintf(
			"The column %q on table %q must be dropped and recreated (no cast from %s to %s exists), but it is required and has no default value.",
			next.Name, ch.Columns.Next.TableWalker().Name(), prev.Type, next.Type))
		return
	}

	plan.AddWarning(index, fmt.Sprintf(
		"The column %q on table %q has no cast from %s to %s; it will be dropped and recreated, and all its values will be lost.",
		next.Name, ch.Columns.Next.TableWalker().Name(), prev.Type, next.Type))
}

// countRows fetches the row count of a previous-schema table. counted is
// false when no connection is available.
func (c *Checker) countRows(ctx context.Context, table sqlschema.TableWalker) (int64, bool, error) {
	if c.conn == nil {
		return 0, false, nil
	}
	q := c.flav.CountRowsQuery(table.Namespace(), table.Name())
	n, err := database.CountScalar(ctx, c.conn, q)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// countNonNull fetches the number of non-null values in a previous-schema
// column.
func (c *Checker) countNonNull(ctx context.Context, col sqlschema.ColumnWalker) (int64, bool, error) {
	if c.conn == nil {
		return 0, false, nil
	}
	table := col.TableWalker()
	q := c.flav.CountNonNullQuery(table.Namespace(), table.Name(), col.Name())
	n, err := database.CountScalar(ctx, c.conn, q)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
