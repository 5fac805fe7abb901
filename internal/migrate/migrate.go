// Package migrate orchestrates schema inference: it turns a pair of catalogs
// into ordered migration steps, runs the destructive check over them, and can
// reconstruct the "claimed" catalog from a migration history to detect drift.
package migrate

import (
	"context"

	"github.com/soumikc/driftline/internal/destructive"
	"github.com/soumikc/driftline/internal/diff"
	"github.com/soumikc/driftline/internal/history"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Introspector produces the catalog of the live target database.
type Introspector interface {
	Introspect(ctx context.Context) (*sqlschema.Schema, error)
}

// IntrospectorFunc adapts a function to the Introspector interface.
type IntrospectorFunc func(ctx context.Context) (*sqlschema.Schema, error)

func (f IntrospectorFunc) Introspect(ctx context.Context) (*sqlschema.Schema, error) {
	return f(ctx)
}

// ShadowReplayer reconstructs the catalog a migration history claims to
// produce, by applying the scripts to a disposable shadow database and
// introspecting the result.
type ShadowReplayer interface {
	Replay(ctx context.Context, scripts []history.Script) (*sqlschema.Schema, error)
}

// ScriptRenderer turns steps and their destructive diagnostics into script
// text for human review.
type ScriptRenderer interface {
	Render(steps []diff.Step, plan *destructive.Plan) (string, error)
}

// Migration is the outcome of an inference: the ordered steps and the
// destructive-check plan covering them.
type Migration struct {
	Steps []diff.Step
	Plan  *destructive.Plan
}

// Blocks implements the force contract for the whole migration: unexecutable
// steps always block, warnings block unless forced.
func (m *Migration) Blocks(force bool) bool {
	return m.Plan.Blocks(force)
}
