package migrate

import (
	"context"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/destructive"
	"github.com/soumikc/driftline/internal/diff"
	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/history"
	"github.com/soumikc/driftline/internal/logger"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Inferrer runs the full inference pipeline for one backend. The connection
// may be nil; destructive checks then degrade conservatively instead of
// querying row counts.
type Inferrer struct {
	flav         flavour.Flavour
	conn         database.Conn
	introspector Introspector
	replayer     ShadowReplayer
	renderer     ScriptRenderer
	log          *logger.Logger
}

// NewInferrer wires an inferrer. introspector and replayer may be nil when
// the caller only uses Infer / InferFromEmpty; renderer falls back to the
// comment renderer, log to the default logger.
func NewInferrer(flav flavour.Flavour, conn database.Conn, introspector Introspector, replayer ShadowReplayer, renderer ScriptRenderer, log *logger.Logger) *Inferrer {
	if renderer == nil {
		renderer = CommentRenderer{}
	}
	if log == nil {
		log = logger.New(nil)
	}
	return &Inferrer{
		flav:         flav,
		conn:         conn,
		introspector: introspector,
		replayer:     replayer,
		renderer:     renderer,
		log:          log,
	}
}

// Infer calculates the steps taking previous to next and runs the
// destructive check over them.
func (in *Inferrer) Infer(ctx context.Context, previous, next *sqlschema.Schema) (*Migration, error) {
	steps := diff.CalculateSteps(previous, next, in.flav)

	plan, err := destructive.NewChecker(in.flav, in.conn).Check(ctx, steps)
	if err != nil {
		return nil, err
	}

	in.log.With().
		Str("flavour", in.flav.Name()).
		Int("steps", len(steps)).
		Int("warnings", len(plan.Warnings)).
		Int("unexecutable", len(plan.Unexecutables)).
		Logger().
		Debug("migration inferred")

	return &Migration{Steps: steps, Plan: plan}, nil
}

// InferFromEmpty calculates the migration that builds next from scratch.
// Every step is additive, so the plan never carries diagnostics.
func (in *Inferrer) InferFromEmpty(ctx context.Context, next *sqlschema.Schema) (*Migration, error) {
	return in.Infer(ctx, &sqlschema.Schema{}, next)
}

// InferNextMigration replays the recorded history on the shadow database and
// diffs the result against the desired catalog: the returned migration is the
// one that would be appended to the history.
func (in *Inferrer) InferNextMigration(ctx context.Context, scripts []history.Script, next *sqlschema.Schema) (*Migration, error) {
	if in.replayer == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "no shadow replayer configured")
	}

	previous, err := in.replayer.Replay(ctx, scripts)
	if err != nil {
		return nil, err
	}

	return in.Infer(ctx, previous, next)
}

// CalculateDrift compares the live database against the catalog the history
// claims to produce. The returned script migrates the live database BACK to
// the claimed catalog; it is empty when there is no drift. Destructive
// diagnostics are rendered as comments, they never block.
func (in *Inferrer) CalculateDrift(ctx context.Context, scripts []history.Script) (string, error) {
	if in.replayer == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "no shadow replayer configured")
	}
	if in.introspector == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "no introspector configured")
	}

	claimed, err := in.replayer.Replay(ctx, scripts)
	if err != nil {
		return "", err
	}

	actual, err := in.introspector.Introspect(ctx)
	if err != nil {
		return "", err
	}

	steps := diff.CalculateSteps(actual, claimed, in.flav)
	if len(steps) == 0 {
		return "", nil
	}

	plan, err := destructive.NewChecker(in.flav, in.conn).Check(ctx, steps)
	if err != nil {
		return "", err
	}

	in.log.With().
		Str("flavour", in.flav.Name()).
		Int("steps", len(steps)).
		Logger().
		Warn("schema drift detected")

	return in.renderer.Render(steps, plan)
}
