package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumikc/driftline/internal/diff"
	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/history"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// fakeReplayer ignores script content and returns a canned catalog, which is
// all the inferrer ever needs from it.
type fakeReplayer struct {
	schema  *sqlschema.Schema
	err     error
	scripts []history.Script
}

func (f *fakeReplayer) Replay(_ context.Context, scripts []history.Script) (*sqlschema.Schema, error) {
	f.scripts = scripts
	return f.schema, f.err
}

func usersSchema(extraColumns ...sqlschema.Column) *sqlschema.Schema {
	cols := []sqlschema.Column{
		{Name: "id", Type: sqlschema.ColumnType{Family: sqlschema.FamilyInt}, Arity: sqlschema.Required},
	}
	cols = append(cols, extraColumns...)
	return &sqlschema.Schema{Tables: []sqlschema.Table{{Name: "users", Columns: cols}}}
}

func TestInfer_ProducesStepsAndPlan(t *testing.T) {
	previous := usersSchema()
	next := usersSchema(sqlschema.Column{
		Name:  "email",
		Type:  sqlschema.ColumnType{Family: sqlschema.FamilyString},
		Arity: sqlschema.Nullable,
	})

	inferrer := NewInferrer(flavour.Postgres{}, nil, nil, nil, nil, nil)
	migration, err := inferrer.Infer(context.Background(), previous, next)
	require.NoError(t, err)

	require.Len(t, migration.Steps, 1)
	assert.IsType(t, diff.AlterTable{}, migration.Steps[0])
	assert.True(t, migration.Plan.IsExecutable())
	assert.False(t, migration.Blocks(false))
}

func TestInferFromEmpty_IsAllCreates(t *testing.T) {
	inferrer := NewInferrer(flavour.Postgres{}, nil, nil, nil, nil, nil)
	migration, err := inferrer.InferFromEmpty(context.Background(), usersSchema())
	require.NoError(t, err)

	require.Len(t, migration.Steps, 1)
	assert.IsType(t, diff.CreateTable{}, migration.Steps[0])
	assert.False(t, migration.Plan.HasWarnings())
	assert.True(t, migration.Plan.IsExecutable())
}

func TestInferNextMigration_UsesTheReplayedCatalog(t *testing.T) {
	replayer := &fakeReplayer{schema: usersSchema()}
	scripts := []history.Script{{Name: "0001_init.sql", SQL: "CREATE TABLE users (id int)"}}

	next := usersSchema(sqlschema.Column{
		Name:  "email",
		Type:  sqlschema.ColumnType{Family: sqlschema.FamilyString},
		Arity: sqlschema.Nullable,
	})

	inferrer := NewInferrer(flavour.Postgres{}, nil, nil, replayer, nil, nil)
	migration, err := inferrer.InferNextMigration(context.Background(), scripts, next)
	require.NoError(t, err)

	assert.Equal(t, scripts, replayer.scripts)
	require.Len(t, migration.Steps, 1)
	assert.IsType(t, diff.AlterTable{}, migration.Steps[0])
}

func TestInferNextMigration_WithoutReplayerFails(t *testing.T) {
	inferrer := NewInferrer(flavour.Postgres{}, nil, nil, nil, nil, nil)
	_, err := inferrer.InferNextMigration(context.Background(), nil, usersSchema())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestCalculateDrift_NoDriftIsEmpty(t *testing.T) {
	schema := usersSchema()
	inferrer := NewInferrer(flavour.Postgres{}, nil,
		IntrospectorFunc(func(context.Context) (*sqlschema.Schema, error) { return schema, nil }),
		&fakeReplayer{schema: schema}, nil, nil)

	script, err := inferrer.CalculateDrift(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, script)
}

func TestCalculateDrift_RendersTheRollback(t *testing.T) {
	// The live database grew a column the history never added. The drift
	// script must remove it, i.e. migrate actual back to claimed.
	claimed := usersSchema()
	actual := usersSchema(sqlschema.Column{
		Name:  "sneaky",
		Type:  sqlschema.ColumnType{Family: sqlschema.FamilyString},
		Arity: sqlschema.Nullable,
	})

	inferrer := NewInferrer(flavour.Postgres{}, nil,
		IntrospectorFunc(func(context.Context) (*sqlschema.Schema, error) { return actual, nil }),
		&fakeReplayer{schema: claimed}, nil, nil)

	script, err := inferrer.CalculateDrift(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, script, `alter table "users"`)
	assert.Contains(t, script, "-- ")
}

func TestCalculateDrift_ReplayErrorPropagates(t *testing.T) {
	inferrer := NewInferrer(flavour.Postgres{}, nil,
		IntrospectorFunc(func(context.Context) (*sqlschema.Schema, error) { return usersSchema(), nil }),
		&fakeReplayer{err: errs.New(errs.ErrKindQueryFailed, "script 0002 does not parse")}, nil, nil)

	_, err := inferrer.CalculateDrift(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestCommentRenderer_AttachesDiagnosticsToTheirStep(t *testing.T) {
	previous := usersSchema(sqlschema.Column{
		Name:  "bio",
		Type:  sqlschema.ColumnType{Family: sqlschema.FamilyString},
		Arity: sqlschema.Nullable,
	})
	steps := diff.CalculateSteps(previous, &sqlschema.Schema{}, flavour.Postgres{})
	require.Len(t, steps, 1)

	inferrer := NewInferrer(flavour.Postgres{}, nil, nil, nil, nil, nil)
	migration, err := inferrer.Infer(context.Background(), previous, &sqlschema.Schema{})
	require.NoError(t, err)

	out, err := CommentRenderer{}.Render(migration.Steps, migration.Plan)
	require.NoError(t, err)

	assert.Contains(t, out, `-- drop table "users"`)
	assert.Contains(t, out, "--   warning: ")
}

func TestCommentRenderer_NilPlan(t *testing.T) {
	steps := diff.CalculateSteps(&sqlschema.Schema{}, usersSchema(), flavour.Postgres{})
	out, err := CommentRenderer{}.Render(steps, nil)
	require.NoError(t, err)
	assert.Equal(t, "-- create table \"users\"\n", out)
}
