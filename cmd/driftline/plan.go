package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/migrate"
	"github.com/soumikc/driftline/internal/sqlschema"
)

func newPlanCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "infer the migration from the current state to the schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "accept steps that carry data-loss warnings")

	return cmd
}

func runPlan(cmd *cobra.Command, force bool) error {
	ctx := cmd.Context()

	r, err := setup(ctx)
	if err != nil {
		return err
	}
	defer r.close()

	next, err := sqlschema.ReadFile(r.cfg.Schema.File)
	if err != nil {
		return err
	}

	scripts, hasHistory, err := r.loadHistory(ctx)
	if err != nil {
		return err
	}

	var migration *migrate.Migration
	if hasHistory {
		// The previous state is what the recorded history produces, not
		// whatever the live database happens to contain.
		replayer, err := r.replayer(ctx)
		if err != nil {
			return err
		}
		inferrer := migrate.NewInferrer(r.flav, r.conn, r.introspector(), replayer, nil, r.log)
		migration, err = inferrer.InferNextMigration(ctx, scripts, next)
		if err != nil {
			return err
		}
	} else {
		previous := &sqlschema.Schema{}
		inferrer := migrate.NewInferrer(r.flav, r.conn, r.introspector(), nil, nil, r.log)
		if in := r.introspector(); in != nil {
			previous, err = in.Introspect(ctx)
			if err != nil {
				return err
			}
		}
		migration, err = inferrer.Infer(ctx, previous, next)
		if err != nil {
			return err
		}
	}

	if len(migration.Steps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "-- no changes")
		return nil
	}

	script, err := migrate.CommentRenderer{}.Render(migration.Steps, migration.Plan)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), script)

	if migration.Blocks(force) {
		if !migration.Plan.IsExecutable() {
			return errs.New(errs.ErrKindInvalidInput, "migration contains unexecutable steps")
		}
		return errs.New(errs.ErrKindInvalidInput, "migration carries warnings; re-run with --force to accept them")
	}
	return nil
}
