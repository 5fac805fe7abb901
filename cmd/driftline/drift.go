package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/migrate"
)

func newDriftCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "compare the live database against the recorded migration history",
		Args:  cobra.NoArgs,
		RunE:  runDrift,
	}
}

func runDrift(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	r, err := setup(ctx)
	if err != nil {
		return err
	}
	defer r.close()

	scripts, hasHistory, err := r.loadHistory(ctx)
	if err != nil {
		return err
	}
	if !hasHistory {
		return errs.New(errs.ErrKindInvalidInput, "drift requires a history source (history.dir or history.store)")
	}

	introspector := r.introspector()
	if introspector == nil {
		return errs.New(errs.ErrKindInvalidInput, "drift requires a database connection that supports introspection")
	}

	replayer, err := r.replayer(ctx)
	if err != nil {
		return err
	}

	inferrer := migrate.NewInferrer(r.flav, r.conn, introspector, replayer, nil, r.log)
	script, err := inferrer.CalculateDrift(ctx, scripts)
	if err != nil {
		return err
	}

	if script == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "-- no drift")
		return nil
	}

	// The script migrates the live database back to the recorded state.
	fmt.Fprint(cmd.OutOrStdout(), script)
	return errs.New(errs.ErrKindInvalidInput, "schema drift detected")
}
