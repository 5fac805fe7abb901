// driftline infers schema migrations: it diffs a desired-state catalog
// against a live database (or a replayed migration history) and reports the
// ordered steps together with their destructive-change diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "driftline",
		Short:        "schema migration planner",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "driftline.yaml", "path to the driftline config file")

	root.AddCommand(newPlanCommand())
	root.AddCommand(newDriftCommand())

	return root
}
