package main

import (
	"github.com/spf13/cobra"

	"github.com/wisdomikezogwo/beaker-gantry/internal/logging"
)

func newRootCmd() *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:     "gantry",
		Short:   "Provision a runnable environment for a GitHub repo and hand off to a command",
		Version: version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Setup(verbosity)
		},
	}

	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase logging verbosity")

	cmd.AddCommand(
		newRunCmd(),
		newDoctorCmd(),
		newEnvCmd(),
	)

	return cmd
}
