package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wisdomikezogwo/beaker-gantry/internal/bootstrap"
	"github.com/wisdomikezogwo/beaker-gantry/internal/config"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- <command...>",
		Short: "Bootstrap the environment, then run the given command",
		Long: `Validates configuration from the environment, clones GITHUB_REPO at
GIT_REF, provisions a conda environment and installs dependencies, then
hands control to the trailing command. The gantry process exits with the
command's exit code.`,
		DisableFlagParsing: true,
		RunE:               runRun,
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	// Strip leading "--" if present.
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	wf := bootstrap.New(bootstrap.Options{
		Config: config.FromEnv(),
		Out:    cmd.ErrOrStderr(),
	})

	code, err := wf.Run(args)
	if err != nil {
		return err
	}

	// Nothing may be printed past this point; the exit code belongs to the
	// handed-off command.
	os.Exit(code)
	return nil
}
