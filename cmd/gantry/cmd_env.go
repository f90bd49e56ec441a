package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Interactively build the environment variables a run needs",
		Long: `Prompts for the repository, ref, and environment name and prints
shell export lines suitable for eval:

  eval "$(gantry env)"`,
		RunE: runEnv,
	}
}

func runEnv(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("gantry env requires a TTY; set GITHUB_REPO and GIT_REF directly")
	}

	repo, err := promptInput("GitHub repository (org/name)", "allenai/beaker", validateRepo)
	if err != nil {
		return err
	}
	ref, err := promptInput("Git ref (commit, branch, or tag)", "main", validateNonEmpty("ref"))
	if err != nil {
		return err
	}
	venv, err := promptInput("Environment name (empty for default)", "", nil)
	if err != nil {
		return err
	}
	noPython, err := promptConfirm("Skip python environment setup?")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "export GITHUB_REPO=%q\n", strings.TrimSpace(repo))
	_, _ = fmt.Fprintf(out, "export GIT_REF=%q\n", strings.TrimSpace(ref))
	if venv = strings.TrimSpace(venv); venv != "" {
		_, _ = fmt.Fprintf(out, "export VENV_NAME=%q\n", venv)
	}
	if noPython {
		_, _ = fmt.Fprintln(out, "export NO_PYTHON=1")
	}
	return nil
}

func validateRepo(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("repository is required")
	}
	org, name, ok := strings.Cut(s, "/")
	if !ok || org == "" || name == "" {
		return fmt.Errorf("repository must be in org/name form")
	}
	return nil
}

func validateNonEmpty(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}
