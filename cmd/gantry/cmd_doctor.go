package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wisdomikezogwo/beaker-gantry/internal/config"
	"github.com/wisdomikezogwo/beaker-gantry/internal/git"
	"github.com/wisdomikezogwo/beaker-gantry/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the host environment for common issues",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfg := config.FromEnv()
	ok := true

	tbl := ui.NewTable(out, "TOOL", "STATUS", "DETAIL")

	// git is the one hard requirement.
	if !git.IsGitInstalled() {
		tbl.Row("git", "missing", "install from https://git-scm.com/")
		ok = false
	} else {
		path, _ := exec.LookPath("git")
		tbl.Row("git", "ok", path+" ("+gitVersion()+")")
	}

	// conda and gh are provisioned on demand; absence is informational
	// unless provisioning is disabled.
	if path, err := exec.LookPath("conda"); err != nil {
		detail := "will be installed on first run"
		if cfg.NoConda {
			detail = "absent and NO_CONDA is set; python stages will be skipped or use the system toolchain"
		}
		tbl.Row("conda", "absent", detail)
	} else {
		tbl.Row("conda", "ok", path)
	}

	if path, err := exec.LookPath("gh"); err != nil {
		tbl.Row("gh", "absent", "installed on demand when GITHUB_TOKEN is set")
	} else {
		tbl.Row("gh", "ok", path)
	}

	if err := tbl.Flush(); err != nil {
		return err
	}

	if cfg.Token == "" {
		_, _ = fmt.Fprintln(out, "GITHUB_TOKEN not set; private repositories will not be reachable")
	}

	if cfg.Repo != "" {
		_, _ = fmt.Fprintf(out, "Checking %s... ", cfg.Repo)
		if checkGitLsRemote("https://github.com/" + cfg.Repo) {
			_, _ = fmt.Fprintln(out, "OK")
		} else {
			_, _ = fmt.Fprintln(out, "FAILED (cannot access)")
			ok = false
		}
	}

	if ok {
		_, _ = fmt.Fprintln(out, "\nAll checks passed.")
		return nil
	}
	_, _ = fmt.Fprintln(out, "\nSome checks failed. See above for details.")
	return fmt.Errorf("doctor checks failed")
}

func gitVersion() string {
	out, err := exec.Command("git", "version").Output()
	if err != nil {
		return "unknown version"
	}
	return strings.TrimSpace(string(out))
}

// checkGitLsRemote verifies that a repo URL is reachable.
func checkGitLsRemote(url string) bool {
	cmd := exec.Command("git", "ls-remote", "--exit-code", "--quiet", url)
	return cmd.Run() == nil
}
