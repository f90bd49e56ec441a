// Package githost wraps the GitHub CLI (gh). gantry prefers gh for
// authenticated clones when a token is available; every operation here has
// a direct-git fallback, so failures are reported but rarely fatal.
package githost

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Installed returns true if the gh executable is discoverable.
func Installed() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

// Install installs gh through conda's conda-forge channel. It is only
// attempted when conda provisioning is enabled; callers fall back to
// direct authenticated git access on failure.
func Install() error {
	if err := run("conda", "install", "-y", "--channel", "conda-forge", "gh"); err != nil {
		return fmt.Errorf("installing gh: %w", err)
	}
	return nil
}

// AuthLogin authenticates gh with the token and configures it as git's
// credential helper for subsequent git operations.
func AuthLogin(token string) error {
	cmd := exec.Command("gh", "auth", "login", "--with-token")
	cmd.Stdin = strings.NewReader(token)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gh auth login: %w: %s", err, stderr.String())
	}
	if err := run("gh", "auth", "setup-git"); err != nil {
		return fmt.Errorf("gh auth setup-git: %w", err)
	}
	return nil
}

// Clone clones an "org/name" repository to dest using gh.
func Clone(repo, dest string) error {
	if err := run("gh", "repo", "clone", repo, dest); err != nil {
		return fmt.Errorf("gh repo clone %s: %w", repo, err)
	}
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
