package git

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Fallback committer identity, set only when none is configured.
const (
	fallbackUserName  = "gantry"
	fallbackUserEmail = "gantry@localhost"
)

// AnonymousURL returns the unauthenticated clone URL for an "org/name"
// repository identifier.
func AnonymousURL(repo string) string {
	return "https://github.com/" + repo
}

// AuthedURL returns a clone URL with the token embedded, for
// non-interactive authenticated access.
func AuthedURL(repo, token string) string {
	return "https://" + token + "@github.com/" + repo
}

// Clone clones a repository to dest. The destination's parent is created
// if absent.
func Clone(url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating clone destination: %w", err)
	}
	if err := run(".", "clone", url, dest); err != nil {
		return fmt.Errorf("cloning %s: %w", redactURL(url), err)
	}
	return nil
}

// Fetch runs git fetch in the given repo directory.
func Fetch(repoDir string) error {
	return run(repoDir, "fetch", "--prune")
}

// Checkout checks out the given ref. The ref must already exist; a missing
// ref is an error, never created.
func Checkout(repoDir, ref string) error {
	if err := run(repoDir, "checkout", ref); err != nil {
		return fmt.Errorf("checkout %s: %w", ref, err)
	}
	return nil
}

// SubmoduleUpdate initializes and updates all submodules recursively to
// the commits pinned by the checked-out tree.
func SubmoduleUpdate(repoDir string) error {
	if err := run(repoDir, "submodule", "update", "--init", "--recursive"); err != nil {
		return fmt.Errorf("submodule update: %w", err)
	}
	return nil
}

// HeadCommit returns the short SHA of HEAD.
func HeadCommit(repoDir string) (string, error) {
	out, err := output(repoDir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsCloned returns true if the directory is a git repository.
func IsCloned(repoDir string) bool {
	info, err := os.Stat(filepath.Join(repoDir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// ConfigureCredentials enables the credential store and records the token
// for github.com, so subsequent git operations are non-interactive.
func ConfigureCredentials(token string) error {
	if err := runQuiet(".", "config", "--global", "credential.helper", "store"); err != nil {
		return fmt.Errorf("enabling credential store: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	return appendCredential(filepath.Join(home, ".git-credentials"), "https://"+token+"@github.com")
}

// appendCredential adds a credential record to the store file unless an
// identical record is already present.
func appendCredential(path, record string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading credential store: %w", err)
	}
	for _, line := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(line) == record {
			return nil
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(record + "\n"); err != nil {
		return fmt.Errorf("writing credential store: %w", err)
	}
	return nil
}

// EnsureIdentity sets a global fallback user.name/user.email if they are
// not configured. An existing identity is never overwritten.
func EnsureIdentity() error {
	if _, err := outputQuiet(".", "config", "--global", "user.name"); err != nil {
		if err2 := runQuiet(".", "config", "--global", "user.name", fallbackUserName); err2 != nil {
			return err2
		}
	}
	if _, err := outputQuiet(".", "config", "--global", "user.email"); err != nil {
		if err2 := runQuiet(".", "config", "--global", "user.email", fallbackUserEmail); err2 != nil {
			return err2
		}
	}
	return nil
}

// redactURL strips an embedded token from a clone URL for error messages.
func redactURL(url string) string {
	at := strings.Index(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}

// run executes a git command in the given directory.
func run(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// output executes a git command and returns its stdout.
func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// runQuiet executes a git command without printing stdout.
// Stderr is captured and included in the error message on failure.
func runQuiet(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// outputQuiet executes a git command and returns its stdout without printing to the console.
func outputQuiet(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}
