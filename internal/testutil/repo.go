package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreateBareRepo creates a bare git repository with an initial commit in a temp directory.
// Returns the path to the bare repo.
func CreateBareRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := initWorkRepo(t, dir)
	Run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithTag creates a bare repo whose initial commit carries
// the given tag, for exact-ref checkout tests.
func CreateBareRepoWithTag(t *testing.T, tag string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := initWorkRepo(t, dir)
	Run(t, work, "git", "tag", tag)
	Run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithSubmodule creates a bare repo containing a pinned
// submodule at path "sub". IsolateGitConfig must have been called so the
// file-protocol submodule is permitted.
func CreateBareRepoWithSubmodule(t *testing.T) string {
	t.Helper()
	subBare := CreateBareRepo(t)

	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := initWorkRepo(t, dir)
	Run(t, work, "git", "submodule", "add", subBare, "sub")
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "add submodule")
	Run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// IsolateGitConfig points HOME at a temp directory and writes a global git
// config there, so tests never read or mutate the developer's real
// configuration. File-protocol submodules are allowed for fixtures.
func IsolateGitConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	Run(t, home, "git", "config", "--global", "protocol.file.allow", "always")
	return home
}

// initWorkRepo creates a working repo with one commit on main under dir.
func initWorkRepo(t *testing.T, dir string) string {
	t.Helper()
	work := filepath.Join(dir, "work")
	Run(t, dir, "git", "init", "-b", "main", work)
	Run(t, work, "git", "config", "user.email", "test@example.com")
	Run(t, work, "git", "config", "user.name", "Test")

	readme := filepath.Join(work, "README.md")
	if err := os.WriteFile(readme, []byte("# test\n"), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "initial commit")
	return work
}

// Run executes a command in dir, failing the test on error.
func Run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
