package git

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wisdomikezogwo/beaker-gantry/internal/testutil"
)

func TestCloneAndIsCloned(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	dest := filepath.Join(t.TempDir(), "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if !IsCloned(dest) {
		t.Error("expected IsCloned to be true after clone")
	}
}

func TestClone_createsDestinationParent(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	dest := filepath.Join(t.TempDir(), "nested", "deeper", "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone into nested dest: %v", err)
	}
	if !IsCloned(dest) {
		t.Error("expected clone in nested destination")
	}
}

func TestIsCloned_falseForPlainDir(t *testing.T) {
	if IsCloned(t.TempDir()) {
		t.Error("plain directory should not count as cloned")
	}
}

func TestCheckout_tag(t *testing.T) {
	bare := testutil.CreateBareRepoWithTag(t, "v1.0")
	dest := filepath.Join(t.TempDir(), "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if err := Checkout(dest, "v1.0"); err != nil {
		t.Fatalf("checkout tag: %v", err)
	}
}

func TestCheckout_missingRefFails(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	dest := filepath.Join(t.TempDir(), "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if err := Checkout(dest, "no-such-ref"); err == nil {
		t.Fatal("expected error for missing ref")
	}
}

func TestSubmoduleUpdate(t *testing.T) {
	testutil.IsolateGitConfig(t)
	bare := testutil.CreateBareRepoWithSubmodule(t)
	dest := filepath.Join(t.TempDir(), "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if err := SubmoduleUpdate(dest); err != nil {
		t.Fatalf("submodule update: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "sub", "README.md")); err != nil {
		t.Errorf("submodule content missing: %v", err)
	}
}

func TestHeadCommit(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	dest := filepath.Join(t.TempDir(), "cloned")

	if err := Clone(bare, dest); err != nil {
		t.Fatalf("clone: %v", err)
	}
	sha, err := HeadCommit(dest)
	if err != nil {
		t.Fatalf("head commit: %v", err)
	}
	if len(sha) < 7 || strings.ContainsRune(sha, '\n') {
		t.Errorf("HeadCommit = %q, want a short sha", sha)
	}
}

func TestEnsureIdentity_setsFallbackOnlyWhenUnset(t *testing.T) {
	testutil.IsolateGitConfig(t)

	if err := EnsureIdentity(); err != nil {
		t.Fatalf("ensure identity: %v", err)
	}
	name, err := outputQuiet(".", "config", "--global", "user.name")
	if err != nil {
		t.Fatalf("reading user.name: %v", err)
	}
	if got := strings.TrimSpace(name); got != "gantry" {
		t.Errorf("fallback user.name = %q, want gantry", got)
	}
}

func TestEnsureIdentity_neverOverwrites(t *testing.T) {
	home := testutil.IsolateGitConfig(t)
	testutil.Run(t, home, "git", "config", "--global", "user.name", "Existing User")
	testutil.Run(t, home, "git", "config", "--global", "user.email", "existing@example.com")

	if err := EnsureIdentity(); err != nil {
		t.Fatalf("ensure identity: %v", err)
	}
	name, err := outputQuiet(".", "config", "--global", "user.name")
	if err != nil {
		t.Fatalf("reading user.name: %v", err)
	}
	if got := strings.TrimSpace(name); got != "Existing User" {
		t.Errorf("user.name = %q, existing identity must not be overwritten", got)
	}
}

func TestConfigureCredentials_recordsTokenOnce(t *testing.T) {
	home := testutil.IsolateGitConfig(t)

	for i := 0; i < 2; i++ {
		if err := ConfigureCredentials("tok123"); err != nil {
			t.Fatalf("configure credentials: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(home, ".git-credentials"))
	if err != nil {
		t.Fatalf("reading credential store: %v", err)
	}
	want := "https://tok123@github.com"
	if got := strings.Count(string(data), want); got != 1 {
		t.Errorf("credential record appears %d times, want exactly 1\n%s", got, data)
	}
}

func TestURLConstruction(t *testing.T) {
	if got := AnonymousURL("org/repo"); got != "https://github.com/org/repo" {
		t.Errorf("AnonymousURL = %q", got)
	}
	if got := AuthedURL("org/repo", "tok"); got != "https://tok@github.com/org/repo" {
		t.Errorf("AuthedURL = %q", got)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://secret@github.com/org/repo")
	if strings.Contains(got, "secret") {
		t.Errorf("redactURL leaked the token: %q", got)
	}
	if plain := redactURL("https://github.com/org/repo"); plain != "https://github.com/org/repo" {
		t.Errorf("redactURL changed a tokenless URL: %q", plain)
	}
}
