package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wisdomikezogwo/beaker-gantry/internal/conda"
	"github.com/wisdomikezogwo/beaker-gantry/internal/config"
	"github.com/wisdomikezogwo/beaker-gantry/internal/git"
	"github.com/wisdomikezogwo/beaker-gantry/internal/logging"
	"github.com/wisdomikezogwo/beaker-gantry/internal/ui"
)

// Clone retry policy: a fixed number of attempts with a constant delay.
// Transient network and auth errors are treated identically.
const (
	cloneAttempts = 5
	cloneDelay    = 10 * time.Second
)

// Filenames that mark the working tree as an installable project.
var projectFiles = []string{"pyproject.toml", "setup.py", "setup.cfg"}

// Options configures a Workflow. Zero-valued tool fields fall back to the
// production implementations that shell out to git, gh, and conda.
type Options struct {
	Config config.Config

	Git   GitClient
	Host  HostCLI
	Conda Toolchain

	// Handoff transfers control to the final command and returns its exit
	// code. The default spawns a child with merged output streams.
	Handoff func(argv []string) (int, error)

	// Out receives stage banners and progress output.
	Out io.Writer

	// NewBackOff builds the inter-attempt delay policy for clone retries.
	// Tests inject a zero-interval policy.
	NewBackOff func() backoff.BackOff
}

// Workflow runs the bootstrap sequence: validate, toolchain and auth,
// clone and checkout, environment provisioning, then handoff.
type Workflow struct {
	cfg     config.Config
	git     GitClient
	host    HostCLI
	conda   Toolchain
	handoff func(argv []string) (int, error)
	out     io.Writer
	backOff func() backoff.BackOff

	// env is the active environment name, empty when conda management is
	// disabled or the python stage is skipped.
	env string
	// ghReady is set once gh is installed and authenticated.
	ghReady bool
	// authed is set once git credentials are configured.
	authed bool
}

// New builds a Workflow, filling in production tools for any left unset.
func New(opts Options) *Workflow {
	w := &Workflow{
		cfg:     opts.Config,
		git:     opts.Git,
		host:    opts.Host,
		conda:   opts.Conda,
		handoff: opts.Handoff,
		out:     opts.Out,
		backOff: opts.NewBackOff,
	}
	if w.git == nil {
		w.git = gitClient{}
	}
	if w.host == nil {
		w.host = hostCLI{}
	}
	if w.conda == nil {
		w.conda = toolchain{}
	}
	if w.handoff == nil {
		w.handoff = Handoff
	}
	if w.out == nil {
		w.out = os.Stderr
	}
	if w.backOff == nil {
		w.backOff = func() backoff.BackOff {
			return backoff.NewConstantBackOff(cloneDelay)
		}
	}
	return w
}

// Run executes the whole workflow and returns the handed-off command's
// exit code. Any error before handoff is fatal; no side effect happens
// before configuration is validated.
func (w *Workflow) Run(command []string) (int, error) {
	if err := w.cfg.Validate(); err != nil {
		return 0, err
	}
	if len(command) == 0 {
		return 0, fmt.Errorf("no command to execute")
	}

	log := logging.GetLogger("bootstrap")
	log.Debug().Str("repo", w.cfg.Repo).Str("ref", w.cfg.Ref).Msg("starting bootstrap")

	if !w.cfg.NoConda {
		if err := w.ensureToolchain(); err != nil {
			return 0, err
		}
	}
	if err := w.setupAuth(); err != nil {
		return 0, err
	}
	if err := w.cloneAndCheckout(); err != nil {
		return 0, err
	}

	if w.cfg.NoPython {
		if err := os.MkdirAll(w.cfg.ResultsDir, 0755); err != nil {
			return 0, fmt.Errorf("creating results directory: %w", err)
		}
	} else {
		if err := w.provisionEnvironment(); err != nil {
			return 0, err
		}
	}

	ui.Banner(w.out, "Handing off to command")
	return w.handoff(w.wrapCommand(command))
}

// ensureToolchain makes conda available, installing it if absent.
// Idempotent: a discoverable conda is a no-op.
func (w *Workflow) ensureToolchain() error {
	if w.conda.Installed() {
		return nil
	}
	ui.Banner(w.out, "Installing conda")
	if err := w.conda.Install(); err != nil {
		return fmt.Errorf("installing conda: %w", err)
	}
	return nil
}

// setupAuth configures git credentials and the gh CLI when a token is
// supplied. A missing token is not an error; the clone falls back to
// anonymous access. A failing gh install is not an error either; the
// clone falls back to direct authenticated git.
func (w *Workflow) setupAuth() error {
	if w.cfg.Token == "" {
		return nil
	}

	ui.Banner(w.out, "Configuring GitHub authentication")
	if err := w.git.ConfigureCredentials(w.cfg.Token); err != nil {
		return fmt.Errorf("configuring git credentials: %w", err)
	}
	if err := w.git.EnsureIdentity(); err != nil {
		return fmt.Errorf("configuring git identity: %w", err)
	}
	w.authed = true

	if w.cfg.NoConda {
		return nil
	}
	if !w.host.Installed() {
		if err := w.host.Install(); err != nil {
			ui.Warnf(w.out, "gh install failed, falling back to direct git access: %v", err)
			return nil
		}
	}
	if err := w.host.AuthLogin(w.cfg.Token); err != nil {
		ui.Warnf(w.out, "gh auth failed, falling back to direct git access: %v", err)
		return nil
	}
	w.ghReady = true
	return nil
}

// cloneAndCheckout retrieves the working tree and pins it to the requested
// ref. The clone is retried up to cloneAttempts with a fixed delay;
// checkout and submodule failures are fatal and never retried.
func (w *Workflow) cloneAndCheckout() error {
	dest := w.cfg.RuntimeDir

	if w.git.IsCloned(dest) {
		ui.Banner(w.out, "Updating existing clone")
		if err := w.git.Fetch(dest); err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
	} else {
		ui.Banner(w.out, "Cloning "+w.cfg.Repo)
		if err := w.cloneWithRetry(dest); err != nil {
			return err
		}
	}

	if err := w.git.Checkout(dest, w.cfg.Ref); err != nil {
		return err
	}
	if err := w.git.SubmoduleUpdate(dest); err != nil {
		return err
	}
	if sha, err := w.git.HeadCommit(dest); err == nil {
		_, _ = fmt.Fprintf(w.out, "checked out %s @ %s\n", w.cfg.Ref, sha)
	}
	return nil
}

// cloneWithRetry picks the preferred clone path (gh, authenticated git,
// anonymous git) and retries it on any failure.
func (w *Workflow) cloneWithRetry(dest string) error {
	var clone func() error
	switch {
	case w.ghReady:
		clone = func() error { return w.host.Clone(w.cfg.Repo, dest) }
	case w.authed:
		url := git.AuthedURL(w.cfg.Repo, w.cfg.Token)
		clone = func() error { return w.git.Clone(url, dest) }
	default:
		url := git.AnonymousURL(w.cfg.Repo)
		clone = func() error { return w.git.Clone(url, dest) }
	}

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			_, _ = fmt.Fprintf(w.out, "clone failed, retrying (attempt %d/%d)\n", attempt, cloneAttempts)
		}
		return clone()
	}
	bo := backoff.WithMaxRetries(w.backOff(), cloneAttempts-1)
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("cloning %s failed after %d attempts: %w", w.cfg.Repo, cloneAttempts, err)
	}
	return nil
}

// provisionEnvironment creates or reuses the execution environment,
// installs dependencies, extends PYTHONPATH, creates the results
// directory, and prints the diagnostic summary.
func (w *Workflow) provisionEnvironment() error {
	if !w.cfg.NoConda {
		if err := w.ensureToolchain(); err != nil {
			return err
		}
		if err := w.ensureEnvironment(); err != nil {
			return err
		}
	}

	if err := w.installDependencies(); err != nil {
		return err
	}
	if err := extendPythonPath(w.cfg.RuntimeDir); err != nil {
		return err
	}
	if err := os.MkdirAll(w.cfg.ResultsDir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	w.printDiagnostics()
	return nil
}

// ensureEnvironment reuses an existing environment or creates a new one.
// A path-like name that does not exist is operator error, not something
// to create.
func (w *Workflow) ensureEnvironment() error {
	name := w.cfg.VenvName
	envFile := w.cfg.CondaEnvFile

	if fileExists(envFile) {
		if declared, err := conda.EnvFileName(envFile); err == nil && declared != "" && declared != name {
			ui.Warnf(w.out, "environment file declares name %q; using %q", declared, name)
		}
	}

	exists, err := w.conda.EnvExists(name)
	if err != nil {
		return err
	}
	if w.cfg.VenvIsPath() && !exists {
		return fmt.Errorf("environment path %s does not exist", name)
	}

	if exists {
		ui.Banner(w.out, "Using existing environment "+name)
		if fileExists(envFile) {
			if err := w.conda.UpdateEnv(name, envFile); err != nil {
				return err
			}
		}
	} else {
		ui.Banner(w.out, "Creating environment "+name)
		switch {
		case fileExists(envFile):
			if err := w.conda.CreateEnvFromFile(name, envFile); err != nil {
				return err
			}
		default:
			if err := w.conda.CreateEnv(name, w.cfg.PythonVersion); err != nil {
				return err
			}
		}
	}

	w.env = name
	return nil
}

// installDependencies evaluates the install precedence: explicit override
// command first, then the project/requirements combinations. A project
// with no declared dependencies installs nothing, which is not an error.
func (w *Workflow) installDependencies() error {
	dir := w.cfg.RuntimeDir

	if w.cfg.InstallCmd != "" {
		ui.Banner(w.out, "Running install command")
		if err := w.conda.Run(w.env, dir, []string{"sh", "-c", w.cfg.InstallCmd}); err != nil {
			return fmt.Errorf("install command: %w", err)
		}
		return nil
	}

	project := hasProjectFile(dir)
	reqs := w.cfg.PipRequirementsFile
	hasReqs := fileExists(reqs)

	switch {
	case project && hasReqs:
		ui.Banner(w.out, "Installing project and requirements")
		return w.conda.PipInstall(w.env, dir, ".", "-r", reqs)
	case project:
		ui.Banner(w.out, "Installing project")
		return w.conda.PipInstall(w.env, dir, ".")
	case hasReqs:
		ui.Banner(w.out, "Installing requirements")
		return w.conda.PipInstall(w.env, dir, "-r", reqs)
	default:
		return nil
	}
}

// printDiagnostics reports the active interpreter and the resolved set of
// installed packages. Failures here are warnings; a missing pip must not
// abort an otherwise prepared environment.
func (w *Workflow) printDiagnostics() {
	ui.Banner(w.out, "Environment summary")
	if info, err := w.conda.PythonInfo(w.env); err == nil {
		_, _ = fmt.Fprintln(w.out, "python", info)
	} else {
		ui.Warnf(w.out, "could not query python: %v", err)
	}
	if pkgs, err := w.conda.Packages(w.env); err == nil {
		_, _ = fmt.Fprintln(w.out, pkgs)
	} else {
		ui.Warnf(w.out, "could not list packages: %v", err)
	}
}

// wrapCommand routes the handoff command through the active environment so
// it sees the installed dependencies.
func (w *Workflow) wrapCommand(command []string) []string {
	if w.env == "" {
		return command
	}
	flag := "-n"
	if strings.ContainsRune(w.env, '/') {
		flag = "-p"
	}
	return append([]string{"conda", "run", "--no-capture-output", flag, w.env}, command...)
}

// extendPythonPath appends dir to PYTHONPATH, preserving any pre-existing
// value as a prefix.
func extendPythonPath(dir string) error {
	value := dir
	if existing := os.Getenv("PYTHONPATH"); existing != "" {
		value = existing + string(os.PathListSeparator) + dir
	}
	if err := os.Setenv("PYTHONPATH", value); err != nil {
		return fmt.Errorf("extending PYTHONPATH: %w", err)
	}
	return nil
}

// hasProjectFile reports whether the working tree contains build metadata
// that makes it pip-installable.
func hasProjectFile(dir string) bool {
	for _, name := range projectFiles {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

