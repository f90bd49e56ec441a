package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultVenvName   = "venv"
	DefaultRuntimeDir = "/gantry-runtime"
	DefaultResultsDir = "/results"
)

// Config holds every option the bootstrapper recognizes, resolved once at
// startup from the process environment. Stages receive this struct instead
// of reading ambient environment variables, so the workflow can be driven
// with injected configurations in tests.
type Config struct {
	// Repo is the GitHub repository to clone, as "org/name". Required.
	Repo string
	// Ref is the commit, branch, or tag to check out. Required.
	Ref string
	// Token enables authenticated cloning and git credential setup.
	Token string

	// NoConda disables conda provisioning and environment management.
	NoConda bool
	// NoPython skips the execution-environment stage entirely.
	NoPython bool

	// VenvName is the conda environment name, or a path to an existing
	// environment prefix.
	VenvName string
	// CondaEnvFile is the path to an environment-definition file
	// (environment.yml), if any.
	CondaEnvFile string
	// PipRequirementsFile is the path to a requirements.txt, if any.
	PipRequirementsFile string
	// InstallCmd overrides dependency installation with a verbatim command.
	InstallCmd string
	// PythonVersion pins the python version for newly created environments.
	PythonVersion string

	// RuntimeDir is where the repository is cloned.
	RuntimeDir string
	// ResultsDir is created before handoff; the handed-off command writes
	// its outputs there.
	ResultsDir string
}

// FromEnv builds a Config from the process environment, applying defaults
// for unset optional variables.
func FromEnv() Config {
	cfg := Config{
		Repo:                os.Getenv("GITHUB_REPO"),
		Ref:                 os.Getenv("GIT_REF"),
		Token:               os.Getenv("GITHUB_TOKEN"),
		NoConda:             os.Getenv("NO_CONDA") != "",
		NoPython:            os.Getenv("NO_PYTHON") != "",
		VenvName:            os.Getenv("VENV_NAME"),
		CondaEnvFile:        os.Getenv("CONDA_ENV_FILE"),
		PipRequirementsFile: os.Getenv("PIP_REQUIREMENTS_FILE"),
		InstallCmd:          os.Getenv("INSTALL_CMD"),
		PythonVersion:       os.Getenv("PYTHON_VERSION"),
		RuntimeDir:          os.Getenv("RUNTIME_DIR"),
		ResultsDir:          os.Getenv("RESULTS_DIR"),
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.VenvName == "" {
		c.VenvName = DefaultVenvName
	}
	if c.RuntimeDir == "" {
		c.RuntimeDir = DefaultRuntimeDir
	}
	if c.ResultsDir == "" {
		c.ResultsDir = DefaultResultsDir
	}
}

// Validate checks the required options. It names the missing variable so
// the operator knows what to set.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return fmt.Errorf("GITHUB_REPO is not set")
	}
	if c.Ref == "" {
		return fmt.Errorf("GIT_REF is not set")
	}
	return nil
}

// VenvIsPath reports whether VenvName refers to a filesystem path rather
// than a plain environment name. Conda treats anything containing a path
// separator as a prefix path.
func (c *Config) VenvIsPath() bool {
	return strings.ContainsRune(c.VenvName, filepath.Separator) ||
		strings.ContainsRune(c.VenvName, '/')
}
