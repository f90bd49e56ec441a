package bootstrap

import (
	"github.com/wisdomikezogwo/beaker-gantry/internal/conda"
	"github.com/wisdomikezogwo/beaker-gantry/internal/git"
	"github.com/wisdomikezogwo/beaker-gantry/internal/githost"
)

// GitClient covers the git operations the workflow performs. The
// production implementation shells out to git; tests substitute fakes that
// record calls and return scripted outcomes.
type GitClient interface {
	IsCloned(dir string) bool
	Clone(url, dest string) error
	Fetch(dir string) error
	Checkout(dir, ref string) error
	SubmoduleUpdate(dir string) error
	HeadCommit(dir string) (string, error)
	ConfigureCredentials(token string) error
	EnsureIdentity() error
}

// HostCLI covers the GitHub CLI operations used for authenticated clones.
type HostCLI interface {
	Installed() bool
	Install() error
	AuthLogin(token string) error
	Clone(repo, dest string) error
}

// Toolchain covers the conda and pip operations the workflow performs.
// An empty env argument means "no managed environment": commands run
// against the system toolchain.
type Toolchain interface {
	Installed() bool
	Install() error
	EnvExists(name string) (bool, error)
	CreateEnv(name, pythonVersion string) error
	CreateEnvFromFile(name, file string) error
	UpdateEnv(name, file string) error
	Run(env, dir string, argv []string) error
	PipInstall(env, dir string, args ...string) error
	PythonInfo(env string) (string, error)
	Packages(env string) (string, error)
}

type gitClient struct{}

func (gitClient) IsCloned(dir string) bool                { return git.IsCloned(dir) }
func (gitClient) Clone(url, dest string) error            { return git.Clone(url, dest) }
func (gitClient) Fetch(dir string) error                  { return git.Fetch(dir) }
func (gitClient) Checkout(dir, ref string) error          { return git.Checkout(dir, ref) }
func (gitClient) SubmoduleUpdate(dir string) error        { return git.SubmoduleUpdate(dir) }
func (gitClient) HeadCommit(dir string) (string, error)   { return git.HeadCommit(dir) }
func (gitClient) ConfigureCredentials(token string) error { return git.ConfigureCredentials(token) }
func (gitClient) EnsureIdentity() error                   { return git.EnsureIdentity() }

type hostCLI struct{}

func (hostCLI) Installed() bool               { return githost.Installed() }
func (hostCLI) Install() error                { return githost.Install() }
func (hostCLI) AuthLogin(token string) error  { return githost.AuthLogin(token) }
func (hostCLI) Clone(repo, dest string) error { return githost.Clone(repo, dest) }

type toolchain struct{}

func (toolchain) Installed() bool                      { return conda.Installed() }
func (toolchain) Install() error                       { return conda.Install() }
func (toolchain) EnvExists(name string) (bool, error)  { return conda.EnvExists(name) }
func (toolchain) CreateEnv(name, version string) error { return conda.CreateEnv(name, version) }
func (toolchain) CreateEnvFromFile(name, file string) error {
	return conda.CreateEnvFromFile(name, file)
}
func (toolchain) UpdateEnv(name, file string) error        { return conda.UpdateEnv(name, file) }
func (toolchain) Run(env, dir string, argv []string) error { return conda.Run(env, dir, argv) }
func (toolchain) PipInstall(env, dir string, args ...string) error {
	return conda.PipInstall(env, dir, args...)
}
func (toolchain) PythonInfo(env string) (string, error) { return conda.PythonInfo(env) }
func (toolchain) Packages(env string) (string, error)   { return conda.Packages(env) }
