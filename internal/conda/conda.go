package conda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// installerURL is the non-interactive Miniconda installer for the current
// platform.
func installerURL() string {
	arch := "x86_64"
	if runtime.GOARCH == "arm64" {
		arch = "aarch64"
	}
	return fmt.Sprintf("https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-%s.sh", arch)
}

// InstallPrefix is where Install places the toolchain.
func InstallPrefix() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/opt/miniconda3"
	}
	return filepath.Join(home, "miniconda3")
}

// Installed returns true if a conda executable is discoverable.
func Installed() bool {
	_, err := exec.LookPath("conda")
	return err == nil
}

// Install downloads the Miniconda installer and runs it non-interactively
// into InstallPrefix, then makes conda discoverable for the remainder of
// the process by prepending the install location to PATH. No shell
// configuration is persisted.
func Install() error {
	prefix := InstallPrefix()
	script, err := downloadInstaller()
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(script) }()

	if err := run(".", "bash", script, "-b", "-p", prefix); err != nil {
		return fmt.Errorf("running miniconda installer: %w", err)
	}
	return addToPath(prefix)
}

// downloadInstaller fetches the installer artifact to a temp file.
func downloadInstaller() (string, error) {
	url := installerURL()
	resp, err := http.Get(url) //nolint:gosec // fixed installer URL
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.CreateTemp("", "miniconda-*.sh")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing installer: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// addToPath prepends the toolchain's binary directories to PATH for this
// process.
func addToPath(prefix string) error {
	entries := []string{
		filepath.Join(prefix, "bin"),
		filepath.Join(prefix, "condabin"),
	}
	path := strings.Join(entries, string(os.PathListSeparator))
	if existing := os.Getenv("PATH"); existing != "" {
		path = path + string(os.PathListSeparator) + existing
	}
	return os.Setenv("PATH", path)
}

// EnvExists reports whether a conda environment exists, by name or by
// prefix path.
func EnvExists(name string) (bool, error) {
	if strings.ContainsRune(name, '/') {
		info, err := os.Stat(name)
		return err == nil && info.IsDir(), nil
	}
	out, err := output(".", "conda", "env", "list", "--json")
	if err != nil {
		return false, fmt.Errorf("listing environments: %w", err)
	}
	var envs struct {
		Envs []string `json:"envs"`
	}
	if err := json.Unmarshal([]byte(out), &envs); err != nil {
		return false, fmt.Errorf("parsing environment list: %w", err)
	}
	for _, e := range envs.Envs {
		if filepath.Base(e) == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateEnv creates a new environment. pythonVersion may be empty, in
// which case the default unpinned python is installed.
func CreateEnv(name, pythonVersion string) error {
	python := "python"
	if pythonVersion != "" {
		python = "python=" + pythonVersion
	}
	args := append([]string{"conda", "create", "-y"}, envFlag(name)...)
	args = append(args, python)
	if err := run(".", args...); err != nil {
		return fmt.Errorf("creating environment %s: %w", name, err)
	}
	return nil
}

// CreateEnvFromFile creates a new environment from an environment
// definition file.
func CreateEnvFromFile(name, file string) error {
	args := append([]string{"conda", "env", "create", "-y"}, envFlag(name)...)
	args = append(args, "-f", file)
	if err := run(".", args...); err != nil {
		return fmt.Errorf("creating environment %s from %s: %w", name, file, err)
	}
	return nil
}

// UpdateEnv applies an environment definition file to an existing
// environment.
func UpdateEnv(name, file string) error {
	args := append([]string{"conda", "env", "update"}, envFlag(name)...)
	args = append(args, "-f", file)
	if err := run(".", args...); err != nil {
		return fmt.Errorf("updating environment %s from %s: %w", name, file, err)
	}
	return nil
}

// Run executes argv inside the named environment, in dir. An empty env
// runs the command directly against the system toolchain, used when conda
// management is disabled.
func Run(env, dir string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	argv = wrap(env, argv)
	return run(dir, argv...)
}

// PipInstall runs pip install with the given arguments inside env, in dir.
func PipInstall(env, dir string, args ...string) error {
	argv := append([]string{"pip", "install"}, args...)
	if err := Run(env, dir, argv); err != nil {
		return fmt.Errorf("pip install: %w", err)
	}
	return nil
}

// PythonInfo returns the interpreter version and location for env.
func PythonInfo(env string) (string, error) {
	out, err := outputArgv(env, []string{"python", "-c",
		"import sys; print(sys.version.split()[0], sys.executable)"})
	if err != nil {
		return "", fmt.Errorf("querying python: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Packages returns the fully resolved set of installed packages in env.
func Packages(env string) (string, error) {
	out, err := outputArgv(env, []string{"pip", "freeze"})
	if err != nil {
		return "", fmt.Errorf("listing packages: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// envFlag selects -p for prefix paths and -n for names.
func envFlag(name string) []string {
	if strings.ContainsRune(name, '/') {
		return []string{"-p", name}
	}
	return []string{"-n", name}
}

// wrap prefixes argv with `conda run` for the environment, or returns it
// unchanged when no environment is active.
func wrap(env string, argv []string) []string {
	if env == "" {
		return argv
	}
	prefix := append([]string{"conda", "run", "--no-capture-output"}, envFlag(env)...)
	return append(prefix, argv...)
}

func outputArgv(env string, argv []string) (string, error) {
	return output(".", wrap(env, argv)...)
}

// run executes a command in dir with inherited standard streams.
func run(dir string, argv ...string) error {
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv is built from fixed tool invocations
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// output executes a command and returns its stdout. Stderr is captured
// and included in the error message on failure.
func output(dir string, argv ...string) (string, error) {
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv is built from fixed tool invocations
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", strings.Join(argv, " "), err, stderr.String())
	}
	return stdout.String(), nil
}
