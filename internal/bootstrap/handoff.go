package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Handoff transfers control to argv. Exec-style process replacement is
// emulated: the command runs as a child inheriting stdin and the process
// environment, its stderr is merged into stdout, termination signals are
// forwarded, and the returned exit code is the child's. The bootstrapper
// emits nothing of its own once the child starts.
func Handoff(argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("no command to execute")
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv is the caller-supplied handoff command
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stdout

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("waiting for %s: %w", argv[0], err)
}
