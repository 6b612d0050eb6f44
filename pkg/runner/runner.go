// Package runner drives the external container runtime: docker compose
// invocations for lifecycle operations and the engine API for the
// preflight daemon check.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/n8nkit/n8nctl/pkg/log"
)

// ComposeRunner invokes docker compose for a single project directory.
// The runtime's exit status is surfaced verbatim; no retries.
type ComposeRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	logger log.Logger

	// lookPath and runCmd are swappable for tests.
	lookPath func(string) (string, error)
	runCmd   func(*exec.Cmd) error
}

// NewComposeRunner creates a runner rooted at the installation directory.
func NewComposeRunner(dir string, logger log.Logger) *ComposeRunner {
	if logger == nil {
		logger = log.GetDefaultLogger().WithComponent("compose-runner")
	}
	return &ComposeRunner{
		Dir:      dir,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		logger:   logger,
		lookPath: exec.LookPath,
		runCmd:   func(c *exec.Cmd) error { return c.Run() },
	}
}

// BinaryAvailable reports whether a docker binary is on PATH.
func (r *ComposeRunner) BinaryAvailable() bool {
	_, err := r.lookPath("docker")
	return err == nil
}

// Run executes `docker compose <args>` in the project directory.
func (r *ComposeRunner) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := r.runCmd(cmd); err != nil {
		return fmt.Errorf("docker compose %s: %w", args[0], err)
	}
	return nil
}

// Down stops the stack. It tries the compose plugin first and falls back
// to the legacy docker-compose binary; both failing means nothing was
// running, which the caller treats as non-fatal.
func (r *ComposeRunner) Down(ctx context.Context) error {
	err := r.Run(ctx, "down")
	if err == nil {
		return nil
	}
	r.logger.Debug("compose plugin down failed, trying legacy binary", log.Err(err))

	if _, lookErr := r.lookPath("docker-compose"); lookErr != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "docker-compose", "down")
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if legacyErr := r.runCmd(cmd); legacyErr != nil {
		return fmt.Errorf("docker compose down: %w (legacy fallback: %v)", err, legacyErr)
	}
	return nil
}

// Build builds the stack images.
func (r *ComposeRunner) Build(ctx context.Context) error {
	return r.Run(ctx, "build")
}

// Up starts the stack detached.
func (r *ComposeRunner) Up(ctx context.Context) error {
	return r.Run(ctx, "up", "-d")
}
