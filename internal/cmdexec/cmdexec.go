// Package cmdexec abstracts external command execution for testability.
// Production code uses the Commander and Execer interfaces; tests inject
// FakeCommander and FakeExecer from testutil.
package cmdexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hbjs97/venv/internal/fscheck"
)

// Commander abstracts external command execution.
// Child processes inherit the current process environment, so commands
// started while an environment is active see its PATH and VIRTUAL_ENV.
type Commander interface {
	// Run executes an external command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunAttached executes an external command with the given standard streams.
	RunAttached(ctx context.Context, stdio Stdio, name string, args ...string) error
}

// Stdio bundles the standard streams handed to an attached command.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RealCommander executes actual external commands via os/exec.
type RealCommander struct{}

var _ Commander = (*RealCommander)(nil)

// Run executes the command using os/exec.CommandContext.
func (c *RealCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// RunAttached executes the command with stdio wired to the given streams.
func (c *RealCommander) RunAttached(ctx context.Context, stdio Stdio, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return cmd.Run()
}

// Execer abstracts replacing the current process image.
type Execer interface {
	// LookPath resolves file against pathList, a PATH-style directory list.
	LookPath(file, pathList string) (string, error)

	// Exec replaces the current process. It only returns on failure.
	Exec(argv0 string, argv []string, envv []string) error
}

// RealExecer searches PATH itself and replaces the process with syscall.Exec.
type RealExecer struct{}

var _ Execer = (*RealExecer)(nil)

// ErrNotFound is returned by RealExecer.LookPath when no executable matches.
var ErrNotFound = errors.New("executable file not found")

// LookPath searches pathList the way a shell would for the exec target.
// A file containing a slash is checked as given. Empty list entries mean the working directory.
func (e *RealExecer) LookPath(file, pathList string) (string, error) {
	if strings.Contains(file, "/") {
		if fscheck.IsExecutable(file) {
			return file, nil
		}
		return "", fmt.Errorf("cmdexec.LookPath(%s): %w", file, ErrNotFound)
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			dir = "."
		}
		if path := filepath.Join(dir, file); fscheck.IsExecutable(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("cmdexec.LookPath(%s): %w in PATH", file, ErrNotFound)
}

// Exec wraps syscall.Exec.
func (e *RealExecer) Exec(argv0 string, argv []string, envv []string) error {
	return syscall.Exec(argv0, argv, envv)
}
