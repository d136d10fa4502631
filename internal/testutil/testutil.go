// Package testutil provides common test helpers for the venv project.
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/fscheck"
)

// TempEnvRoot creates a temporary environment root with a bin directory
// and returns the root path. It is cleaned up when the test finishes.
func TempEnvRoot(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "venv")
	if err := os.MkdirAll(filepath.Join(root, "bin"), 0755); err != nil {
		t.Fatalf("TempEnvRoot: mkdir failed: %v", err)
	}
	return root
}

// WriteExecutable writes an executable file at dir/name with the given content.
func WriteExecutable(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("WriteExecutable: write failed: %v", err)
	}
	return path
}

// TempConfigFile creates a temporary config.toml with the given content
// and returns its path. The file is automatically cleaned up.
func TempConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempConfigFile: write failed: %v", err)
	}

	return path
}

// FakeChecker answers IsDir from a fixed set of directories.
type FakeChecker struct {
	// Dirs lists the paths that exist as directories.
	Dirs map[string]bool

	// Err, if set, is returned by every IsDir call.
	Err error

	// Checked records every path passed to IsDir, in order.
	Checked []string

	mu sync.Mutex
}

var _ fscheck.Checker = (*FakeChecker)(nil)

// NewFakeChecker creates a FakeChecker where each of dirs exists.
func NewFakeChecker(dirs ...string) *FakeChecker {
	c := &FakeChecker{Dirs: make(map[string]bool, len(dirs))}
	for _, d := range dirs {
		c.Dirs[d] = true
	}
	return c
}

// IsDir reports whether path was registered.
func (c *FakeChecker) IsDir(ctx context.Context, path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Checked = append(c.Checked, path)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.Err != nil {
		return false, c.Err
	}
	return c.Dirs[path], nil
}

// ErrStoreFailure is returned by FailingStore for the configured variable.
var ErrStoreFailure = errors.New("store failure")

// FailingStore wraps a MapStore and fails writes to one variable.
type FailingStore struct {
	*envstore.MapStore

	// FailOn is the variable whose Set/Unset returns ErrStoreFailure.
	FailOn string
}

var _ envstore.Store = (*FailingStore)(nil)

// NewFailingStore creates a FailingStore seeded with vars.
func NewFailingStore(vars map[string]string, failOn string) *FailingStore {
	return &FailingStore{MapStore: envstore.NewMapStore(vars), FailOn: failOn}
}

// Set fails for FailOn and delegates otherwise.
func (s *FailingStore) Set(name, value string) error {
	if name == s.FailOn {
		return ErrStoreFailure
	}
	return s.MapStore.Set(name, value)
}

// Unset fails for FailOn and delegates otherwise.
func (s *FailingStore) Unset(name string) error {
	if name == s.FailOn {
		return ErrStoreFailure
	}
	return s.MapStore.Unset(name)
}
