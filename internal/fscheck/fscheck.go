// Package fscheck answers filesystem questions asked during activation.
package fscheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Checker abstracts directory existence checks.
type Checker interface {
	// IsDir reports whether path exists and is a directory.
	// A missing path is (false, nil); other stat failures are returned.
	IsDir(ctx context.Context, path string) (bool, error)
}

// OSChecker stats the real filesystem.
type OSChecker struct{}

var _ Checker = (*OSChecker)(nil)

// IsDir checks ctx before calling os.Stat.
func (c *OSChecker) IsDir(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("fscheck.IsDir: %w", err)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fscheck.IsDir: %w", err)
	}
	return info.IsDir(), nil
}

// IsExecutable reports whether path is a regular file with any execute bit set.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}
