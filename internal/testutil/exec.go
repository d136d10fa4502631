package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/hbjs97/venv/internal/cmdexec"
)

// Response represents a pre-configured command response for FakeCommander.
type Response struct {
	Output []byte
	Err    error
}

// FakeCommander returns pre-configured responses for testing.
// Responses are keyed by "name arg1 arg2 ..." format.
// If no exact match is found, it tries prefix matching.
type FakeCommander struct {
	// Responses maps command strings to their responses.
	// Key format: "command arg1 arg2" (e.g., "python --version").
	Responses map[string]Response

	// Calls records all commands that were executed, in order.
	Calls []string

	// OnRun, if set, is invoked for every command before the response is looked up.
	// Tests use it to observe the environment the command would inherit.
	OnRun func(fullCmd string)

	// DefaultResponse is returned when no matching response is found.
	// If nil, an error is returned for unmatched commands.
	DefaultResponse *Response
}

var _ cmdexec.Commander = (*FakeCommander)(nil)

// NewFakeCommander creates a FakeCommander with an empty response map.
func NewFakeCommander() *FakeCommander {
	return &FakeCommander{
		Responses: make(map[string]Response),
	}
}

// Register adds a response for the given command key.
func (c *FakeCommander) Register(key string, output string, err error) {
	c.Responses[key] = Response{
		Output: []byte(output),
		Err:    err,
	}
}

// Run looks up the command in Responses and returns the matching response.
func (c *FakeCommander) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	fullCmd := name
	if len(args) > 0 {
		fullCmd = name + " " + strings.Join(args, " ")
	}

	c.Calls = append(c.Calls, fullCmd)
	if c.OnRun != nil {
		c.OnRun(fullCmd)
	}

	// Exact match first.
	if resp, ok := c.Responses[fullCmd]; ok {
		return resp.Output, resp.Err
	}

	// Try prefix matching (longest prefix wins).
	bestKey := ""
	for key := range c.Responses {
		if strings.HasPrefix(fullCmd, key) && len(key) > len(bestKey) {
			bestKey = key
		}
	}
	if bestKey != "" {
		resp := c.Responses[bestKey]
		return resp.Output, resp.Err
	}

	// Default response.
	if c.DefaultResponse != nil {
		return c.DefaultResponse.Output, c.DefaultResponse.Err
	}

	return nil, fmt.Errorf("FakeCommander: no response registered for %q", fullCmd)
}

// RunAttached delegates to Run and writes the output to stdio.Out.
func (c *FakeCommander) RunAttached(ctx context.Context, stdio cmdexec.Stdio, name string, args ...string) error {
	out, err := c.Run(ctx, name, args...)
	if stdio.Out != nil && len(out) > 0 {
		stdio.Out.Write(out)
	}
	return err
}

// Called returns true if a command matching the given prefix was executed.
func (c *FakeCommander) Called(prefix string) bool {
	for _, call := range c.Calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

// CallCount returns the number of times a command matching the given prefix was executed.
func (c *FakeCommander) CallCount(prefix string) int {
	count := 0
	for _, call := range c.Calls {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}

// FakeExecer records Exec calls instead of replacing the process.
type FakeExecer struct {
	// Paths maps file names to resolved paths for LookPath.
	Paths map[string]string

	// SearchPath holds the pathList of the last LookPath call.
	SearchPath string

	// Argv0, Argv and Env hold the arguments of the last Exec call.
	Argv0 string
	Argv  []string
	Env   []string

	// Err is returned by Exec.
	Err error
}

var _ cmdexec.Execer = (*FakeExecer)(nil)

// LookPath resolves file from Paths.
func (e *FakeExecer) LookPath(file, pathList string) (string, error) {
	e.SearchPath = pathList
	if p, ok := e.Paths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("FakeExecer: %q not found", file)
}

// Exec records its arguments and returns Err.
func (e *FakeExecer) Exec(argv0 string, argv []string, envv []string) error {
	e.Argv0 = argv0
	e.Argv = argv
	e.Env = envv
	return e.Err
}
