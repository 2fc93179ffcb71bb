// Package support provides the godog step definitions for the pocrop CLI
// acceptance suite.
package support

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pocrop/cmd/pocrop/cmd"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastArgs     []string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastExitCode int

	// TempDir holds every file a scenario creates.
	TempDir string
}

// NewTestContext creates a context with a fresh temporary directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "pocrop-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{TempDir: tempDir}, nil
}

// Cleanup removes the scenario's temporary directory.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// Path resolves a scenario file name inside the temporary directory.
func (testCtx *TestContext) Path(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}

// expand replaces every "@name" token with the path of that scenario file.
func (testCtx *TestContext) expand(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if name, ok := strings.CutPrefix(f, "@"); ok {
			fields[i] = testCtx.Path(name)
		}
	}
	return strings.Join(fields, " ")
}

// RunCommand executes pocrop in-process with a fresh command tree.
func (testCtx *TestContext) RunCommand(args ...string) {
	root := cmd.NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	testCtx.LastArgs = args
	testCtx.LastError = root.Execute()
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastExitCode = 0
	if testCtx.LastError != nil {
		testCtx.LastExitCode = 1
	}
}
