package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrToolNotFound is returned when a tool binary cannot be located.
var ErrToolNotFound = errors.New("tool not found")

// Runner executes a tool binary and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// RunError describes a failed tool invocation. Stdout is kept because some
// tools report useful text on failure.
type RunError struct {
	Tool   string
	Stdout string
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("run %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("run %s: %v (stderr: %s)", e.Tool, e.Err, stderr)
}

func (e *RunError) Unwrap() error { return e.Err }

// ExecRunner runs binaries with os/exec.
type ExecRunner struct{}

// Run executes name with args under ctx.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), &RunError{
			Tool:   filepath.Base(name),
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ResolveTool locates a binary. Explicit paths are used as-is when they exist.
// Bare names are looked up in each search dir, then <executable dir>/bin, then PATH.
func ResolveTool(name string, searchDirs []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty tool name", ErrToolNotFound)
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		if isFile(name) {
			return filepath.Abs(name)
		}
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	binary := name
	if runtime.GOOS == "windows" && filepath.Ext(binary) == "" {
		binary += ".exe"
	}

	dirs := append([]string{}, searchDirs...)
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "bin"))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		candidate := filepath.Join(dir, binary)
		if isFile(candidate) {
			return filepath.Abs(candidate)
		}
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s (searched %s and PATH)", ErrToolNotFound, name, strings.Join(dirs, ", "))
	}
	return path, nil
}

// CommandName returns the name an operator types for a configured tool,
// e.g. "/opt/platform-tools/adb.exe" becomes "adb".
func CommandName(tool string) string {
	base := filepath.Base(strings.TrimSpace(tool))
	return strings.TrimSuffix(base, ".exe")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
