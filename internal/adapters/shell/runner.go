// Package shell runs the external helper commands that drive native reconstruction toolkits.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// stderrTailLines is how much helper stderr is attached to a failure.
const stderrTailLines = 20

// Command is one helper invocation.
type Command struct {
	Argv []string
	Dir  string
	Env  map[string]string
}

// Runner executes helper commands, streaming their output to the logger.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the command and waits for it to exit. Stdout lines are logged as
// info, stderr lines as warnings; the tail of stderr is attached to a failure.
func (r *Runner) Run(ctx context.Context, c Command) error {
	if len(c.Argv) == 0 {
		return zerr.Wrap(domain.ErrEngineCommandFailed, "empty command")
	}

	name := c.Argv[0]
	env := resolveEnvironment(os.Environ(), c.Env)

	// Bare names resolve against the merged PATH; relative paths against Dir.
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Argv[1:]...) //nolint:gosec // configured helper
	cmd.Args[0] = name
	cmd.Dir = c.Dir
	cmd.Env = env

	stdout := &logWriter{logger: r.logger, level: "info"}
	stderr := &logWriter{logger: r.logger, level: "warn", tail: stderrTailLines}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	_ = stdout.Close()
	_ = stderr.Close()
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	wrapped := zerr.With(zerr.Wrap(errors.Join(domain.ErrEngineCommandFailed, err), "command failed"), "command", name)
	wrapped = zerr.With(wrapped, "exit_code", exitCode)
	if tail := stderr.Tail(); tail != "" {
		wrapped = zerr.With(wrapped, "stderr", tail)
	}
	return wrapped
}

// logWriter turns a byte stream into log lines, keeping the last tail lines.
type logWriter struct {
	logger ports.Logger
	level  string
	tail   int

	mu    sync.Mutex
	buf   []byte
	lines []string
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes an unterminated last line.
func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

// Tail returns the retained lines joined by newlines.
func (w *logWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.lines, "\n")
}

// logLine must be called with mu held.
func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")

	if w.tail > 0 {
		w.lines = append(w.lines, msg)
		if len(w.lines) > w.tail {
			w.lines = w.lines[len(w.lines)-w.tail:]
		}
	}

	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}

// resolveEnvironment overlays overrides on the inherited environment. Helpers
// need the caller's toolkit setup (PATH, PYTHONPATH, CUDA_VISIBLE_DEVICES), so
// nothing is filtered.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	order := make([]string, 0, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}
	for k, v := range overrides {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
