// Package probe invokes the two external TLS client backends against a
// target and captures their outcome. One backend validates against its
// own bundled trust material; the other defers to the OS trust
// mechanism and can trigger a root auto-install as a side effect.
//
// Faults never escape this package: a missing interpreter or script, a
// spawn failure, or a timeout all come back as a failure Outcome.
package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/druarnfield/rootprobe/internal/logging"
)

// Backend selects one of the two TLS client implementations.
type Backend string

const (
	// BackendOpenSSL validates against a bundled CA set and never
	// consults the OS store. Expected to fail closed on untrusted roots.
	BackendOpenSSL Backend = "openssl"

	// BackendCryptoAPI defers validation to the OS, which on Windows may
	// silently fetch and install the missing root.
	BackendCryptoAPI Backend = "cryptoapi"
)

// DefaultTimeout is the hard ceiling on one backend invocation.
const DefaultTimeout = 30 * time.Second

// ParseBackend maps a selector string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openssl", "a":
		return BackendOpenSSL, nil
	case "cryptoapi", "b":
		return BackendCryptoAPI, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want openssl or cryptoapi)", s)
	}
}

// Script returns the backend's script file name.
func (b Backend) Script() string {
	switch b {
	case BackendCryptoAPI:
		return "requests_test.py"
	default:
		return "ssl_test.py"
	}
}

// Outcome is the result of one backend invocation. Stdout and Stderr
// are returned verbatim whether or not the probe succeeded, so callers
// can always show the diagnostic detail.
type Outcome struct {
	Backend Backend `json:"backend"`
	Success bool    `json:"success"`
	Stdout  string  `json:"stdout"`
	Stderr  string  `json:"stderr"`
	Message string  `json:"message"`
}

// Line is one captured output line, tagged with its source stream.
type Line struct {
	Source string `json:"source"` // "stdout" or "stderr"
	Text   string `json:"text"`
}

// Sink receives captured lines as they arrive from the child process.
type Sink func(Line)

// Runner executes backend probes. ExecRunner spawns real processes;
// MockRunner serves tests.
type Runner interface {
	Run(ctx context.Context, target string, backend Backend) Outcome
}

// ExecRunner resolves and spawns the backend scripts. The candidate
// lists are ordered: the first existing entry wins. Keeping them as
// data means a new deployment layout is a config change, not a code
// change.
type ExecRunner struct {
	// Interpreters are candidate script interpreters. Absolute paths are
	// checked for existence; bare names are resolved via PATH.
	Interpreters []string

	// ScriptDirs are candidate directories holding the backend scripts,
	// production deployment path first, local-development paths after.
	ScriptDirs []string

	// Timeout bounds the child process; DefaultTimeout when zero.
	Timeout time.Duration

	Logger *slog.Logger

	// Sink, when set, receives output lines as they arrive. Calls are
	// serialized across the two stream readers.
	Sink Sink

	sinkMu sync.Mutex
}

// NewExecRunner creates an ExecRunner with the given candidate lists.
func NewExecRunner(interpreters, scriptDirs []string, logger *slog.Logger) *ExecRunner {
	return &ExecRunner{
		Interpreters: interpreters,
		ScriptDirs:   scriptDirs,
		Timeout:      DefaultTimeout,
		Logger:       logger,
	}
}

// Run invokes the selected backend against the target. The child gets
// the target as its sole argument and no interactive stdin; exit code
// zero maps to success.
func (r *ExecRunner) Run(ctx context.Context, target string, backend Backend) Outcome {
	fail := func(message string) Outcome {
		return Outcome{Backend: backend, Success: false, Message: message}
	}

	interpreter, err := r.resolveInterpreter()
	if err != nil {
		return fail(err.Error())
	}

	script, err := r.resolveScript(backend)
	if err != nil {
		return fail(err.Error())
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, interpreter, script, target)
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fail(fmt.Sprintf("capturing stdout: %v", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fail(fmt.Sprintf("capturing stderr: %v", err))
	}

	r.log().Info("starting probe",
		slog.String("backend", string(backend)),
		slog.String("interpreter", interpreter),
		slog.String("script", script),
		slog.String("target", target),
	)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fail(fmt.Sprintf("starting %s: %v", interpreter, err))
	}

	var (
		wg     sync.WaitGroup
		stdout []string
		stderr []string
	)
	wg.Add(2)
	go r.drain(stdoutPipe, "stdout", &stdout, &wg)
	go r.drain(stderrPipe, "stderr", &stderr, &wg)
	wg.Wait()

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	outcome := Outcome{
		Backend: backend,
		Stdout:  strings.Join(stdout, "\n"),
		Stderr:  strings.Join(stderr, "\n"),
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome.Message = fmt.Sprintf("probe timed out after %s; process terminated", timeout)
		r.log().Error("probe timed out",
			slog.String("backend", string(backend)),
			slog.Duration("timeout", timeout),
		)
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			outcome.Message = fmt.Sprintf("backend exited with code %d", exitErr.ExitCode())
		} else {
			outcome.Message = fmt.Sprintf("running backend: %v", waitErr)
		}
		r.log().Info("probe failed",
			slog.String("backend", string(backend)),
			slog.Duration("elapsed", elapsed),
			slog.String("error", waitErr.Error()),
		)
	default:
		outcome.Success = true
		outcome.Message = "backend exited successfully"
		r.log().Info("probe succeeded",
			slog.String("backend", string(backend)),
			slog.Duration("elapsed", elapsed),
		)
	}

	return outcome
}

// drain reads lines from one child stream, appending them to dst and
// forwarding each to the sink as it arrives.
func (r *ExecRunner) drain(pipe io.Reader, source string, dst *[]string, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		*dst = append(*dst, line)
		if r.Sink != nil {
			r.sinkMu.Lock()
			r.Sink(Line{Source: source, Text: line})
			r.sinkMu.Unlock()
		}
	}
}

// resolveInterpreter finds the first usable interpreter candidate.
// Paths are checked for existence; bare command names go through PATH.
func (r *ExecRunner) resolveInterpreter() (string, error) {
	for _, cand := range r.Interpreters {
		if strings.ContainsRune(cand, os.PathSeparator) || filepath.IsAbs(cand) {
			if _, err := os.Stat(cand); err == nil {
				return cand, nil
			}
			continue
		}
		if path, err := exec.LookPath(cand); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no interpreter found (tried %s)", strings.Join(r.Interpreters, ", "))
}

// resolveScript finds the backend's script in the first candidate
// directory that holds it.
func (r *ExecRunner) resolveScript(backend Backend) (string, error) {
	name := backend.Script()
	for _, dir := range r.ScriptDirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("script %s not found (tried %s)", name, strings.Join(r.ScriptDirs, ", "))
}

func (r *ExecRunner) log() *slog.Logger {
	if r.Logger == nil {
		return slog.New(logging.NopHandler{})
	}
	return r.Logger
}

// MockRunner is a test double returning pre-configured outcomes keyed
// by "backend target".
type MockRunner struct {
	Outcomes map[string]Outcome
	Calls    []string
}

func (m *MockRunner) Run(ctx context.Context, target string, backend Backend) Outcome {
	key := string(backend) + " " + target
	m.Calls = append(m.Calls, key)

	if outcome, ok := m.Outcomes[key]; ok {
		return outcome
	}
	return Outcome{
		Backend: backend,
		Success: false,
		Message: fmt.Sprintf("unexpected probe: %q", key),
	}
}
