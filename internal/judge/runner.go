package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"go.uber.org/zap"
)

const (
	maxCapturedOutput = 1 << 20 // 1MiB of stdout/stderr each
	judgePath         = "/usr/local/bin:/usr/bin:/bin"
)

// interpreterRunner runs candidate code through a real interpreter in a
// throwaway working directory with a cleared environment. Every Run gets
// its own process group so nothing survives the kill.
type interpreterRunner struct {
	interpreter string
	filename    string
}

func PythonRunner() Runner {
	return &interpreterRunner{interpreter: "python3", filename: "main.py"}
}

func JavaScriptRunner() Runner {
	return &interpreterRunner{interpreter: "node", filename: "main.js"}
}

// DefaultRunners maps the supported submission languages to their runners.
func DefaultRunners() map[string]Runner {
	return map[string]Runner{
		"python":     PythonRunner(),
		"javascript": JavaScriptRunner(),
	}
}

func (r *interpreterRunner) Run(ctx context.Context, code, input string, limits Limits) Execution {
	start := time.Now()

	dir, err := os.MkdirTemp("", "codeduel-judge-*")
	if err != nil {
		return Execution{
			Outcome: entities.OutcomeRuntimeError,
			Error:   fmt.Sprintf("sandbox setup failed: %v", err),
		}
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, r.filename)
	if err := os.WriteFile(source, []byte(code), 0o600); err != nil {
		return Execution{
			Outcome: entities.OutcomeRuntimeError,
			Error:   fmt.Sprintf("sandbox setup failed: %v", err),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, limits.WallClock)
	defer cancel()

	// ulimit -v caps the address space; interpreters that outgrow it die
	// with a memory fault instead of dragging the host down.
	script := fmt.Sprintf("ulimit -v %d; exec %s %s",
		limits.MemoryMB*1024, r.interpreter, source)
	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", script)
	cmd.Dir = dir
	cmd.Env = []string{"PATH=" + judgePath}
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr cappedBuffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if runErr == nil {
		return Execution{Output: stdout.String(), RuntimeMs: elapsed}
	}
	return Execution{
		Outcome:   classify(runCtx, runErr, stderr.String()),
		Error:     strings.TrimSpace(stderr.String()),
		RuntimeMs: elapsed,
	}
}

func classify(runCtx context.Context, runErr error, stderr string) entities.VerdictOutcome {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return entities.OutcomeTimeLimitExceeded
	}
	if isMemoryFault(runErr, stderr) {
		return entities.OutcomeMemoryLimitExceeded
	}
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		// Interpreter could not start at all.
		logging.Warn("judge runner start failure", zap.Error(runErr))
	}
	return entities.OutcomeRuntimeError
}

func isMemoryFault(runErr error, stderr string) bool {
	if strings.Contains(stderr, "MemoryError") ||
		strings.Contains(stderr, "heap out of memory") ||
		strings.Contains(stderr, "Cannot allocate memory") {
		return true
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return status.Signaled() && status.Signal() == syscall.SIGKILL
		}
	}
	return false
}

// cappedBuffer keeps the first maxCapturedOutput bytes and drops the rest,
// so a print loop cannot balloon the verdict.
type cappedBuffer struct {
	buf bytes.Buffer
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := maxCapturedOutput - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
