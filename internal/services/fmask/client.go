package fmask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"gofmask/internal/logging"
	"gofmask/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, shell, command, dir string, stdout, stderr io.Writer) error
}

// Outcome describes how one Fmask invocation ended. A non-zero exit is not
// treated as a failure by the caller; relocation decides whether output exists.
type Outcome struct {
	ExitCode int
	Duration time.Duration
	Err      error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutput redirects progress lines and the tool's own stdout/stderr.
// By default they go to the process's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Client) {
		if stdout != nil {
			c.stdout = stdout
		}
		if stderr != nil {
			c.stderr = stderr
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "fmask")
	}
}

// Client runs the Fmask launcher through a shell.
type Client struct {
	shell   string
	timeout time.Duration
	exec    Executor
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// New constructs a Fmask client. A timeout of zero lets the tool run for as
// long as it needs.
func New(shell string, timeoutSeconds int, opts ...Option) (*Client, error) {
	shell = strings.TrimSpace(shell)
	if shell == "" {
		return nil, errors.New("shell required")
	}
	client := &Client{
		shell:   shell,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logging.NewComponentLogger(nil, "fmask"),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.stdout = lockWriter(client.stdout)
	client.stderr = lockWriter(client.stderr)
	return client, nil
}

// Progress returns the writer progress lines are printed to. Jobs share it, so
// writes are serialized.
func (c *Client) Progress() io.Writer {
	return c.stdout
}

// Run prints the working directory and command line, then runs cmd with
// workDir as the current directory and blocks until it exits.
func (c *Client) Run(ctx context.Context, cmd Command, workDir string, ordinal int) Outcome {
	prefix := Prefix(ordinal)
	line := cmd.String()
	fmt.Fprintf(c.stdout, "%scwd: %s\n", prefix, workDir)
	fmt.Fprintf(c.stdout, "%sshell cmd: %s\n", prefix, line)

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("fmask starting", logging.String("dir", workDir), logging.String("command", line))

	start := time.Now()
	err := c.exec.Run(runCtx, c.shell, line, workDir, c.stdout, c.stderr)
	outcome := Outcome{Duration: time.Since(start)}
	if err == nil {
		logger.Debug("fmask finished", logging.Duration("duration", outcome.Duration))
		return outcome
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		outcome.ExitCode = -1
		outcome.Err = services.Wrap(services.ErrExternalTool, "fmask", "run", fmt.Sprintf("timed out after %s", c.timeout), err)
	case errors.As(err, &exitErr):
		outcome.ExitCode = exitErr.ExitCode()
		outcome.Err = services.Wrap(services.ErrExternalTool, "fmask", "run", fmt.Sprintf("exit status %d", outcome.ExitCode), err)
	default:
		outcome.ExitCode = -1
		outcome.Err = services.Wrap(services.ErrExternalTool, "fmask", "start", "", err)
	}
	// A killed process also reports an ExitError; surface the cancellation.
	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.Err = ctxErr
	}
	return outcome
}

const killGrace = 10 * time.Second

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, shell, command, dir string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, shell, "-c", command) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// The launcher forks the MATLAB runtime; signal the whole group on cancel.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
	cmd.WaitDelay = killGrace
	return cmd.Run()
}

// lockedWriter serializes writes from concurrent jobs. os.File values are
// passed through untouched so child processes inherit the descriptor itself.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func lockWriter(w io.Writer) io.Writer {
	switch w.(type) {
	case *os.File, *lockedWriter:
		return w
	}
	return &lockedWriter{w: w}
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
