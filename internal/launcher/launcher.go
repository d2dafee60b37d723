package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/logging"
)

var (
	// ErrEmptyArgv is returned when there is no program name to run
	ErrEmptyArgv = errors.New("empty argument vector")
	// ErrNotFound is returned when the program cannot be located
	ErrNotFound = errors.New("no such file or directory")
)

// Result describes one finished child process
type Result struct {
	Argv     []string
	Path     string
	Pid      int
	ExitCode int
	Signaled bool
	Signal   syscall.Signal
	Duration time.Duration
}

// Success reports whether the child exited with status 0
func (r *Result) Success() bool {
	return r != nil && !r.Signaled && r.ExitCode == 0
}

// ProcessLauncher starts programs as child processes sharing the shell's
// standard streams and environment
type ProcessLauncher struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	environ  func() []string
	lookPath func(string) (string, error)
	logger   *logging.FieldLogger
}

// Option configures a ProcessLauncher
type Option func(*ProcessLauncher)

// WithEnviron replaces the source of the child environment (os.Environ by default)
func WithEnviron(fn func() []string) Option {
	return func(l *ProcessLauncher) { l.environ = fn }
}

// WithLookPath replaces the program search (exec.LookPath by default)
func WithLookPath(fn func(string) (string, error)) Option {
	return func(l *ProcessLauncher) { l.lookPath = fn }
}

// WithLogger sets the logger used for launch records
func WithLogger(logger *logging.FieldLogger) Option {
	return func(l *ProcessLauncher) { l.logger = logger }
}

// New creates a launcher whose children read stdin and write stdout/stderr
func New(stdin io.Reader, stdout, stderr io.Writer, opts ...Option) *ProcessLauncher {
	l := &ProcessLauncher{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		environ:  os.Environ,
		lookPath: exec.LookPath,
		logger:   logging.Nop().WithFields(nil),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch runs argv and blocks until that child has been waited for.
// Exactly one child exists at a time; its handle is released by Wait.
func (l *ProcessLauncher) Launch(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyArgv
	}
	name := argv[0]
	res := &Result{Argv: append([]string(nil), argv...)}

	path, err := l.lookPath(name)
	if err != nil && strings.Contains(name, "/") && !errors.Is(err, fs.ErrNotExist) {
		// An existing path that cannot run is left for Start to report
		path, err = name, nil
	}
	if err != nil && !errors.Is(err, exec.ErrDot) {
		fmt.Fprintf(l.stderr, "%s: No such file or directory\n", name)
		res.ExitCode = constants.StatusNotFound
		l.logger.Debug("program not found", logging.Fields{"name": name, "error": err.Error()})
		return res, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	res.Path = path

	cmd := exec.CommandContext(ctx, path)
	// Programs found through a relative PATH entry run as execvp would run them
	if errors.Is(cmd.Err, exec.ErrDot) {
		cmd.Err = nil
	}
	cmd.Args = res.Argv
	cmd.Env = l.environ()
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		// The user sees the launch failure; the cause goes to the log
		fmt.Fprintf(l.stderr, "%s: No such file or directory\n", name)
		res.ExitCode = constants.StatusNotExecutable
		l.logger.Debug("program failed to start", logging.Fields{"name": name, "path": path, "error": err.Error()})
		return res, fmt.Errorf("start %s: %w", name, err)
	}
	res.Pid = cmd.Process.Pid
	l.logger.Debug("child started", logging.Fields{"argv": res.Argv, "pid": res.Pid})

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)

	if state := cmd.ProcessState; state != nil {
		res.ExitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Signaled = true
			res.Signal = ws.Signal()
			res.ExitCode = 128 + int(ws.Signal())
		}
	}

	l.logger.Debug("child exited", logging.Fields{
		"pid":      res.Pid,
		"exit":     res.ExitCode,
		"signaled": res.Signaled,
		"duration": res.Duration.String(),
	})

	// A non-zero status is the child's business, not a launch failure
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, fmt.Errorf("wait %s: %w", name, waitErr)
	}
	return res, nil
}
