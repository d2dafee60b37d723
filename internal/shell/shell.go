// Package shell runs the read-resolve-execute loop: it prompts, reads one
// line, tokenizes it, resolves the first token against the builtin registry
// and either runs the builtin or launches an external program.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/quocvuong92/dsh/internal/builtin"
	"github.com/quocvuong92/dsh/internal/config"
	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/display"
	"github.com/quocvuong92/dsh/internal/launcher"
	"github.com/quocvuong92/dsh/internal/logging"
	"github.com/quocvuong92/dsh/internal/syserr"
	"github.com/quocvuong92/dsh/internal/tokenizer"
)

// ErrQuit is returned by Run when a quit signal arrives
var ErrQuit = errors.New("quit signal received")

// Kind classifies a resolved line
type Kind int

const (
	// KindNone is a blank line; nothing runs
	KindNone Kind = iota
	// KindBuiltin names a registry entry
	KindBuiltin
	// KindExternal is handed to the launcher
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindExternal:
		return "external"
	default:
		return "none"
	}
}

// Resolution is computed for one line and discarded after it runs
type Resolution struct {
	Kind    Kind
	Tokens  []string
	Builtin builtin.Descriptor
}

// Args returns the tokens after the command name
func (r Resolution) Args() []string {
	if len(r.Tokens) < 2 {
		return nil
	}
	return r.Tokens[1:]
}

// Shell holds everything that lives for the whole session
type Shell struct {
	cfg       *config.Config
	tokenizer *tokenizer.Tokenizer
	registry  *builtin.Registry
	launcher  launcher.Launcher
	env       *builtin.Env
	stdout    io.Writer
	stderr    io.Writer
	logger    *logging.FieldLogger
	getwd     func() (string, error)
	color     bool
}

// Option configures a Shell
type Option func(*Shell)

// WithOutput sets the streams for prompts, command output and diagnostics
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithLauncher replaces the process launcher
func WithLauncher(l launcher.Launcher) Option {
	return func(s *Shell) { s.launcher = l }
}

// WithLogger sets the session logger
func WithLogger(logger *logging.FieldLogger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithRenderer enables markdown help pages
func WithRenderer(r *display.Renderer) Option {
	return func(s *Shell) { s.env.Renderer = r }
}

// WithProgress enables the cp progress spinner
func WithProgress(fn func(message string) *display.Spinner) Option {
	return func(s *Shell) { s.env.Progress = fn }
}

// WithColor turns the colored prompt on or off
func WithColor(enabled bool) Option {
	return func(s *Shell) { s.color = enabled }
}

// WithGetenv replaces the environment lookup used by builtins
func WithGetenv(fn func(string) string) Option {
	return func(s *Shell) { s.env.Getenv = fn }
}

// New creates a shell for cfg. Unless replaced, output goes to os.Stdout and
// os.Stderr and children inherit os.Stdin.
func New(cfg *config.Config, opts ...Option) *Shell {
	s := &Shell{
		cfg:       cfg,
		tokenizer: tokenizer.New(cfg.Delimiters, cfg.MaxTokens),
		registry:  builtin.NewRegistry(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    logging.Nop().WithFields(nil),
		getwd:     os.Getwd,
		env:       &builtin.Env{Getenv: os.Getenv},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.launcher == nil {
		s.launcher = launcher.New(os.Stdin, s.stdout, s.stderr, launcher.WithLogger(s.logger))
	}

	s.env.Stdout = s.stdout
	s.env.Stderr = s.stderr
	s.env.Launcher = s.launcher
	s.env.Registry = s.registry
	s.env.Home = cfg.Home
	s.env.Logger = s.logger
	return s
}

// Registry returns the builtin table the shell resolves against
func (s *Shell) Registry() *builtin.Registry {
	return s.registry
}

// MaxLineLength returns the byte bound applied to each input line
func (s *Shell) MaxLineLength() int {
	return s.cfg.MaxLineLength
}

// Resolve classifies tokens. A blank line resolves to KindNone; an exact
// registry match to KindBuiltin; anything else to KindExternal.
func (s *Shell) Resolve(tokens []string) Resolution {
	if len(tokens) == 0 {
		return Resolution{Kind: KindNone}
	}
	if d, ok := s.registry.Lookup(tokens[0]); ok {
		return Resolution{Kind: KindBuiltin, Tokens: tokens, Builtin: d}
	}
	return Resolution{Kind: KindExternal, Tokens: tokens}
}

// Execute tokenizes, resolves and runs one line. It reports true when the
// line asked the shell to exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	tokens := s.tokenizer.Tokenize(line)
	res := s.Resolve(tokens)
	if res.Kind == KindNone {
		return false
	}

	s.logger.Info("resolved line", logging.Fields{"kind": res.Kind.String(), "tokens": len(tokens)})
	if s.logger.Enabled(logging.LevelDebug) {
		for i, tok := range tokens {
			s.logger.Debug("token", logging.Fields{"index": i, "value": tok})
		}
	}

	switch res.Kind {
	case KindBuiltin:
		err := res.Builtin.Invoke(ctx, s.env, res.Args())
		if errors.Is(err, builtin.ErrExit) {
			return true
		}
		if err != nil {
			syserr.ReportCommand(s.stderr, res.Builtin.Name, err)
		}
	case KindExternal:
		s.launch(ctx, res.Tokens)
	}
	return false
}

func (s *Shell) launch(ctx context.Context, argv []string) {
	result, err := s.launcher.Launch(ctx, argv)
	if err != nil {
		if !errors.Is(err, launcher.ErrNotFound) {
			s.logger.Warn("launch failed", logging.Fields{"argv": argv, "error": err.Error()})
		}
		return
	}
	s.logger.Info("child finished", logging.Fields{
		"argv":     argv,
		"pid":      result.Pid,
		"exit":     result.ExitCode,
		"duration": result.Duration.Round(time.Millisecond).String(),
	})
}

// Prompt returns the prompt for the current working directory
func (s *Shell) Prompt() string {
	info := s.promptInfo()
	if s.color {
		return FormatColorPrompt(info)
	}
	return FormatPrompt(info)
}

// PlainPrompt returns the prompt without colors
func (s *Shell) PlainPrompt() string {
	return FormatPrompt(s.promptInfo())
}

func (s *Shell) promptInfo() PromptInfo {
	dir, err := s.getwd()
	if err != nil {
		dir = "?"
	}
	return PromptInfo{
		Name:     s.cfg.PromptName,
		User:     s.cfg.User,
		Hostname: s.cfg.Hostname,
		Dir:      dir,
		Root:     s.cfg.IsRoot(),
	}
}

// Run drives PROMPT, READ, TOKENIZE, RESOLVE and EXECUTE until exit, end of
// input or a quit signal. An interrupt abandons the prompt and starts a new
// one; a line already being typed is delivered to the fresh prompt.
func (s *Shell) Run(ctx context.Context, in io.Reader, signals <-chan os.Signal) error {
	reader := newLineReader(in, s.cfg.MaxLineLength)
	defer reader.Close()

	s.logger.Info("session started", logging.Fields{"max_line": s.cfg.MaxLineLength})
	for {
		fmt.Fprint(s.stdout, s.Prompt())

		select {
		case <-ctx.Done():
			return ctx.Err()

		case sig := <-signals:
			if isQuit(sig) {
				return s.quit()
			}
			if isInterrupt(sig) {
				s.logger.Debug("prompt interrupted")
				fmt.Fprintln(s.stdout)
			}

		case l := <-reader.Next():
			reader.Done()
			if l.err != nil {
				if errors.Is(l.err, io.EOF) {
					s.logger.Info("end of input")
					return nil
				}
				return fmt.Errorf("failed to read input: %w", l.err)
			}
			if l.truncated {
				fmt.Fprintf(s.stderr, "%s: input line truncated to %d bytes\n", constants.AppName, s.cfg.MaxLineLength)
			}
			if s.Execute(ctx, l.text) {
				s.logger.Info("session ended")
				return nil
			}
			if quit := drainSignals(signals); quit {
				return s.quit()
			}
		}
	}
}

func (s *Shell) quit() error {
	fmt.Fprintln(s.stderr, "Exiting..")
	s.logger.Info("quit signal received")
	return ErrQuit
}

// drainSignals discards interrupts delivered while a command ran; they were
// meant for the command. It reports whether a quit was among them.
func drainSignals(signals <-chan os.Signal) bool {
	for {
		select {
		case sig := <-signals:
			if isQuit(sig) {
				return true
			}
		default:
			return false
		}
	}
}
