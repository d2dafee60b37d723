package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
	"golang.org/x/term"

	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/logging"
	"github.com/quocvuong92/dsh/internal/shell"
)

const (
	keyInterrupt = 0x03
	keyEndOfText = 0x04
)

// lineEditor returns one edited line per call
type lineEditor interface {
	Input() string
}

// keyReader sits between the terminal and the line editor. An interrupt
// signal becomes a Ctrl-C keystroke so the editor drops the line and draws
// a fresh prompt. It also remembers whether the last keystroke was Ctrl-D,
// the only way an empty result from the editor means end of input.
type keyReader struct {
	prompt.Reader
	interrupts chan struct{}

	mu       sync.Mutex
	lastWasD bool
}

func newKeyReader(r prompt.Reader) *keyReader {
	return &keyReader{Reader: r, interrupts: make(chan struct{}, 1)}
}

// Interrupt queues a Ctrl-C for the next read. Repeats collapse into one.
func (r *keyReader) Interrupt() {
	select {
	case r.interrupts <- struct{}{}:
	default:
	}
}

func (r *keyReader) Read(p []byte) (int, error) {
	select {
	case <-r.interrupts:
		p[0] = keyInterrupt
		r.record(p[:1])
		return 1, nil
	default:
	}
	n, err := r.Reader.Read(p)
	if n > 0 {
		r.record(p[:n])
	}
	return n, err
}

func (r *keyReader) record(keys []byte) {
	r.mu.Lock()
	r.lastWasD = bytes.Equal(keys, []byte{keyEndOfText})
	r.mu.Unlock()
}

// EndOfInput reports whether the editor last saw a lone Ctrl-D
func (r *keyReader) EndOfInput() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastWasD
}

// reset forgets keystrokes and interrupts from before a new line
func (r *keyReader) reset() {
	r.mu.Lock()
	r.lastWasD = false
	r.mu.Unlock()
	select {
	case <-r.interrupts:
	default:
	}
}

// InteractiveSession runs the shell behind the go-prompt line editor
type InteractiveSession struct {
	ctx      context.Context
	shell    *shell.Shell
	logger   *logging.FieldLogger
	exitFlag bool
	keys     *keyReader
	// atPrompt is set while the editor owns the terminal
	atPrompt    atomic.Bool
	quitPending atomic.Bool
	// terminal state from before the editor switched to raw mode
	termState *term.State
}

// completer suggests builtin names for the first word of the line
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	// Only the command word completes; arguments are paths and programs
	if w == "" || strings.ContainsAny(strings.TrimLeft(text, " "), " ") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	descriptors := s.shell.Registry().Descriptors()
	suggestions := make([]prompt.Suggest, 0, len(descriptors))
	for _, desc := range descriptors {
		suggestions = append(suggestions, prompt.Suggest{Text: desc.Name, Description: desc.Description})
	}
	return prompt.FilterHasPrefix(suggestions, w, false), startIndex, endIndex
}

// runInteractive reads lines with go-prompt until exit, Ctrl-D on an empty
// line, or a quit
func (app *App) runInteractive(ctx context.Context, sh *shell.Shell, log *logging.FieldLogger) int {
	session := &InteractiveSession{
		ctx:    ctx,
		shell:  sh,
		logger: log,
		keys:   newKeyReader(prompt.NewStdinReader()),
	}
	if state, err := term.GetState(int(os.Stdin.Fd())); err == nil {
		session.termState = state
	}

	// Raw mode turns the Ctrl-C and Ctrl-\ keys into bytes. The signals
	// still arrive from kill(1) and while a child runs in cooked mode.
	signals, stop := shell.NotifySignals()
	defer stop()
	go session.watchSignals(signals)

	// Input hands each line back to the loop; the editor runs nothing itself
	p := prompt.New(
		func(string) {},
		prompt.WithReader(session.keys),
		prompt.WithCompleter(session.completer),
		prompt.WithPrefixCallback(sh.PlainPrompt),
		prompt.WithTitle(constants.AppName),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithScrollbarBGColor(prompt.DarkGray),
		prompt.WithScrollbarThumbColor(prompt.White),
		prompt.WithMaxSuggestion(15),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				// The editor drops the line and starts a fresh prompt
				session.logger.Debug("prompt interrupted")
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlBackslash,
			Fn: func(p *prompt.Prompt) bool {
				session.quit()
				return false
			},
		}),
	)

	return session.loop(p)
}

// loop runs edited lines until exit, end of input, or a quit that arrived
// while a command ran
func (s *InteractiveSession) loop(editor lineEditor) int {
	for !s.exitFlag {
		s.keys.reset()
		s.atPrompt.Store(true)
		input := s.editorInput(editor)
		s.atPrompt.Store(false)

		if input == "" && s.keys.EndOfInput() {
			s.logger.Info("end of input")
			return constants.ExitOK
		}
		s.executor(input)

		if s.quitPending.Load() {
			s.announceQuit()
			return constants.ExitQuit
		}
	}
	return constants.ExitOK
}

// editorInput checks for a quit that raced the prompt being drawn
func (s *InteractiveSession) editorInput(editor lineEditor) string {
	if s.quitPending.Load() {
		s.quit()
	}
	return editor.Input()
}

// executor runs one line through the dispatcher
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}
	if text, cut := shell.TruncateLine(input, s.shell.MaxLineLength()); cut {
		input = text
		fmt.Fprintf(os.Stderr, "%s: input line truncated to %d bytes\n", constants.AppName, s.shell.MaxLineLength())
	}
	if s.shell.Execute(s.ctx, input) {
		s.logger.Info("session ended")
		s.exitFlag = true
	}
}

// watchSignals redraws the prompt on interrupt and ends the session on
// quit. Signals that arrive while a command runs belong to the command; a
// quit among them ends the session once the command returns.
func (s *InteractiveSession) watchSignals(signals <-chan os.Signal) {
	for sig := range signals {
		switch {
		case sig == syscall.SIGQUIT && s.atPrompt.Load():
			s.quit()
		case sig == syscall.SIGQUIT:
			s.quitPending.Store(true)
		case s.atPrompt.Load():
			s.logger.Debug("interrupt at prompt")
			s.keys.Interrupt()
		}
	}
}

// announceQuit restores the terminal and reports the quit
func (s *InteractiveSession) announceQuit() {
	if s.termState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), s.termState)
	}
	fmt.Fprintln(os.Stderr, "\nExiting..")
	s.logger.Info("quit signal received")
}

// quit ends the process with the quit status while the editor holds the
// terminal. It does not return.
func (s *InteractiveSession) quit() {
	s.announceQuit()
	os.Exit(constants.ExitQuit)
}
