// Package display holds terminal presentation helpers: the progress spinner,
// the markdown renderer used for help pages, and startup error output.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalWidth returns the column count of f, or fallback when f is not a terminal
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// ShowError prints a startup or configuration error to stderr
func ShowError(msg string) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), msg)
}

// Spinner wraps briandowns/spinner; a nil *Spinner is a valid no-op
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner writing to w with the given message
func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start starts the spinner
func (sp *Spinner) Start() {
	if sp == nil {
		return
	}
	sp.s.Start()
}

// Stop stops the spinner and erases its line
func (sp *Spinner) Stop() {
	if sp == nil {
		return
	}
	sp.s.Stop()
}

// UpdateMessage changes the text shown next to the spinner
func (sp *Spinner) UpdateMessage(message string) {
	if sp == nil {
		return
	}
	sp.s.Lock()
	sp.s.Suffix = " " + message
	sp.s.Unlock()
}

// Renderer turns markdown into styled terminal text
type Renderer struct {
	mu sync.Mutex
	tr *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer wrapping at width columns
func NewRenderer(width int) (*Renderer, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{tr: tr}, nil
}

// Render returns the styled form of markdown, or markdown itself if rendering fails
func (r *Renderer) Render(markdown string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.tr.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimLeft(out, "\n")
}
