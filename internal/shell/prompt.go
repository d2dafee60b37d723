package shell

import (
	"fmt"

	"github.com/fatih/color"
)

// Prompt symbols
const (
	userSymbol = "$"
	rootSymbol = "#"
)

// PromptInfo is what the prompt shows
type PromptInfo struct {
	Name     string
	User     string
	Hostname string
	Dir      string
	Root     bool
}

func (p PromptInfo) symbol() string {
	if p.Root {
		return rootSymbol
	}
	return userSymbol
}

// FormatPrompt renders "<name> <user>@<host> <dir> <$|#> "
func FormatPrompt(p PromptInfo) string {
	return fmt.Sprintf("%s %s@%s %s %s ", p.Name, p.User, p.Hostname, p.Dir, p.symbol())
}

// FormatColorPrompt renders the same text as FormatPrompt with ANSI colors
func FormatColorPrompt(p PromptInfo) string {
	name := color.New(color.FgGreen, color.Bold)
	ident := color.New(color.FgCyan)
	dir := color.New(color.FgBlue, color.Bold)
	for _, c := range []*color.Color{name, ident, dir} {
		c.EnableColor()
	}
	return fmt.Sprintf("%s %s %s %s ",
		name.Sprint(p.Name),
		ident.Sprintf("%s@%s", p.User, p.Hostname),
		dir.Sprint(p.Dir),
		p.symbol(),
	)
}
