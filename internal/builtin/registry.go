// Package builtin holds the commands the shell implements itself and the
// fixed registry that maps their names to handlers.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/quocvuong92/dsh/internal/display"
	"github.com/quocvuong92/dsh/internal/launcher"
	"github.com/quocvuong92/dsh/internal/logging"
)

// ErrExit is returned by the exit builtin to end the dispatch loop
var ErrExit = errors.New("exit")

// Handler runs one builtin with the arguments that followed its name.
// Per-argument failures are reported by the handler itself; a returned error
// other than ErrExit is reported by the caller as "<name>: <message>".
type Handler func(ctx context.Context, env *Env, args []string) error

// Descriptor describes one builtin
type Descriptor struct {
	Name        string
	Description string
	Usage       string
	// MinArgs and MaxArgs bound the argument count; MaxArgs 0 means no limit.
	// Outside the bounds the usage is printed and the handler is not called.
	MinArgs int
	MaxArgs int
	Handler Handler
}

// Env is what a handler may touch besides the process itself
type Env struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Launcher launcher.Launcher
	Registry *Registry
	Getenv   func(string) string
	// Home is where cd goes when HOME is unset at the time of the call
	Home string
	// Renderer, when set, renders help pages as markdown
	Renderer *display.Renderer
	// Progress, when set, creates a spinner for long-running copies
	Progress func(message string) *display.Spinner
	Logger   *logging.FieldLogger
}

func (e *Env) getenv(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

func (e *Env) logger() *logging.FieldLogger {
	if e.Logger == nil {
		return logging.Nop().WithFields(nil)
	}
	return e.Logger
}

// WriteUsage prints "<name> usage: <usage>" and the description to stdout
func (e *Env) WriteUsage(d Descriptor) {
	fmt.Fprintf(e.Stdout, "%s usage: %s\n%s\n", d.Name, d.Usage, d.Description)
}

// Invoke checks the argument count against d and runs its handler
func (d Descriptor) Invoke(ctx context.Context, env *Env, args []string) error {
	if len(args) < d.MinArgs || (d.MaxArgs > 0 && len(args) > d.MaxArgs) {
		env.WriteUsage(d)
		return nil
	}
	return d.Handler(ctx, env, args)
}

// Registry is an ordered, read-only table of builtins
type Registry struct {
	entries []Descriptor
}

// NewRegistry returns the registry of all builtins in registration order
func NewRegistry() *Registry {
	return NewRegistryFrom(defaultDescriptors()...)
}

// NewRegistryFrom builds a registry from descriptors, keeping their order
func NewRegistryFrom(descriptors ...Descriptor) *Registry {
	return &Registry{entries: append([]Descriptor(nil), descriptors...)}
}

// Lookup finds the first descriptor whose name equals name exactly
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	for _, d := range r.entries {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the builtin names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, d := range r.entries {
		names[i] = d.Name
	}
	return names
}

// Descriptors returns a copy of the table in registration order
func (r *Registry) Descriptors() []Descriptor {
	return append([]Descriptor(nil), r.entries...)
}

// Len returns the number of builtins
func (r *Registry) Len() int {
	return len(r.entries)
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "exit", Description: "Exit from the shell.", Usage: "exit", Handler: exitHandler},
		{Name: "sys", Description: "Call an external command. Used especially in case an ambiguity arises between internal and external command names.", Usage: "sys (command) [args]", MinArgs: 1, Handler: sysHandler},
		{Name: "ls", Description: "List files in a directory.", Usage: "ls [dir]", Handler: lsHandler},
		{Name: "echo", Description: "Print a string to standard output.", Usage: "echo [string]", Handler: echoHandler},
		{Name: "pwd", Description: "Shows the present working directory.", Usage: "pwd", Handler: pwdHandler},
		{Name: "clear", Description: "Clears the screen.", Usage: "clear", Handler: clearHandler},
		{Name: "cd", Description: "Change to a directory.", Usage: "cd [dir]", Handler: cdHandler},
		{Name: "cat", Description: "Concatenate files.", Usage: "cat (file list)", MinArgs: 1, Handler: catHandler},
		{Name: "mkdir", Description: "Create one or more directories.", Usage: "mkdir (dir list)", MinArgs: 1, Handler: mkdirHandler},
		{Name: "rmdir", Description: "Remove one or more directories.", Usage: "rmdir (dir list)", MinArgs: 1, Handler: rmdirHandler},
		{Name: "help", Description: "List all commands.", Usage: "help [command]", Handler: helpHandler},
		{Name: "rm", Description: "Remove one or more files.", Usage: "rm (file list)", MinArgs: 1, Handler: rmHandler},
		{Name: "chroot", Description: "Change the root directory.", Usage: "chroot (dir)", MinArgs: 1, Handler: chrootHandler},
		{Name: "mv", Description: "Move a file or a directory.", Usage: "mv (src) (dest)", MinArgs: 2, MaxArgs: 2, Handler: mvHandler},
		{Name: "cp", Description: "Copy a file to another location.", Usage: "cp (src file) (dest file)", MinArgs: 2, MaxArgs: 2, Handler: cpHandler},
	}
}
