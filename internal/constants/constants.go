// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "os"

// Application defaults
const (
	// AppName is the name shown in the prompt and in diagnostics
	AppName = "dsh"
	// DefaultHostname is used in the prompt when HOSTNAME is unset
	DefaultHostname = "localhost"
	// DefaultDelimiters separate tokens on an input line
	DefaultDelimiters = "\n\r "
	// DefaultMaxLineLength bounds the bytes accepted from one input line
	DefaultMaxLineLength = 1024
	// RootUser gets the '#' prompt symbol
	RootUser = "root"
)

// DirMode is the permission set for directories created by mkdir (rwxr-xr-x).
const DirMode os.FileMode = 0o755

// Process exit codes
const (
	ExitOK = 0
	// ExitUsage is returned when the command line itself is invalid
	ExitUsage = 1
	// ExitInit is returned when startup fails before the loop runs
	ExitInit = 2
	// ExitQuit is returned after a quit signal (128 + SIGQUIT)
	ExitQuit = 131
)

// Exit statuses recorded for children that never started
const (
	StatusNotExecutable = 126
	StatusNotFound      = 127
)

// Interactive modes
const (
	ModeAuto   = "auto"
	ModePrompt = "prompt"
	ModePlain  = "plain"
)
