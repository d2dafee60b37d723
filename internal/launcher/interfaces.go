// Package launcher runs external programs to completion on behalf of the shell.
package launcher

import "context"

// Launcher defines the interface for running an external program.
// This interface enables dependency injection and easier testing.
type Launcher interface {
	// Launch runs argv[0] with argv as its argument vector, waits for it to
	// terminate and returns its exit status. Failure to find or start the
	// program is reported to the launcher's stderr and returned as an error;
	// it is never fatal to the caller.
	Launch(ctx context.Context, argv []string) (*Result, error)
}

// Ensure concrete types implement the interface
var _ Launcher = (*ProcessLauncher)(nil)
