// Package cmd implements the command line entry point of dsh.
//
// # Architecture
//
//   - root.go: App struct, cobra command setup, flags, logger and exit codes
//   - interactive.go: go-prompt line editor session with builtin completion
//   - config.go: the config subcommands (init, paths)
//
// # Input modes
//
// With a terminal on stdin and stdout (or --mode prompt) lines are read by
// the go-prompt editor one at a time; an interrupt at the prompt clears the
// line and a quit ends the session. Otherwise (or --mode plain) the shell package reads
// lines itself and reacts to SIGINT and SIGQUIT between lines. In both modes
// every line goes through shell.Execute.
//
// # Exit codes
//
//	0    exit builtin, end of input, or -c
//	1    invalid command line
//	2    configuration, env file or log file could not be loaded
//	131  quit signal (128 + SIGQUIT)
//
// # Usage
//
//	func main() {
//	    cmd.Execute()
//	}
package cmd
