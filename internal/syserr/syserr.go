// Package syserr renders operating-system errors the way perror(3) does:
// the bare system message with a capital first letter, without Go's
// "op path:" decoration.
package syserr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Message returns the system message carried by err,
// e.g. "No such file or directory" for a failed open
func Message(err error) string {
	if err == nil {
		return ""
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return capitalize(errno.Error())
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return capitalize(pathErr.Err.Error())
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return capitalize(linkErr.Err.Error())
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return capitalize(sysErr.Err.Error())
	}

	return capitalize(err.Error())
}

// Report writes "<command>: <argument>: <message>" to w
func Report(w io.Writer, command, argument string, err error) {
	fmt.Fprintf(w, "%s: %s: %s\n", command, argument, Message(err))
}

// ReportCommand writes "<command>: <message>" to w, for failures with no single argument
func ReportCommand(w io.Writer, command string, err error) {
	fmt.Fprintf(w, "%s: %s\n", command, Message(err))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
