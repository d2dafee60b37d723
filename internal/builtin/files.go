package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/logging"
	"github.com/quocvuong92/dsh/internal/syserr"
)

// LargeCopyThreshold is the source size from which cp shows progress
const LargeCopyThreshold = 8 << 20

// lsHandler lists the first argument (or the working directory) with "."
// and ".." first and the remaining names sorted
func lsHandler(ctx context.Context, env *Env, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	f, err := os.Open(dir)
	if err != nil {
		syserr.Report(env.Stderr, "ls", dir, err)
		return nil
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		syserr.Report(env.Stderr, "ls", dir, err)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	fmt.Fprintln(env.Stdout, ".")
	fmt.Fprintln(env.Stdout, "..")
	for _, name := range names {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

func catHandler(ctx context.Context, env *Env, args []string) error {
	for _, name := range args {
		if err := catFile(env.Stdout, name); err != nil {
			syserr.Report(env.Stderr, "cat", name, err)
		}
	}
	return nil
}

func catFile(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func mkdirHandler(ctx context.Context, env *Env, args []string) error {
	for _, dir := range args {
		if err := os.Mkdir(dir, constants.DirMode); err != nil {
			syserr.Report(env.Stderr, "mkdir", dir, err)
		}
	}
	return nil
}

// rmdirHandler removes only empty directories
func rmdirHandler(ctx context.Context, env *Env, args []string) error {
	for _, dir := range args {
		if err := unix.Rmdir(dir); err != nil {
			syserr.Report(env.Stderr, "rmdir", dir, &fs.PathError{Op: "rmdir", Path: dir, Err: err})
		}
	}
	return nil
}

// rmHandler unlinks files; directories are refused by the kernel
func rmHandler(ctx context.Context, env *Env, args []string) error {
	for _, name := range args {
		if err := unix.Unlink(name); err != nil {
			syserr.Report(env.Stderr, "rm", name, &fs.PathError{Op: "unlink", Path: name, Err: err})
		}
	}
	return nil
}

// chrootHandler changes the root of the whole process. The working directory
// is left alone.
func chrootHandler(ctx context.Context, env *Env, args []string) error {
	dir := args[0]
	if err := unix.Chroot(dir); err != nil {
		syserr.Report(env.Stderr, "chroot", dir, &fs.PathError{Op: "chroot", Path: dir, Err: err})
		return nil
	}
	env.logger().Info("root directory changed", logging.Fields{"dir": dir})
	return nil
}

func mvHandler(ctx context.Context, env *Env, args []string) error {
	src, dst := args[0], args[1]
	if err := os.Rename(src, dst); err != nil {
		syserr.Report(env.Stderr, "mv", src, unwrapLink(err))
	}
	return nil
}

// unwrapLink turns an *os.LinkError into a PathError naming the source so the
// reported message carries only the system text
func unwrapLink(err error) error {
	var le *os.LinkError
	if errors.As(err, &le) {
		return &fs.PathError{Op: le.Op, Path: le.Old, Err: le.Err}
	}
	return err
}

// cpHandler copies a regular file. An existing destination is never
// overwritten and a partial destination is removed on failure.
func cpHandler(ctx context.Context, env *Env, args []string) error {
	src, dst := args[0], args[1]

	in, err := os.Open(src)
	if err != nil {
		syserr.Report(env.Stderr, "cp", src, err)
		return nil
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		syserr.Report(env.Stderr, "cp", src, err)
		return nil
	}
	if info.IsDir() {
		syserr.Report(env.Stderr, "cp", src, unix.EISDIR)
		return nil
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		syserr.Report(env.Stderr, "cp", dst, err)
		return nil
	}

	var w io.Writer = out
	if info.Size() >= LargeCopyThreshold && env.Progress != nil {
		label := fmt.Sprintf("Copying %s to %s", src, dst)
		sp := env.Progress(label)
		sp.Start()
		defer sp.Stop()
		w = &progressWriter{w: out, total: info.Size(), label: label, update: sp.UpdateMessage}
	}

	n, copyErr := io.Copy(w, in)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		syserr.Report(env.Stderr, "cp", dst, copyErr)
		if err := os.Remove(dst); err != nil {
			env.logger().Warn("failed to remove partial copy", logging.Fields{"path": dst, "error": err.Error()})
		}
		return nil
	}

	env.logger().Debug("copied file", logging.Fields{"src": src, "dst": dst, "bytes": n})
	return nil
}

// progressWriter reports whole-percent steps of a copy of total bytes
type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	percent int64
	label   string
	update  func(string)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		if pct := pw.written * 100 / pw.total; pct != pw.percent {
			pw.percent = pct
			pw.update(fmt.Sprintf("%s (%d%%)", pw.label, pct))
		}
	}
	return n, err
}
