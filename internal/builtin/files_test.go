package builtin

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/quocvuong92/dsh/internal/display"
)

func TestLs(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "b.txt", "")
	writeFile(t, "a.txt", "")
	if err := os.Mkdir("c", 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("working directory", func(t *testing.T) {
		te := newTestEnv()
		te.run(t, "ls")
		if want := ".\n..\na.txt\nb.txt\nc\n"; te.stdout.String() != want {
			t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
		}
	})

	t.Run("only first argument is listed", func(t *testing.T) {
		te := newTestEnv()
		te.run(t, "ls", "c", "other")
		if want := ".\n..\n"; te.stdout.String() != want {
			t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
		}
		if te.stderr.Len() != 0 {
			t.Errorf("stderr = %q", te.stderr.String())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		te := newTestEnv()
		te.run(t, "ls", "nope")
		if want := "ls: nope: No such file or directory\n"; te.stderr.String() != want {
			t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
		}
		if te.stdout.Len() != 0 {
			t.Errorf("stdout = %q", te.stdout.String())
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		te := newTestEnv()
		te.run(t, "ls", "a.txt")
		if want := "ls: a.txt: Not a directory\n"; te.stderr.String() != want {
			t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
		}
	})
}

func TestCat(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "one", "first\n")
	writeFile(t, "two", "second\n")

	te := newTestEnv()
	te.run(t, "cat", "one", "missing", "two")

	if want := "first\nsecond\n"; te.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
	}
	if want := "cat: missing: No such file or directory\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
}

func TestMkdir_ContinuesPastFailures(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "b", "")

	te := newTestEnv()
	te.run(t, "mkdir", "a", "b", "c")

	if want := "mkdir: b: File exists\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
	for _, dir := range []string{"a", "c"} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s was not created: %v", dir, err)
			continue
		}
		if perm := info.Mode().Perm(); perm&0o700 != 0o700 {
			t.Errorf("%s perm = %v, want owner rwx", dir, perm)
		}
	}
}

func TestRmdir(t *testing.T) {
	chdirTemp(t)
	if err := os.Mkdir("empty", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir("full", 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, "full/x", "")

	te := newTestEnv()
	te.run(t, "rmdir", "full", "empty", "missing")

	if _, err := os.Stat("empty"); !os.IsNotExist(err) {
		t.Errorf("empty still exists: %v", err)
	}
	if _, err := os.Stat("full"); err != nil {
		t.Errorf("full was removed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(te.stderr.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("stderr = %q, want two diagnostics", te.stderr.String())
	}
	if !strings.HasPrefix(lines[0], "rmdir: full: ") {
		t.Errorf("first diagnostic = %q", lines[0])
	}
	if lines[1] != "rmdir: missing: No such file or directory" {
		t.Errorf("second diagnostic = %q", lines[1])
	}
}

func TestRm(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "f", "")
	if err := os.Mkdir("d", 0o755); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv()
	te.run(t, "rm", "d", "f")

	if _, err := os.Stat("f"); !os.IsNotExist(err) {
		t.Errorf("f still exists: %v", err)
	}
	if _, err := os.Stat("d"); err != nil {
		t.Errorf("rm removed a directory: %v", err)
	}
	if !strings.HasPrefix(te.stderr.String(), "rm: d: ") {
		t.Errorf("stderr = %q, want a diagnostic for d", te.stderr.String())
	}
}

func TestChroot_Failure(t *testing.T) {
	chdirTemp(t)
	te := newTestEnv()

	te.run(t, "chroot", "missing")
	if !strings.HasPrefix(te.stderr.String(), "chroot: missing: ") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

func TestMv(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "src", "data")

	te := newTestEnv()
	te.run(t, "mv", "src", "dst")

	if _, err := os.Stat("src"); !os.IsNotExist(err) {
		t.Errorf("src still exists: %v", err)
	}
	got, err := os.ReadFile("dst")
	if err != nil || string(got) != "data" {
		t.Errorf("dst = %q, %v", got, err)
	}

	te = newTestEnv()
	te.run(t, "mv", "missing", "x")
	if want := "mv: missing: No such file or directory\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
}

// =============================================================================
// cp Tests
// =============================================================================

func TestCp(t *testing.T) {
	chdirTemp(t)
	if err := os.WriteFile("src", []byte("payload"), 0o640); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv()
	te.run(t, "cp", "src", "dst")

	if te.stderr.Len() != 0 {
		t.Fatalf("stderr = %q", te.stderr.String())
	}
	got, err := os.ReadFile("dst")
	if err != nil || string(got) != "payload" {
		t.Fatalf("dst = %q, %v", got, err)
	}
	info, err := os.Stat("dst")
	if err != nil {
		t.Fatal(err)
	}
	// umask may clear bits but never adds any
	if perm := info.Mode().Perm(); perm&^0o640 != 0 {
		t.Errorf("dst perm = %v, want a subset of 0640", perm)
	}
}

func TestCp_ExistingDestinationUnchanged(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "src", "new")
	writeFile(t, "dst", "old")

	te := newTestEnv()
	te.run(t, "cp", "src", "dst")

	if want := "cp: dst: File exists\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
	got, _ := os.ReadFile("dst")
	if string(got) != "old" {
		t.Errorf("dst = %q, want it unchanged", got)
	}
}

func TestCp_MissingSource(t *testing.T) {
	chdirTemp(t)

	te := newTestEnv()
	te.run(t, "cp", "missing", "dst")

	if want := "cp: missing: No such file or directory\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
	if _, err := os.Stat("dst"); !os.IsNotExist(err) {
		t.Errorf("dst was created: %v", err)
	}
}

func TestCp_DirectorySource(t *testing.T) {
	chdirTemp(t)
	if err := os.Mkdir("dir", 0o755); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv()
	te.run(t, "cp", "dir", "dst")

	if want := "cp: dir: Is a directory\n"; te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
	if _, err := os.Stat("dst"); !os.IsNotExist(err) {
		t.Errorf("dst was created: %v", err)
	}
}

func TestCp_LargeFileReportsProgress(t *testing.T) {
	chdirTemp(t)
	payload := bytes.Repeat([]byte("x"), LargeCopyThreshold)
	if err := os.WriteFile("big", payload, 0o644); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv()
	var labels []string
	te.env.Progress = func(message string) *display.Spinner {
		labels = append(labels, message)
		return display.NewSpinner(io.Discard, message)
	}
	te.run(t, "cp", "big", "copy")

	if te.stderr.Len() != 0 {
		t.Fatalf("stderr = %q", te.stderr.String())
	}
	if len(labels) != 1 || labels[0] != "Copying big to copy" {
		t.Errorf("progress labels = %q", labels)
	}
	info, err := os.Stat("copy")
	if err != nil || info.Size() != int64(len(payload)) {
		t.Errorf("copy = %v, %v; want %d bytes", info, err, len(payload))
	}
}

func TestProgressWriter(t *testing.T) {
	var out bytes.Buffer
	var updates []string
	pw := &progressWriter{w: &out, total: 200, label: "Copying a to b", update: func(m string) {
		updates = append(updates, m)
	}}

	for _, chunk := range []string{strings.Repeat("a", 50), "", strings.Repeat("b", 1), strings.Repeat("c", 149)} {
		if _, err := pw.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	want := []string{"Copying a to b (25%)", "Copying a to b (100%)"}
	if strings.Join(updates, "|") != strings.Join(want, "|") {
		t.Errorf("updates = %q, want %q", updates, want)
	}
	if out.Len() != 200 {
		t.Errorf("wrote %d bytes, want 200", out.Len())
	}
}
