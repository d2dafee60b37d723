package shell

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, lr *lineReader) []line {
	t.Helper()
	var out []line
	for {
		l := <-lr.Next()
		lr.Done()
		if l.err != nil {
			if !errors.Is(l.err, io.EOF) {
				t.Fatalf("unexpected read error: %v", l.err)
			}
			return out
		}
		out = append(out, l)
	}
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		max       int
		wantText  []string
		wantTrunc []bool
	}{
		{"single line", "ls -l\n", 1024, []string{"ls -l"}, []bool{false}},
		{"no trailing newline", "a\nb", 1024, []string{"a", "b"}, []bool{false, false}},
		{"empty lines", "\n\n", 1024, []string{"", ""}, []bool{false, false}},
		{"exactly max", "abcd\n", 4, []string{"abcd"}, []bool{false}},
		{"over max", "abcdef\nok\n", 4, []string{"abcd", "ok"}, []bool{true, false}},
		{"longer than read buffer", strings.Repeat("x", 10000) + "\n", 1024, []string{strings.Repeat("x", 1024)}, []bool{true}},
		{"cut before a split rune", "aé\nok\n", 2, []string{"a", "ok"}, []bool{true, false}},
		{"multi-byte line longer than read buffer", strings.Repeat("é", 3000) + "\n", 1023, []string{strings.Repeat("é", 511)}, []bool{true}},
		{"carriage return kept", "ls\r\n", 1024, []string{"ls\r"}, []bool{false}},
		{"empty input", "", 1024, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := newLineReader(strings.NewReader(tt.input), tt.max)
			defer lr.Close()

			got := readAll(t, lr)
			if len(got) != len(tt.wantText) {
				t.Fatalf("read %d lines, want %d", len(got), len(tt.wantText))
			}
			for i, l := range got {
				if l.text != tt.wantText[i] {
					t.Errorf("line %d = %q, want %q", i, l.text, tt.wantText[i])
				}
				if l.truncated != tt.wantTrunc[i] {
					t.Errorf("line %d truncated = %v, want %v", i, l.truncated, tt.wantTrunc[i])
				}
			}
		})
	}
}

func TestLineReader_NextKeepsPendingRequest(t *testing.T) {
	lr := newLineReader(strings.NewReader("one\ntwo\n"), 1024)
	defer lr.Close()

	// Asking twice without Done must not queue a second read
	first := lr.Next()
	second := lr.Next()
	if first != second {
		t.Fatal("Next() returned different channels")
	}
	l := <-first
	lr.Done()
	if l.text != "one" {
		t.Errorf("first line = %q, want %q", l.text, "one")
	}
	l = <-lr.Next()
	lr.Done()
	if l.text != "two" {
		t.Errorf("second line = %q, want %q", l.text, "two")
	}
}
