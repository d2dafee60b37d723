package shell

import (
	"strings"
	"testing"
)

func TestFormatPrompt(t *testing.T) {
	tests := []struct {
		name string
		info PromptInfo
		want string
	}{
		{
			name: "regular user",
			info: PromptInfo{Name: "dsh", User: "alice", Hostname: "box", Dir: "/home/alice"},
			want: "dsh alice@box /home/alice $ ",
		},
		{
			name: "root",
			info: PromptInfo{Name: "dsh", User: "root", Hostname: "localhost", Dir: "/", Root: true},
			want: "dsh root@localhost / # ",
		},
		{
			name: "unset user",
			info: PromptInfo{Name: "dsh", Hostname: "localhost", Dir: "/tmp"},
			want: "dsh @localhost /tmp $ ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrompt(tt.info); got != tt.want {
				t.Errorf("FormatPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatColorPrompt(t *testing.T) {
	info := PromptInfo{Name: "dsh", User: "alice", Hostname: "box", Dir: "/work"}
	got := FormatColorPrompt(info)

	if !strings.Contains(got, "\x1b[") {
		t.Errorf("FormatColorPrompt() = %q, want ANSI sequences", got)
	}
	for _, part := range []string{"dsh", "alice@box", "/work", "$ "} {
		if !strings.Contains(got, part) {
			t.Errorf("FormatColorPrompt() = %q, missing %q", got, part)
		}
	}
}

func TestShell_PromptUsesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.User = "root"
	s, _, _ := newTestShell(cfg, WithLauncher(&fakeLauncher{}))

	if got, want := s.Prompt(), "dsh root@box /work # "; got != want {
		t.Errorf("Prompt() = %q, want %q", got, want)
	}
}
