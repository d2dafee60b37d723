package builtin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/logging"
	"github.com/quocvuong92/dsh/internal/syserr"
)

// clearScreen homes the cursor and erases the display
const clearScreen = "\033[H\033[2J"

// lookPath is replaced in tests
var lookPath = exec.LookPath

func exitHandler(ctx context.Context, env *Env, args []string) error {
	return ErrExit
}

// sysHandler runs its first argument as an external program, even when the
// name is also a builtin
func sysHandler(ctx context.Context, env *Env, args []string) error {
	res, err := env.Launcher.Launch(ctx, args)
	if err != nil {
		// Already reported by the launcher
		env.logger().Debug("sys launch failed", logging.Fields{"argv": args, "error": err.Error()})
		return nil
	}
	env.logger().Debug("sys finished", logging.Fields{"argv": args, "exit": res.ExitCode})
	return nil
}

func echoHandler(ctx context.Context, env *Env, args []string) error {
	fmt.Fprintln(env.Stdout, strings.Join(args, " "))
	return nil
}

func pwdHandler(ctx context.Context, env *Env, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, dir)
	return nil
}

func clearHandler(ctx context.Context, env *Env, args []string) error {
	if _, err := lookPath("clear"); err != nil {
		fmt.Fprint(env.Stdout, clearScreen)
		return nil
	}
	if _, err := env.Launcher.Launch(ctx, []string{"clear"}); err != nil {
		env.logger().Debug("clear failed", logging.Fields{"error": err.Error()})
	}
	return nil
}

func cdHandler(ctx context.Context, env *Env, args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	} else {
		target = env.getenv("HOME")
		if target == "" {
			target = env.Home
		}
		if target == "" {
			fmt.Fprintln(env.Stderr, "cd: HOME not set")
			return nil
		}
	}

	if err := os.Chdir(target); err != nil {
		syserr.Report(env.Stderr, "cd", target, err)
	}
	return nil
}

func helpHandler(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		if env.Renderer != nil {
			fmt.Fprint(env.Stdout, env.Renderer.Render(helpIndexMarkdown(env.Registry)))
			return nil
		}
		fmt.Fprintf(env.Stdout, "You are running %s\nType 'help (command)' for more details\n", constants.AppName)
		fmt.Fprintln(env.Stdout, "The following commands are available:")
		for _, name := range env.Registry.Names() {
			fmt.Fprintf(env.Stdout, " %s\n", name)
		}
		return nil
	}

	d, ok := env.Registry.Lookup(args[0])
	if !ok {
		return nil
	}
	if env.Renderer != nil {
		fmt.Fprint(env.Stdout, env.Renderer.Render(helpPageMarkdown(d)))
		return nil
	}
	env.WriteUsage(d)
	return nil
}

func helpIndexMarkdown(r *Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\nType `help (command)` for more details.\n\n", constants.AppName)
	sb.WriteString("| Command | Description |\n|---|---|\n")
	for _, d := range r.Descriptors() {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", d.Name, d.Description)
	}
	return sb.String()
}

func helpPageMarkdown(d Descriptor) string {
	return fmt.Sprintf("## %s\n\n```\n%s\n```\n\n%s\n", d.Name, d.Usage, d.Description)
}
