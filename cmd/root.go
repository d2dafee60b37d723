package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quocvuong92/dsh/internal/config"
	"github.com/quocvuong92/dsh/internal/constants"
	"github.com/quocvuong92/dsh/internal/display"
	"github.com/quocvuong92/dsh/internal/logging"
	"github.com/quocvuong92/dsh/internal/shell"
)

// App holds the application state
type App struct {
	cfg       *config.Config
	command   string
	hasLine   bool
	logger    *logging.Logger
	sessionID string
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg: config.NewConfig(),
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "dsh",
		Short: "A small interactive shell",
		Long: `dsh is a small interactive shell. It reads one line at a time, runs
its builtins (ls, cd, cat, cp, mv, mkdir, rm, ...) itself and launches
everything else as an external program.

There are no pipes, redirections, background jobs, quoting or scripting.

Examples:
  dsh                      # Interactive session
  dsh -c "ls /tmp"         # Run one line and exit
  dsh --mode plain         # Read lines without the line editor
  dsh -r                   # Render 'help' as markdown`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.hasLine = cmd.Flags().Changed("command")
			os.Exit(app.run())
		},
	}

	rootCmd.Flags().BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&app.command, "command", "c", "", "Run a single line and exit")
	rootCmd.Flags().StringVar(&app.cfg.ConfigPath, "config", "", "Config file (default: search ./.dsh, ~/.config/dsh)")
	rootCmd.Flags().StringVar(&app.cfg.Mode, "mode", "", "Input mode: auto, prompt or plain (default: auto)")
	rootCmd.Flags().BoolVarP(&app.cfg.Render, "render", "r", false, "Render help pages as markdown")
	rootCmd.Flags().BoolVar(&app.cfg.NoColor, "no-color", false, "Disable the colored prompt")
	rootCmd.Flags().StringVar(&app.cfg.EnvFile, "env-file", "", "Load environment variables from this file")
	rootCmd.Flags().StringVar(&app.cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	rootCmd.Flags().StringVar(&app.cfg.LogFormat, "log-format", "", "Log format: text or json")
	rootCmd.Flags().StringVar(&app.cfg.LogFile, "log-file", "", "Append logs to this file instead of stderr")

	rootCmd.AddCommand(NewConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(constants.ExitUsage)
	}
}

// run starts the session and returns the process exit code
func (app *App) run() int {
	if err := app.cfg.Validate(); err != nil {
		display.ShowError(err.Error())
		return constants.ExitInit
	}

	logger, err := app.newLogger()
	if err != nil {
		display.ShowError(err.Error())
		return constants.ExitInit
	}
	app.logger = logger
	defer logger.Close()

	app.sessionID = uuid.New().String()
	log := logger.WithFields(logging.Fields{"session": app.sessionID})
	log.Info("starting", logging.Fields{"mode": app.cfg.Mode, "user": app.cfg.User})

	sh := shell.New(app.cfg, app.shellOptions(log)...)
	ctx := context.Background()

	if app.hasLine {
		sh.Execute(ctx, app.command)
		return constants.ExitOK
	}

	if app.useLineEditor() {
		return app.runInteractive(ctx, sh, log)
	}
	return app.runPlain(ctx, sh, log)
}

func (app *App) newLogger() (*logging.Logger, error) {
	level := logging.ParseLevel(app.cfg.LogLevel)
	if app.cfg.Verbose {
		level = logging.LevelDebug
	}
	format := logging.ParseFormat(app.cfg.LogFormat)

	if app.cfg.LogFile != "" {
		return logging.Open(config.ExpandHome(app.cfg.LogFile), level, format)
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: os.Stderr}), nil
}

func (app *App) shellOptions(log *logging.FieldLogger) []shell.Option {
	opts := []shell.Option{
		shell.WithLogger(log),
		shell.WithColor(!app.cfg.NoColor && display.IsTerminal(os.Stdout)),
	}

	if app.cfg.Render {
		renderer, err := display.NewRenderer(display.TerminalWidth(os.Stdout, 80))
		if err != nil {
			log.Warn("markdown rendering disabled", logging.Fields{"error": err.Error()})
		} else {
			opts = append(opts, shell.WithRenderer(renderer))
		}
	}

	if display.IsTerminal(os.Stderr) {
		opts = append(opts, shell.WithProgress(func(message string) *display.Spinner {
			return display.NewSpinner(os.Stderr, message)
		}))
	}
	return opts
}

// useLineEditor reports whether the go-prompt editor should read input
func (app *App) useLineEditor() bool {
	switch app.cfg.Mode {
	case constants.ModePrompt:
		return true
	case constants.ModePlain:
		return false
	default:
		return display.IsTerminal(os.Stdin) && display.IsTerminal(os.Stdout)
	}
}

func (app *App) runPlain(ctx context.Context, sh *shell.Shell, log *logging.FieldLogger) int {
	signals, stop := shell.NotifySignals()
	defer stop()

	err := sh.Run(ctx, os.Stdin, signals)
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, shell.ErrQuit):
		return constants.ExitQuit
	default:
		log.Error("session failed", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", constants.AppName, err)
		return constants.ExitInit
	}
}
