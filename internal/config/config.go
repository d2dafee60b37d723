package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/quocvuong92/dsh/internal/constants"
)

// Environment variable names
const (
	// Identity, consumed by the prompt and by cd
	EnvUser     = "USER"
	EnvHome     = "HOME"
	EnvHostname = "HOSTNAME"

	// Shell behaviour
	EnvMode    = "DSH_MODE"
	EnvEnvFile = "DSH_ENV_FILE"

	// Logging
	EnvLogLevel  = "DSH_LOG_LEVEL"
	EnvLogFormat = "DSH_LOG_FORMAT"
	EnvLogFile   = "DSH_LOG_FILE"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultPromptName    = constants.AppName
	DefaultHostname      = constants.DefaultHostname
	DefaultDelimiters    = constants.DefaultDelimiters
	DefaultMaxLineLength = constants.DefaultMaxLineLength
	DefaultMode          = constants.ModeAuto
)

// Errors
var (
	ErrInvalidMode       = errors.New("invalid mode. Use 'auto', 'prompt', or 'plain'")
	ErrInvalidLineLength = errors.New("max line length must be positive")
	ErrInvalidMaxTokens  = errors.New("max tokens must not be negative")
	ErrEmptyDelimiters   = errors.New("delimiter set must not be empty")
	ErrEnvFile           = errors.New("failed to load env file")
)

// Config holds the shell configuration
type Config struct {
	// Identity (from the environment)
	User     string
	Home     string
	Hostname string

	// Prompt
	PromptName string
	NoColor    bool

	// Input handling
	Delimiters    string
	MaxLineLength int
	MaxTokens     int // 0 means unlimited

	// Session
	Mode    string // "auto", "prompt" or "plain"
	Render  bool   // Render help pages as markdown
	EnvFile string

	// Explicit config file; when empty the default locations are searched
	ConfigPath string

	// Logging
	Verbose   bool
	LogLevel  string
	LogFormat string
	LogFile   string
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// Validate loads the environment and config file into c, fills defaults and
// checks the result. Values already set (from flags) win over the
// environment, which wins over the config file.
func (c *Config) Validate() error {
	// Env file first so its variables are visible to everything below
	if c.EnvFile == "" {
		c.EnvFile = os.Getenv(EnvEnvFile)
	}

	fileConfig, err := c.loadFileConfig()
	if err != nil {
		return err
	}
	if c.EnvFile == "" && fileConfig.EnvFile != "" {
		c.EnvFile = fileConfig.EnvFile
	}
	if c.EnvFile != "" {
		path := ExpandHome(c.EnvFile)
		// godotenv.Load never overrides variables that are already set
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w %s: %v", ErrEnvFile, path, err)
		}
	}

	c.applyEnv()
	c.ApplyFileConfig(fileConfig)
	c.applyDefaults()

	switch c.Mode {
	case constants.ModeAuto, constants.ModePrompt, constants.ModePlain:
	default:
		return ErrInvalidMode
	}
	if c.MaxLineLength <= 0 {
		return ErrInvalidLineLength
	}
	if c.MaxTokens < 0 {
		return ErrInvalidMaxTokens
	}
	if c.Delimiters == "" {
		return ErrEmptyDelimiters
	}

	return nil
}

func (c *Config) loadFileConfig() (*FileConfig, error) {
	if c.ConfigPath != "" {
		return loadConfigFromPath(ExpandHome(c.ConfigPath))
	}
	fileConfig, err := LoadConfigFile()
	if err != nil {
		// A broken config in a default location should not keep the shell from starting
		return &FileConfig{}, nil
	}
	return fileConfig, nil
}

func (c *Config) applyEnv() {
	c.User = os.Getenv(EnvUser)
	c.Home = os.Getenv(EnvHome)
	if c.Home == "" {
		// The account's home from the user database
		if u, err := user.Current(); err == nil {
			c.Home = u.HomeDir
		}
	}
	if c.Hostname == "" {
		c.Hostname = os.Getenv(EnvHostname)
	}
	if c.Mode == "" {
		c.Mode = strings.ToLower(strings.TrimSpace(os.Getenv(EnvMode)))
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv(EnvLogLevel)
	}
	if c.LogFormat == "" {
		c.LogFormat = os.Getenv(EnvLogFormat)
	}
	if c.LogFile == "" {
		c.LogFile = os.Getenv(EnvLogFile)
	}
}

func (c *Config) applyDefaults() {
	if c.PromptName == "" {
		c.PromptName = DefaultPromptName
	}
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	if c.Delimiters == "" {
		c.Delimiters = DefaultDelimiters
	}
	if c.MaxLineLength == 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
}

// IsRoot reports whether the configured user is the superuser
func (c *Config) IsRoot() bool {
	return c.User == constants.RootUser
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
