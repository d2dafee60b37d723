package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/dsh/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	Mode    string `yaml:"mode,omitempty"` // "auto", "prompt", "plain"
	Render  bool   `yaml:"render,omitempty"`
	EnvFile string `yaml:"env_file,omitempty"`

	Prompt *PromptConfig `yaml:"prompt,omitempty"`
	Input  *InputConfig  `yaml:"input,omitempty"`
	Log    *LogConfig    `yaml:"log,omitempty"`
}

// PromptConfig holds prompt cosmetics
type PromptConfig struct {
	Name     string `yaml:"name,omitempty"`
	Hostname string `yaml:"hostname,omitempty"` // Used when HOSTNAME is unset
	Color    *bool  `yaml:"color,omitempty"`
}

// InputConfig holds line reading and tokenizing limits
type InputConfig struct {
	Delimiters    string `yaml:"delimiters,omitempty"`
	MaxLineLength int    `yaml:"max_line_length,omitempty"`
	MaxTokens     int    `yaml:"max_tokens,omitempty"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text" or "json"
	File   string `yaml:"file,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+constants.AppName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from the first file found
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig applies file configuration to the main Config.
// File values only fill fields that flags and the environment left unset.
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	if c.Mode == "" && fc.Mode != "" {
		c.Mode = fc.Mode
	}
	if fc.Render && !c.Render {
		c.Render = true
	}
	if c.EnvFile == "" && fc.EnvFile != "" {
		c.EnvFile = fc.EnvFile
	}

	if fc.Prompt != nil {
		if c.PromptName == "" && fc.Prompt.Name != "" {
			c.PromptName = fc.Prompt.Name
		}
		if c.Hostname == "" && fc.Prompt.Hostname != "" {
			c.Hostname = fc.Prompt.Hostname
		}
		if fc.Prompt.Color != nil && !*fc.Prompt.Color {
			c.NoColor = true
		}
	}

	if fc.Input != nil {
		if c.Delimiters == "" && fc.Input.Delimiters != "" {
			c.Delimiters = fc.Input.Delimiters
		}
		if c.MaxLineLength == 0 && fc.Input.MaxLineLength != 0 {
			c.MaxLineLength = fc.Input.MaxLineLength
		}
		if c.MaxTokens == 0 && fc.Input.MaxTokens != 0 {
			c.MaxTokens = fc.Input.MaxTokens
		}
	}

	if fc.Log != nil {
		if c.LogLevel == "" && fc.Log.Level != "" {
			c.LogLevel = fc.Log.Level
		}
		if c.LogFormat == "" && fc.Log.Format != "" {
			c.LogFormat = fc.Log.Format
		}
		if c.LogFile == "" && fc.Log.File != "" {
			c.LogFile = fc.Log.File
		}
	}
}

// CreateDefaultConfigFile writes a commented default config file to the
// user config directory and returns its path
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# dsh configuration
# Location: ~/.config/dsh/config.yaml

# Line editor: "auto" (go-prompt on a terminal), "prompt" or "plain"
# mode: auto

# Render 'help' pages as markdown
# render: false

# Variables loaded into the environment at startup (existing ones win)
# env_file: ~/.dsh.env

# prompt:
#   name: dsh
#   hostname: localhost   # used when HOSTNAME is unset
#   color: true

# input:
#   delimiters: "\n\r "
#   max_line_length: 1024
#   max_tokens: 0         # 0 = unlimited

# log:
#   level: none           # debug, info, warn, error, none
#   format: text          # text or json
#   file: ~/.dsh.log
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
