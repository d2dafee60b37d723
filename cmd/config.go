package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/dsh/internal/config"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the dsh configuration file",
	}
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigPathsCmd())
	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default configuration file",
		Long: `Write a commented default configuration file to the user config
directory. An existing file is left untouched.

Examples:
  dsh config init`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
}

func newConfigPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List the locations searched for a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range config.GetConfigPaths() {
				marker := " "
				if _, err := os.Stat(path); err == nil {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, path)
			}
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.CreateDefaultConfigFile()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}
