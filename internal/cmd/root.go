// Package cmd holds the cobra commands shared by the parley and parleyd
// binaries.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "terminal chat with search, suggestions, and personas",
	Long: `parley - terminal chat client
  - chat with friends or celebrity personas
  - Ctrl+F searches message history as you type
  - suggestions appear under the input line`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: XDG config dir)")
}

// loadConfig loads the config file named by --config, or the default.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
