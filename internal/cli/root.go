package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cellar/config"
	"cellar/internal/logging"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "cellar",
	Short: "Cellar - Wine catalog resolution and food pairing",
	Long: `Cellar keeps a wine catalog free of duplicates and recommends wines
for a dish by blending a sommelier rule table with embedding similarity.

Example usage:
  cellar import ./labels            # Link or create catalog wines from YAML files
  cellar embed                      # Embed enriched wines
  cellar pair -q "grilled lamb"     # Rank wines for a dish
  cellar serve                      # Start the HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logging.Init(logging.Config{
			Level:  level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cellar.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "cellar directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
