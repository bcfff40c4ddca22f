package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"admitguard/internal/config"
)

var configInit bool

// configCmd inspects and scaffolds configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the effective configuration after defaults, the config file
and environment overrides (ADMITGUARD_DB, ADMITGUARD_LOG_LEVEL) have
been applied. With --init, writes a default config file instead.`,
	RunE: showConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default config file and exit")
}

func showConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = os.Getenv("ADMITGUARD_CONFIG")
	}
	if path == "" {
		path = config.DefaultFileName
	}

	if configInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Printf("# effective configuration (%s)\n%s", path, data)
	return nil
}
