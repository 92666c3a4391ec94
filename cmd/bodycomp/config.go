// ABOUTME: CLI commands for inspecting and creating the config file.
// ABOUTME: Shows effective settings with secrets masked.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the config file",
	Long: `Show or create the bodycomp config file.

The file lives at ~/.config/bodycomp/config.yaml (or under
$XDG_CONFIG_HOME). Every key can be overridden from the environment:

  BODYCOMP_BACKEND           sqlite or charm
  BODYCOMP_DATA_DIR          SQLite directory
  BODYCOMP_MISSING_POLICY    worst_case or exclude
  BODYCOMP_LOG_LEVEL         debug, info, warn, error
  BODYCOMP_GATEWAY_API_KEY   enables AI extraction and comparison
  BODYCOMP_SERVER_ADDR       HTTP listen address`,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective config",
	Args:        cobra.NoArgs,
	Annotations: skipStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := config.Config{
			Backend:       cfg.GetBackend(),
			DataDir:       cfg.GetDataDir(),
			MissingPolicy: string(evaluator.Policy),
			Log: config.LogConfig{
				Level:  cfg.GetLogLevel(),
				Format: cfg.GetLogFormat(),
			},
			Gateway: cfg.GetGateway(),
			Server: config.ServerConfig{
				Addr:     cfg.GetServerAddr(),
				APIToken: mask(cfg.Server.APIToken),
			},
		}
		effective.Gateway.APIKey = mask(effective.Gateway.APIKey)

		data, err := yaml.Marshal(effective)
		if err != nil {
			return err
		}
		fmt.Println(faint.Sprintf("# %s", config.GetConfigPath()))
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with defaults",
	Args:        cobra.NoArgs,
	Annotations: skipStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		defaults := &config.Config{
			Backend:       config.DefaultBackend,
			MissingPolicy: string(evaluator.Policy),
			Log: config.LogConfig{
				Level:  config.DefaultLogLevel,
				Format: config.DefaultLogFormat,
			},
			Gateway: config.GatewayConfig{
				BaseURL:        config.DefaultGatewayURL,
				VisionModel:    config.DefaultVisionModel,
				TextModel:      config.DefaultTextModel,
				TimeoutSeconds: config.DefaultGatewayTimeout,
			},
			Server: config.ServerConfig{Addr: config.DefaultServerAddr},
		}
		if err := defaults.Save(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		color.Green("✓ Wrote %s", path)
		fmt.Println("  Add gateway.api_key to enable AI extraction.")
		return nil
	},
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
