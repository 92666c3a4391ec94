// ABOUTME: Root Cobra command for the bodycomp CLI.
// ABOUTME: Loads config, logger, and storage in PersistentPreRunE and closes them afterwards.
package main

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/config"
	"github.com/harperreed/bodycomp/internal/logging"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	logger    *zap.Logger
	evaluator *scoring.Evaluator

	configPath string
	verbose    bool
)

// skipStorage marks commands that run without opening the configured repository.
var skipStorage = map[string]string{"storage": "skip"}

func needsStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete":
		return false
	}
	return cmd.Annotations["storage"] != "skip"
}

var rootCmd = &cobra.Command{
	Use:   "bodycomp",
	Short: "Body composition tracker with wellness scoring",
	Long: `Bodycomp tracks bioimpedance measurements (Fitdays-style reports) for one
or more people on a weight-loss protocol, and scores each reading against
healthy reference bands.

WHAT IT SCORES:

  Six axes, each 0-100: BMI, body fat %, muscle %, visceral fat,
  body water %, protein %. The overall score is their mean, classified
  as Healthy (80+), Attention (60-79) or Risk (below 60).

QUICK START:

  $ bodycomp subject add Reneer --gender male
  $ bodycomp add reneer weight=102 body_fat_percent=31.5 visceral_fat=14
  $ bodycomp card reneer                  # Latest score and protein target
  $ bodycomp trend reneer                 # Score of every week

AI EXTRACTION:

  With a gateway API key configured, photos of reports can be read:

  $ bodycomp extract reneer report.jpg --save
  $ bodycomp compare                      # Narrative across all subjects

SERVERS:

  $ bodycomp serve                        # HTTP JSON API with /metrics
  $ bodycomp mcp                          # MCP stdio server for AI assistants

DATA STORAGE:

  SQLite at ~/.local/share/bodycomp/bodycomp.db by default. Set
  backend: charm in ~/.config/bodycomp/config.yaml to store in Charm KV
  with encrypted cloud sync instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.GetLogLevel()
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.GetLogFormat())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		policy, err := cfg.GetMissingPolicy()
		if err != nil {
			return err
		}
		evaluator = scoring.NewEvaluator(policy)

		if !needsStorage(cmd) {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		logger.Debug("storage opened", zap.String("backend", cfg.GetBackend()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logging.Sync(logger)
		}
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// aiService builds the gateway-backed AI service from config.
func aiService() (*ai.Service, error) {
	if !cfg.GatewayEnabled() {
		return nil, fmt.Errorf("%w: set gateway.api_key in %s or BODYCOMP_GATEWAY_API_KEY",
			ai.ErrNotConfigured, config.GetConfigPath())
	}
	gw := cfg.GetGateway()
	return ai.NewService(ai.Options{
		BaseURL: gw.BaseURL,
		APIKey:  gw.APIKey,
		Timeout: gw.Timeout(),
		Logger:  logger,
	}, gw.VisionModel, gw.TextModel)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/bodycomp/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
