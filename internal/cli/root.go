package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routine-planner/internal/config"
	"routine-planner/internal/logger"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "planner",
		Short:         "Daily planner: tasks, routines and wishes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default $PLANNER_CONFIG or planner.yaml)")
}

// Execute runs the command line until ctx is cancelled or the command ends.
func Execute(ctx context.Context) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(carryOverCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// bootstrap loads config, builds the logger and wires the app.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}
