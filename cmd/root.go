package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "riskdash",
	Short: "Project risk dashboard for Current RMS opportunities",
	Long:  "Fetches upcoming opportunities from Current RMS, scores their delivery risk across eight weighted factors, and serves a tiered dashboard with filtering, assessment save-back, and XLSX export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
