package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "epv-cli",
	Short: "SaaS earnings power value analyzer",
	Long: "Resolves financials, market data and 10-K commentary for a ticker, estimates maintenance " +
		"vs growth spend with a language model, and values the company with the Greenwald EPV framework.",
	SilenceUsage: true,
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
