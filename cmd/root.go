package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "disruption-cli",
	Short: "Supply chain disruption scoring pipeline",
	Long:  "Ingests disruption observations from weather, earthquake, news and transport feeds, scores them for confidence, relevance and impact, and produces prioritized alerts.",
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
