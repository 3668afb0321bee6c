package main

import (
	"os"

	"github.com/lshigami/heartscan/internal/logger"
	"github.com/spf13/cobra"
)

// @title HeartScan Assessment API
// @version 1.0
// @description Self-assessment scoring engine: question banks, response collection, scoring, classification, validity and retake gating.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

var rootCmd = &cobra.Command{
	Use:   "heartscan",
	Short: "Assessment scoring service",
	Long: `heartscan serves the attachment style, relationship pattern and dating style
assessments: it collects answers, scores and classifies them, evaluates
answer validity and enforces retake cooldowns.`,
	SilenceUsage: true,
}

func main() {
	logger.Init()
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newBanksCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
