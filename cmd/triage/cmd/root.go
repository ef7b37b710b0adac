package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Cross-border payment message validation and failure triage",
	Long: `triage validates legacy MT103 and ISO 20022 payment messages against
declarative rulesets, applies SR2026 overlay checks, and classifies
payment-failure notifications by reason code for investigation.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of formatted text")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(failureCmd)
	rootCmd.AddCommand(routeCmd)
}
