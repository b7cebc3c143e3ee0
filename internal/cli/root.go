package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "claritytrack",
	Short: "ClarityTracking conversion tracking backend",
	Long: `claritytrack runs the ClarityTracking backend: event ingestion,
event match quality scoring, duplicate detection and the dashboard API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
}
