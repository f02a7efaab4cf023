package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marketsim",
	Short: "A paper-trading simulator driven by historical minute bars",
	Long: `Marketsim simulates one trading day against a simulated broker.

It downloads minute bars for a set of symbols, then advances time one
minute at a time while a strategy opens and closes leveraged-style
positions with spread-adjusted execution prices. Closed trades and equity
curves can be journaled to CSV or SQLite.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
