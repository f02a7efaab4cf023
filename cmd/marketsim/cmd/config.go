package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maufadel/trading-market-simulator/config"
)

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Write a default config file",
	Long:  `Writes a default configuration to the given path (default marketsim.yaml).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		path := "marketsim.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
