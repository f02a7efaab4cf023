package main

import (
	"os"

	"github.com/maufadel/trading-market-simulator/cmd/marketsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
