package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maufadel/trading-market-simulator/alpaca"
	"github.com/maufadel/trading-market-simulator/backtest"
	"github.com/maufadel/trading-market-simulator/broker"
	"github.com/maufadel/trading-market-simulator/config"
	"github.com/maufadel/trading-market-simulator/journal"
	"github.com/maufadel/trading-market-simulator/market"
	"github.com/maufadel/trading-market-simulator/polygon"
	"github.com/maufadel/trading-market-simulator/replay"
	"github.com/maufadel/trading-market-simulator/strategies"
)

var (
	cfgFile string
	verbose bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a one-day simulated session",
	Long: `Run loads the configured session, opens the configured account and
drives the market minute by minute until the session is exhausted.

Feed credentials can come from the config file or from the environment
(ALPACA_KEY_ID, ALPACA_SECRET_KEY, POLYGON_API_KEY), including a .env file
in the working directory.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to config file (YAML or JSON)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(runCmd)
}

func runSession(c *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	// Best effort; credentials may come from the real environment.
	_ = godotenv.Load()

	cfg := config.Default()
	if cfgFile != "" {
		var err error
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
	}
	applyEnv(cfg)

	feed, err := buildFeed(cfg)
	if err != nil {
		return err
	}

	j, err := buildJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	assets := make([]market.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets = append(assets, market.Asset{Symbol: a.Symbol, Spread: a.Spread})
	}

	date, err := cfg.Session.ParseDate()
	if err != nil {
		return err
	}

	ctx := context.Background()

	engine, err := broker.New(ctx, assets, feed, date, j)
	if err != nil {
		return err
	}

	if err := engine.OpenAccount(cfg.Account.Name, cfg.Account.Deposit); err != nil {
		return err
	}

	runner := &backtest.Runner{
		Engine:   engine,
		Strategy: strategies.Noop{},
		Options: backtest.RunnerOptions{
			Accounts: []string{cfg.Account.Name},
			CloseEnd: cfg.Session.CloseEnd,
		},
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	history, err := engine.History(cfg.Account.Name)
	if err != nil {
		return err
	}

	fmt.Printf("session %s .. %s, %d bars\n", res.Start.Format("15:04"), res.End.Format("15:04"), res.Bars)
	fmt.Printf("account %s: balance %.2f, %d closed positions\n",
		cfg.Account.Name, res.Balances[cfg.Account.Name], len(history))

	return nil
}

// applyEnv fills credentials left empty by the config file.
func applyEnv(cfg *config.Config) {
	if cfg.Feed.KeyID == "" {
		cfg.Feed.KeyID = os.Getenv("ALPACA_KEY_ID")
	}
	if cfg.Feed.SecretKey == "" {
		cfg.Feed.SecretKey = os.Getenv("ALPACA_SECRET_KEY")
	}
	if cfg.Feed.APIKey == "" {
		cfg.Feed.APIKey = os.Getenv("POLYGON_API_KEY")
	}
}

func buildFeed(cfg *config.Config) (market.Feed, error) {
	switch cfg.Feed.Provider {
	case "alpaca":
		if cfg.Feed.KeyID == "" || cfg.Feed.SecretKey == "" {
			return nil, fmt.Errorf("alpaca credentials missing (config or ALPACA_KEY_ID/ALPACA_SECRET_KEY)")
		}
		return alpaca.NewClient(cfg.Feed.KeyID, cfg.Feed.SecretKey), nil
	case "polygon":
		if cfg.Feed.APIKey == "" {
			return nil, fmt.Errorf("polygon api key missing (config or POLYGON_API_KEY)")
		}
		return polygon.NewFeed(cfg.Feed.APIKey), nil
	case "csv":
		return replay.NewCSVFeed(cfg.Feed.Dir), nil
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
	}
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Discard{}, nil
	}
}
