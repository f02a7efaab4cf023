// Package backtest drives a broker engine through a full simulated
// session, one minute at a time.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/maufadel/trading-market-simulator/broker"
	"github.com/maufadel/trading-market-simulator/strategies"
)

// RunnerOptions controls how the session runner behaves.
type RunnerOptions struct {
	// Accounts the runner reports on in Result, and flattens when
	// CloseEnd is set.
	Accounts []string
	// If true, close every position still open on the listed accounts
	// once the session is exhausted, at each symbol's last seen close.
	CloseEnd bool
}

// Runner drives an engine forward bar by bar, handing each consumed bar to
// the strategy.
type Runner struct {
	Engine   *broker.Engine
	Strategy strategies.BarStrategy
	Options  RunnerOptions
}

// Result summarizes one simulated session.
type Result struct {
	Bars     int
	Start    time.Time
	End      time.Time
	Balances map[string]float64
}

// Run executes the session loop: advance the clock one minute, then let
// the strategy react to the bar just consumed, until the session is
// exhausted.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}

	var res Result
	lastClose := make(map[string]float64)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		bs, ok := r.Engine.AdvanceTime()
		if !ok {
			break
		}

		if res.Start.IsZero() {
			res.Start = bs.Time
		}
		res.End = bs.Time
		res.Bars++

		for symbol, bar := range bs.Bars {
			lastClose[symbol] = bar.Close
		}

		if err := r.Strategy.OnBar(ctx, r.Engine, bs); err != nil {
			return Result{}, fmt.Errorf("backtest: strategy %s: %w", r.Strategy.Name(), err)
		}
	}

	if r.Options.CloseEnd {
		if err := r.closeAll(lastClose); err != nil {
			return Result{}, err
		}
	}

	res.Balances = make(map[string]float64, len(r.Options.Accounts))
	for _, name := range r.Options.Accounts {
		bal, err := r.Engine.Balance(name)
		if err != nil {
			return Result{}, err
		}
		res.Balances[name] = bal
	}

	return res, nil
}

// closeAll flattens the listed accounts at each symbol's last seen close.
// The session is exhausted by now, so the close price is always passed
// explicitly. A position whose symbol never traded falls back to its own
// open price.
func (r *Runner) closeAll(lastClose map[string]float64) error {
	for _, name := range r.Options.Accounts {
		positions, err := r.Engine.Positions(name)
		if err != nil {
			return err
		}
		for _, p := range positions {
			price, ok := lastClose[p.Symbol]
			if !ok {
				price = p.OpenPrice
			}
			if err := r.Engine.ClosePosition(name, p, &price); err != nil {
				return err
			}
		}
	}
	return nil
}
