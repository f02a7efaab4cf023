package strategies

import (
	"context"

	"github.com/maufadel/trading-market-simulator/broker"
	"github.com/maufadel/trading-market-simulator/market"
)

// Noop does nothing.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) OnBar(context.Context, *broker.Engine, market.Barset) error {
	return nil
}
