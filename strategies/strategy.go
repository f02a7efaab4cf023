package strategies

import (
	"context"

	"github.com/maufadel/trading-market-simulator/broker"
	"github.com/maufadel/trading-market-simulator/market"
)

// BarStrategy is called once per minute with the barset the simulation has
// just advanced to. Implementations trade through the engine; the engine
// itself never calls a strategy.
type BarStrategy interface {
	Name() string
	OnBar(ctx context.Context, engine *broker.Engine, bs market.Barset) error
}
