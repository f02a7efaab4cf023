package broker

import (
	"fmt"
	"time"

	"github.com/maufadel/trading-market-simulator/internal/id"
)

// Side is the direction of a position.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Position is a single trade against the simulated broker. It is open
// while ClosePrice is nil and closed for good once the engine sets it;
// closed positions are never mutated again. A position belongs to exactly
// one account: its open collection while open, its history once closed.
type Position struct {
	ID       string
	Symbol   string
	Side     Side
	OpenTime time.Time

	OpenPrice float64
	Units     float64

	// Risk levels carried on the position but not evaluated by the
	// engine; advancing time never triggers them.
	StopLoss   *float64
	TakeProfit *float64

	ClosePrice *float64
	CloseTime  time.Time
}

// NewPosition builds an open position. Units are fixed for the lifetime of
// the position as requestedCash / openPrice. Rejects any side other than
// Buy or Sell with ErrInvalidSide.
func NewPosition(symbol string, openTime time.Time, side Side, openPrice, units float64, stopLoss, takeProfit *float64) (*Position, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("new position %s: side %q: %w", symbol, side, ErrInvalidSide)
	}

	return &Position{
		ID:         id.New(),
		Symbol:     symbol,
		Side:       side,
		OpenTime:   openTime,
		OpenPrice:  openPrice,
		Units:      units,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, nil
}

// Closed reports whether the position has been closed.
func (p *Position) Closed() bool {
	return p.ClosePrice != nil
}

// Profit returns the profit generated by the position at refPrice, which
// can be negative. Once the position is closed refPrice is ignored and the
// recorded close price is used instead.
func (p *Position) Profit(refPrice float64) float64 {
	price := refPrice
	if p.ClosePrice != nil {
		price = *p.ClosePrice
	}

	if p.Side == Sell {
		return p.Units * (p.OpenPrice - price)
	}
	return p.Units * (price - p.OpenPrice)
}

// Valuation returns the cash value of the position at refPrice: the cash
// committed when it was opened plus the profit so far.
func (p *Position) Valuation(refPrice float64) float64 {
	return p.Units*p.OpenPrice + p.Profit(refPrice)
}
