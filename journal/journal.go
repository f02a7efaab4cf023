package journal

import "time"

// TradeRecord is one closed position.
type TradeRecord struct {
	PositionID string
	Account    string
	Symbol     string
	Side       string
	Units      float64
	OpenPrice  float64
	ClosePrice float64
	OpenTime   time.Time
	CloseTime  time.Time
	Profit     float64
}

// EquitySnapshot is one account's worth at a single minute of the session:
// available cash plus the valuation of every open position.
type EquitySnapshot struct {
	Time          time.Time
	Account       string
	Cash          float64
	Equity        float64
	OpenPositions int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that drops every record.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
