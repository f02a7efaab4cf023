package market

import "time"

// Bar represents OHLC (Open, High, Low, Close) data for one minute of one symbol
type Bar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Barset holds the bar of every symbol that traded during a single minute.
type Barset struct {
	Time time.Time
	Bars map[string]Bar
}

// Bar returns the bar for symbol at this minute, ok=false when the symbol
// has a session gap here.
func (bs Barset) Bar(symbol string) (Bar, bool) {
	b, ok := bs.Bars[symbol]
	return b, ok
}

// Has reports whether symbol traded during this minute.
func (bs Barset) Has(symbol string) bool {
	_, ok := bs.Bars[symbol]
	return ok
}
