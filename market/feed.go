package market

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable is returned when the market data provider cannot
// supply bars for the requested symbols and session.
var ErrDataUnavailable = errors.New("market data unavailable")

// Feed retrieves historical minute bars from a market data provider.
//
// Fetch returns one barset per minute, ordered by time, covering both the
// session open and session close minutes. Implementations must wrap
// ErrDataUnavailable when no data exists for the requested symbols/range
// so callers can tell "no data" apart from transport failures.
type Feed interface {
	Fetch(ctx context.Context, symbols []string, start, end time.Time) ([]Barset, error)
}
