package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// ExchangeTime is the exchange-local timezone all session windows are
// expressed in. Falls back to fixed EST when the tz database is missing.
var ExchangeTime = loadExchangeTime()

func loadExchangeTime() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// SessionBounds returns the regular session open (09:30) and close (16:00)
// for the given date, exchange-local.
func SessionBounds(date time.Time) (open, close time.Time) {
	d := date.In(ExchangeTime)
	open = time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ExchangeTime)
	close = time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ExchangeTime)
	return open, close
}

// Clock holds one trading day of minute bars and simulates the passing of
// time. Current exposes the bar the simulation is standing on; Advance
// consumes it and moves one minute forward.
type Clock struct {
	symbols []string
	feed    Feed

	bars   []Barset
	cursor int
}

func NewClock(symbols []string, feed Feed) *Clock {
	return &Clock{symbols: symbols, feed: feed}
}

// LoadSession fetches the minute bars for one trading day from the feed
// and rewinds the clock to the session open. Any previously loaded session
// is replaced. Wraps ErrDataUnavailable when the feed has no bars for the
// symbols/date.
func (c *Clock) LoadSession(ctx context.Context, date time.Time) error {
	open, close := SessionBounds(date)
	day := open.Format("2006-01-02")

	sets, err := c.feed.Fetch(ctx, c.symbols, open, close)
	if err != nil {
		return fmt.Errorf("load session %s: %w", day, err)
	}
	if len(sets) == 0 {
		return fmt.Errorf("load session %s: no bars for %v: %w", day, c.symbols, ErrDataUnavailable)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Time.Before(sets[j].Time) })

	c.bars = sets
	c.cursor = 0

	log.WithFields(log.Fields{
		"date":    day,
		"symbols": c.symbols,
		"bars":    len(sets),
	}).Info("session loaded")

	return nil
}

// Current returns the barset at the cursor, ok=false once the session is
// exhausted or when no bars are loaded.
func (c *Clock) Current() (Barset, bool) {
	if c.cursor >= len(c.bars) {
		return Barset{}, false
	}
	return c.bars[c.cursor], true
}

// Advance returns the barset the clock is standing on and then moves the
// cursor one minute forward, so the returned value equals what Current
// reported immediately before the call. Past the last bar it returns
// ok=false and leaves the cursor untouched.
func (c *Clock) Advance() (Barset, bool) {
	if c.cursor >= len(c.bars) {
		return Barset{}, false
	}
	bs := c.bars[c.cursor]
	c.cursor++
	return bs, true
}

// Reset rewinds the cursor to the session open without reloading data.
// Loading a different day is done with LoadSession.
func (c *Clock) Reset() {
	c.cursor = 0
}

// Len returns the number of bars in the loaded session.
func (c *Clock) Len() int {
	return len(c.bars)
}
