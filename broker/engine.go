package broker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maufadel/trading-market-simulator/journal"
	"github.com/maufadel/trading-market-simulator/market"
)

// Engine is the simulated broker. It owns the market clock, the asset
// catalog and every account opened against it, and enforces the trading
// invariants as cash moves between available and deployed in open
// positions.
//
// All execution prices come from the clock's current bar, never from a
// future one: advancing time and trading against the displayed prices are
// strictly separate steps.
type Engine struct {
	catalog *market.Catalog
	clock   *market.Clock
	journal journal.Journal

	mu       sync.RWMutex
	accounts map[string]*Account
}

// New builds an engine trading the given assets against prices from feed
// and loads the session for date. A zero date means the current date in
// the exchange timezone. A nil journal discards all records.
func New(ctx context.Context, assets []market.Asset, feed market.Feed, date time.Time, j journal.Journal) (*Engine, error) {
	catalog := market.NewCatalog(assets)
	clock := market.NewClock(catalog.Symbols(), feed)

	if date.IsZero() {
		date = time.Now().In(market.ExchangeTime)
	}
	if err := clock.LoadSession(ctx, date); err != nil {
		return nil, err
	}

	if j == nil {
		j = journal.Discard{}
	}

	return &Engine{
		catalog: catalog,
		clock:   clock,
		journal: j,

		accounts: make(map[string]*Account),
	}, nil
}

// OpenAccount creates a new account holding initialDeposit in cash and no
// positions.
func (e *Engine) OpenAccount(name string, initialDeposit float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.accounts[name]; ok {
		return fmt.Errorf("open account %q: %w", name, ErrDuplicateAccount)
	}
	e.accounts[name] = newAccount(name, initialDeposit)
	return nil
}

func (e *Engine) account(name string) (*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, ok := e.accounts[name]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", name, ErrUnknownAccount)
	}
	return a, nil
}

// Deposit adds amount to the account's available cash. The amount is not
// validated; keeping deposits positive is the caller's responsibility.
func (e *Engine) Deposit(name string, amount float64) error {
	a, err := e.account(name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.available += amount
	a.mu.Unlock()
	return nil
}

// OpenPosition opens a buy or sell position worth requestedCash of symbol
// at the close of the current bar. Buys execute at close plus the symbol's
// spread; sells execute at the close unmodified, with the spread charged
// when the position is closed instead. Preconditions are checked in order
// and the first failure wins; nothing is mutated on failure.
func (e *Engine) OpenPosition(accountName, symbol string, side Side, requestedCash float64, stopLoss, takeProfit *float64) (*Position, error) {
	a, err := e.account(accountName)
	if err != nil {
		return nil, err
	}

	cur, ok := e.clock.Current()
	if !e.catalog.Known(symbol) || !ok || !cur.Has(symbol) {
		return nil, fmt.Errorf("open position %s: %w", symbol, ErrUnknownSymbol)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if requestedCash > a.available {
		return nil, fmt.Errorf("open position %s: need %v, have %v: %w", symbol, requestedCash, a.available, ErrInsufficientFunds)
	}
	if !side.Valid() {
		return nil, fmt.Errorf("open position %s: side %q: %w", symbol, side, ErrInvalidSide)
	}

	openPrice := cur.Bars[symbol].Close
	if side == Buy {
		openPrice += e.catalog.Spread(symbol)
	}

	pos, err := NewPosition(symbol, cur.Time, side, openPrice, requestedCash/openPrice, stopLoss, takeProfit)
	if err != nil {
		return nil, err
	}

	a.positions = append(a.positions, pos)
	a.available -= requestedCash
	return pos, nil
}

// ClosePosition closes pos at *price, or at the close of the current bar
// for its symbol when price is nil. Sells have the symbol's spread added
// to the recorded close price, realizing the spread cost deferred at open.
// The position moves from the account's open collection to its history and
// the account is credited with the position's valuation.
//
// Whether pos was actually opened on accountName is not verified.
// Closing an already-closed position is rejected.
func (e *Engine) ClosePosition(accountName string, pos *Position, price *float64) error {
	a, err := e.account(accountName)
	if err != nil {
		return err
	}
	return e.close(a, pos, price)
}

func (e *Engine) close(a *Account, pos *Position, price *float64) error {
	var execPrice float64
	if price != nil {
		execPrice = *price
	} else {
		cur, ok := e.clock.Current()
		if !ok || !cur.Has(pos.Symbol) {
			return fmt.Errorf("close position %s: no current bar: %w", pos.Symbol, ErrUnknownSymbol)
		}
		execPrice = cur.Bars[pos.Symbol].Close
	}

	closePrice := execPrice
	if pos.Side == Sell {
		closePrice += e.catalog.Spread(pos.Symbol)
	}

	// Close timestamp comes from the clock even when the price was given
	// explicitly. Past the end of the session it stays zero.
	var closeTime time.Time
	if cur, ok := e.clock.Current(); ok {
		closeTime = cur.Time
	}

	a.mu.Lock()

	if pos.Closed() {
		a.mu.Unlock()
		return fmt.Errorf("close position %s: %s already closed", pos.Symbol, pos.ID)
	}

	pos.ClosePrice = &closePrice
	pos.CloseTime = closeTime

	for i, p := range a.positions {
		if p == pos {
			a.positions = append(a.positions[:i], a.positions[i+1:]...)
			break
		}
	}
	a.history = append(a.history, pos)
	a.available += pos.Valuation(execPrice)

	a.mu.Unlock()

	if err := e.journal.RecordTrade(journal.TradeRecord{
		PositionID: pos.ID,
		Account:    a.Name,
		Symbol:     pos.Symbol,
		Side:       string(pos.Side),
		Units:      pos.Units,
		OpenPrice:  pos.OpenPrice,
		ClosePrice: closePrice,
		OpenTime:   pos.OpenTime,
		CloseTime:  closeTime,
		Profit:     pos.Profit(execPrice),
	}); err != nil {
		log.WithError(err).WithField("position", pos.ID).Warn("journal trade record failed")
	}

	return nil
}

// ClosePositions closes every open position for symbol on the account, in
// the order they were opened, and returns the closed set. The account and
// symbol checks happen once, before any position is touched. An account
// with no open positions for the symbol yields an empty set and no error.
func (e *Engine) ClosePositions(accountName, symbol string, price *float64) ([]*Position, error) {
	a, err := e.account(accountName)
	if err != nil {
		return nil, err
	}

	cur, ok := e.clock.Current()
	if !e.catalog.Known(symbol) || !ok || !cur.Has(symbol) {
		return nil, fmt.Errorf("close positions %s: %w", symbol, ErrUnknownSymbol)
	}

	a.mu.Lock()
	toClose := make([]*Position, 0)
	for _, p := range a.positions {
		if p.Symbol == symbol {
			toClose = append(toClose, p)
		}
	}
	a.mu.Unlock()

	for _, p := range toClose {
		if err := e.close(a, p, price); err != nil {
			return nil, err
		}
	}
	return toClose, nil
}

// AdvanceTime simulates the passing of one minute and returns the bar
// consumed, ok=false once the session is exhausted. Stop-loss and
// take-profit levels on open positions are not evaluated here.
func (e *Engine) AdvanceTime() (market.Barset, bool) {
	bs, ok := e.clock.Advance()
	if !ok {
		return market.Barset{}, false
	}

	e.snapshotEquity(bs)
	return bs, true
}

// snapshotEquity journals one equity row per account for the bar just
// consumed, marking open positions at that bar's close. A symbol with a
// session gap at this minute is marked at its open price.
func (e *Engine) snapshotEquity(bs market.Barset) {
	e.mu.RLock()
	accounts := make([]*Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		accounts = append(accounts, a)
	}
	e.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	for _, a := range accounts {
		a.mu.Lock()
		cash := a.available
		open := len(a.positions)
		equity := cash
		for _, p := range a.positions {
			ref := p.OpenPrice
			if b, ok := bs.Bar(p.Symbol); ok {
				ref = b.Close
			}
			equity += p.Valuation(ref)
		}
		a.mu.Unlock()

		if err := e.journal.RecordEquity(journal.EquitySnapshot{
			Time:          bs.Time,
			Account:       a.Name,
			Cash:          cash,
			Equity:        equity,
			OpenPositions: open,
		}); err != nil {
			log.WithError(err).WithField("account", a.Name).Warn("journal equity record failed")
		}
	}
}

// Current returns the barset the simulation is standing on, ok=false when
// the session is exhausted.
func (e *Engine) Current() (market.Barset, bool) {
	return e.clock.Current()
}

// Balance returns the account's available cash.
func (e *Engine) Balance(name string) (float64, error) {
	a, err := e.account(name)
	if err != nil {
		return 0, err
	}
	return a.Available(), nil
}

// Positions returns the account's open positions, oldest first.
func (e *Engine) Positions(name string) ([]*Position, error) {
	a, err := e.account(name)
	if err != nil {
		return nil, err
	}
	return a.Positions(), nil
}

// History returns the account's closed positions in close order.
func (e *Engine) History(name string) ([]*Position, error) {
	a, err := e.account(name)
	if err != nil {
		return nil, err
	}
	return a.History(), nil
}

// Reset rewinds the session to the market open, or loads a different day
// when date is non-nil. Resetting while accounts hold open positions can
// leave their ledgers inconsistent with the new price series; the caller
// owns that risk.
func (e *Engine) Reset(ctx context.Context, date *time.Time) error {
	if date == nil {
		e.clock.Reset()
		return nil
	}
	return e.clock.LoadSession(ctx, *date)
}
