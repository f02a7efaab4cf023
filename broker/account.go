package broker

import "sync"

// Account is one owner's ledger: the cash available to open new positions,
// the open positions that cash is deployed in, and the closed-position
// history. Open and history are disjoint; over the account's lifetime
// their union covers every position ever opened on it.
//
// Each account is its own mutual-exclusion scope. The engine holds the
// account lock for the whole of any mutating operation, so a position is
// never reachable from both collections at once.
type Account struct {
	Name string

	mu        sync.Mutex
	available float64
	positions []*Position
	history   []*Position
}

func newAccount(name string, deposit float64) *Account {
	return &Account{Name: name, available: deposit}
}

// Available returns the cash not currently deployed in open positions.
func (a *Account) Available() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.available
}

// Positions returns a snapshot of the open positions, oldest first.
func (a *Account) Positions() []*Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Position, len(a.positions))
	copy(out, a.positions)
	return out
}

// History returns a snapshot of the closed positions in close order.
func (a *Account) History() []*Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Position, len(a.history))
	copy(out, a.history)
	return out
}
