package broker

import "errors"

// Engine failures are tagged sentinel errors so callers can branch on the
// kind with errors.Is. When more than one precondition fails at once the
// engine reports the first applicable one, in the order account existence,
// symbol existence, funds, side validity.
var (
	ErrUnknownAccount    = errors.New("account does not exist")
	ErrDuplicateAccount  = errors.New("account already exists")
	ErrUnknownSymbol     = errors.New("symbol not in market")
	ErrInsufficientFunds = errors.New("not enough cash available in account")
	ErrInvalidSide       = errors.New("position side must be buy or sell")
)
