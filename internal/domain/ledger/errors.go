package ledger

import "errors"

// Ledger errors.
var (
	ErrSamePair        = errors.New("pair members must differ")
	ErrWinnerNotInPair = errors.New("winner is not a member of the pair")
)
