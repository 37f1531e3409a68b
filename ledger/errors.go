package ledger

import "errors"

// Rejection reasons. These describe market conditions, not bugs: the
// scheduler absorbs them, reports them on the event stream, and keeps
// going.
var (
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrPositionLimit    = errors.New("position size limit")
)

// Contract violations. A strategy or scheduler asking for these has a
// logic bug; the run must abort.
var (
	ErrNoPosition         = errors.New("no such position")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidShares      = errors.New("invalid share count")
	ErrInvalidPrice       = errors.New("invalid price")
)

// IsRejection reports whether err is a non-fatal order rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInsufficientCash) || errors.Is(err, ErrPositionLimit)
}
