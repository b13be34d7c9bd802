package ring

import "errors"

var (
	// ErrGrantInProgress indicates a write grant is already outstanding.
	// Only one reservation may exist per ring at a time.
	ErrGrantInProgress = errors.New("grant in progress")
	// ErrInsufficientSize indicates the ring has no contiguous run of
	// free bytes large enough for the requested reservation.
	ErrInsufficientSize = errors.New("insufficient size")
	// ErrEmpty indicates no committed frame is available to read.
	ErrEmpty = errors.New("empty")
	// ErrAlreadySplit indicates the ring's handles were already handed out.
	ErrAlreadySplit = errors.New("already split")
)
