package esb

import "errors"

var (
	// ErrMaximumPacketExceeded indicates a grant request declared a payload
	// length beyond the configured maximum. Nothing was reserved.
	ErrMaximumPacketExceeded = errors.New("maximum packet size exceeded")
	// ErrGrantInProgress indicates a grant of the same kind is already
	// outstanding on the channel. Finish it first.
	ErrGrantInProgress = errors.New("grant in progress")
	// ErrQueueFull indicates the channel has no room for the requested
	// packet right now. Retry later or use the suspending variant.
	ErrQueueFull = errors.New("queue full")
	// ErrEmpty indicates no received packet is waiting.
	ErrEmpty = errors.New("queue empty")
	// ErrAlreadySplit indicates the buffer's one-time split was consumed.
	ErrAlreadySplit = errors.New("already split")
	// ErrInvalidParameters indicates configuration validation failed.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInternal covers unexpected low-level channel errors. The concrete
	// ring error set is deliberately not part of the public surface.
	ErrInternal = errors.New("internal error")
)
