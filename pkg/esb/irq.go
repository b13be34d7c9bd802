package esb

import (
	"sync/atomic"

	"github.com/robotalks/esb.go/pkg/esb/ring"
)

// Irq is the interrupt-side interface of a split Buffer, consumed by the
// external retry state machine. Every operation is non-blocking: an
// interrupt handler must never suspend.
type Irq struct {
	prodToApp      *ring.FrameProducer
	consFromApp    *ring.FrameConsumer
	maximumPayload uint8
	pend           chan struct{}
	timerFlag      *atomic.Bool
	addrs          Addresses
	cfg            Config

	// Attempts counts transmissions of the current packet; maintained by
	// the retry state machine.
	Attempts uint8
}

// NextTransmit returns the oldest committed outgoing packet, or ErrEmpty.
// The packet stays queued until Release, so a failed transmission can be
// retried from the same grant.
func (q *Irq) NextTransmit() (*PayloadR, error) {
	g, err := q.consFromApp.Read()
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadR(g), nil
}

// GrantReceived reserves a maximum-size frame for an incoming packet. The
// radio's DMA engine writes the hardware packet (length byte onward) through
// DMAPointer; the caller completes the header with SetHeader and commits
// with CommitAll once reception finishes.
func (q *Irq) GrantReceived() (*PayloadW, error) {
	g, err := q.prodToApp.Grant(HeaderLen + int(q.maximumPayload))
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadWFromRadio(g), nil
}

// Pending exposes the pend signal set by App.StartTx. The channel carries
// coalesced edges: one receive may stand for several requests.
func (q *Irq) Pending() <-chan struct{} {
	return q.pend
}

// TimerFired consumes the cross-context timer flag. It returns true at most
// once per timer event.
func (q *Irq) TimerFired() bool {
	return q.timerFlag.Swap(false)
}

// Addresses returns the address configuration fixed at split time.
func (q *Irq) Addresses() Addresses {
	return q.addrs
}

// Config returns the link configuration fixed at split time.
func (q *Irq) Config() Config {
	return q.cfg
}

// MaxPayloadSize returns the configured per-packet payload bound.
func (q *Irq) MaxPayloadSize() int {
	return int(q.maximumPayload)
}

// IrqTimer is the handle given to the timer interrupt handler. Setting the
// flag tells the radio-adjacent logic to re-check state; the flag is only
// ever set here and consumed by Irq.TimerFired.
type IrqTimer struct {
	timerFlag *atomic.Bool
}

// Fire records a timer event.
func (t *IrqTimer) Fire() {
	t.timerFlag.Store(true)
}
