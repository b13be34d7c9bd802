package esb

import (
	"context"
	"errors"

	"github.com/robotalks/esb.go/pkg/esb/ring"
)

// App is the application-side interface of a split Buffer. It is used
// outside the radio interrupt and may suspend; the interrupt side never
// does.
type App struct {
	prodToRadio    *ring.FrameProducer
	consFromRadio  *ring.FrameConsumer
	maximumPayload uint8
	pend           chan struct{}
}

// mapRingErr collapses the ring's error set to the public surface.
func mapRingErr(err error) error {
	switch {
	case errors.Is(err, ring.ErrGrantInProgress):
		return ErrGrantInProgress
	case errors.Is(err, ring.ErrInsufficientSize):
		return ErrQueueFull
	case errors.Is(err, ring.ErrEmpty):
		return ErrEmpty
	default:
		return ErrInternal
	}
}

// GrantPacket reserves room for one outgoing packet described by header.
//
// The grant's capacity is fixed by header.Length at reservation time and can
// only shrink at commit, never grow. Only one write grant may be outstanding
// at a time.
func (a *App) GrantPacket(h Header) (*PayloadW, error) {
	if h.Length > a.maximumPayload {
		return nil, ErrMaximumPacketExceeded
	}
	g, err := a.prodToRadio.Grant(HeaderLen + int(h.Length))
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadWFromApp(g, h), nil
}

// WaitGrantPacket is GrantPacket suspending on a full queue. It resumes when
// the interrupt side frees enough space, or fails when ctx is done.
func (a *App) WaitGrantPacket(ctx context.Context, h Header) (*PayloadW, error) {
	if h.Length > a.maximumPayload {
		return nil, ErrMaximumPacketExceeded
	}
	g, err := a.prodToRadio.WaitGrant(ctx, HeaderLen+int(h.Length))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapRingErr(err)
	}
	return newPayloadWFromApp(g, h), nil
}

// StartTx requests that the radio interrupt be scheduled to drain the
// outgoing queue. It never blocks and gives no guarantee of when the
// interrupt context actually runs, only that it becomes eligible.
//
// The radio sends until the queue is drained; call StartTx again if the
// queue empties before new packets are committed.
func (a *App) StartTx() {
	select {
	case a.pend <- struct{}{}:
	default:
	}
}

// MsgReady reports whether ReadPacket would return a packet. The probe does
// not consume or release anything.
func (a *App) MsgReady() bool {
	_, err := a.consFromRadio.Read()
	return err == nil
}

// ReadPacket returns the oldest received packet, or ErrEmpty. Reading the
// same packet again before Release yields the same packet.
func (a *App) ReadPacket() (*PayloadR, error) {
	g, err := a.consFromRadio.Read()
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadR(g), nil
}

// WaitReadPacket is ReadPacket suspending on an empty queue. It resumes when
// the interrupt side commits a packet, or fails when ctx is done.
func (a *App) WaitReadPacket(ctx context.Context) (*PayloadR, error) {
	g, err := a.consFromRadio.WaitRead(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapRingErr(err)
	}
	return newPayloadR(g), nil
}

// MaxPayloadSize returns the configured per-packet payload bound.
func (a *App) MaxPayloadSize() int {
	return int(a.maximumPayload)
}

// Split divides the App into independent sender and receiver halves so the
// two directions can live on different goroutines.
func (a *App) Split() (*Sender, *Receiver) {
	return &Sender{
			prodToRadio:    a.prodToRadio,
			maximumPayload: a.maximumPayload,
			pend:           a.pend,
		}, &Receiver{
			consFromRadio:  a.consFromRadio,
			maximumPayload: a.maximumPayload,
		}
}

// Sender is the outgoing half of an App.
type Sender struct {
	prodToRadio    *ring.FrameProducer
	maximumPayload uint8
	pend           chan struct{}
}

// GrantPacket reserves room for one outgoing packet. See App.GrantPacket.
func (s *Sender) GrantPacket(h Header) (*PayloadW, error) {
	if h.Length > s.maximumPayload {
		return nil, ErrMaximumPacketExceeded
	}
	g, err := s.prodToRadio.Grant(HeaderLen + int(h.Length))
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadWFromApp(g, h), nil
}

// WaitGrantPacket suspends on a full queue. See App.WaitGrantPacket.
func (s *Sender) WaitGrantPacket(ctx context.Context, h Header) (*PayloadW, error) {
	if h.Length > s.maximumPayload {
		return nil, ErrMaximumPacketExceeded
	}
	g, err := s.prodToRadio.WaitGrant(ctx, HeaderLen+int(h.Length))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapRingErr(err)
	}
	return newPayloadWFromApp(g, h), nil
}

// StartTx pends the radio interrupt. See App.StartTx.
func (s *Sender) StartTx() {
	select {
	case s.pend <- struct{}{}:
	default:
	}
}

// MaxPayloadSize returns the configured per-packet payload bound.
func (s *Sender) MaxPayloadSize() int {
	return int(s.maximumPayload)
}

// Receiver is the incoming half of an App.
type Receiver struct {
	consFromRadio  *ring.FrameConsumer
	maximumPayload uint8
}

// MsgReady reports whether a received packet is waiting.
func (r *Receiver) MsgReady() bool {
	_, err := r.consFromRadio.Read()
	return err == nil
}

// ReadPacket returns the oldest received packet, or ErrEmpty.
func (r *Receiver) ReadPacket() (*PayloadR, error) {
	g, err := r.consFromRadio.Read()
	if err != nil {
		return nil, mapRingErr(err)
	}
	return newPayloadR(g), nil
}

// WaitReadPacket suspends on an empty queue. See App.WaitReadPacket.
func (r *Receiver) WaitReadPacket(ctx context.Context) (*PayloadR, error) {
	g, err := r.consFromRadio.WaitRead(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapRingErr(err)
	}
	return newPayloadR(g), nil
}

// MaxPayloadSize returns the configured per-packet payload bound.
func (r *Receiver) MaxPayloadSize() int {
	return int(r.maximumPayload)
}
