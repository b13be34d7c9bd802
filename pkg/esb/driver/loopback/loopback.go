// Package loopback provides an in-process stand-in for the radio hardware:
// two split buffers connected by a wire that moves committed packets from
// one side's outgoing ring into the other side's incoming ring.
//
// It exists for host-side development and tests; nothing here talks to real
// registers.
package loopback

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/esb.go/pkg/esb"
)

// wireRSSI is reported on every delivered packet. The wire has no air gap,
// so the signal is always perfect.
const wireRSSI = 20

// Radio implements esb.RadioDriver. Init only records the parameters.
type Radio struct {
	MaxPayloadSize uint8
	TxPower        esb.TxPower
	Addrs          esb.Addresses
	Inited         bool
}

// Init implements esb.RadioDriver.
func (r *Radio) Init(maxPayloadSize uint8, txPower esb.TxPower, addrs *esb.Addresses) {
	r.MaxPayloadSize = maxPayloadSize
	r.TxPower = txPower
	r.Addrs = *addrs
	r.Inited = true
	glog.V(1).Infof("loopback radio init: payload=%d power=%d channel=%d",
		maxPayloadSize, txPower, addrs.RFChannel)
}

// Clock implements esb.Timer. The wire needs no retries, so the timer never
// fires on its own.
type Clock struct {
	Inited bool
}

// Init implements esb.Timer.
func (c *Clock) Init() {
	c.Inited = true
	glog.V(1).Info("loopback timer init")
}

// Wire pumps packets between the interrupt-side handles of two buffers.
type Wire struct {
	// RetryInterval bounds how long a packet stays parked when the peer's
	// incoming ring is full.
	RetryInterval time.Duration

	a, b *esb.Irq
}

// NewWire connects two interrupt handle sets.
func NewWire(a, b *esb.Irq) *Wire {
	return &Wire{RetryInterval: time.Millisecond, a: a, b: b}
}

// Run moves packets in both directions until ctx is done. It plays the role
// of both radio interrupt handlers, so it only ever uses the non-suspending
// operations.
func (w *Wire) Run(ctx context.Context) error {
	retry := time.NewTicker(w.RetryInterval)
	defer retry.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.a.Pending():
			w.drain(w.a, w.b)
		case <-w.b.Pending():
			w.drain(w.b, w.a)
		case <-retry.C:
			// Packets parked behind a full peer ring, and commits made
			// without StartTx, get another chance here.
			w.drain(w.a, w.b)
			w.drain(w.b, w.a)
		}
	}
}

// drain transfers packets from src's outgoing ring to dst's incoming ring
// until src empties or dst runs out of space.
func (w *Wire) drain(src, dst *esb.Irq) {
	for {
		out, err := src.NextTransmit()
		if err != nil {
			if !errors.Is(err, esb.ErrEmpty) {
				glog.Errorf("loopback read: %v", err)
			}
			return
		}
		in, err := dst.GrantReceived()
		if err != nil {
			// Receiver full: leave the packet queued, the retry tick
			// will try again. A real receiver would simply not ack.
			glog.V(2).Infof("loopback receiver busy: %v", err)
			return
		}
		h := out.Header()
		h.RSSI = wireRSSI
		in.SetHeader(h)
		copy(in.Body(), out.Body())
		in.CommitAll()
		out.Release()
		glog.V(2).Infof("loopback delivered pipe=%d len=%d", h.Pipe, h.Length)
	}
}

// Link is a fully wired pair of endpoints over one loopback wire.
type Link struct {
	A, B *esb.App
	Wire *Wire
}

// NewLink builds two buffers with the given per-direction capacity, splits
// both and wires their interrupt sides together. It is the one-call setup
// used by the command-line tools and tests.
func NewLink(capacity int, addrs esb.Addresses, cfg esb.Config) (*Link, error) {
	bufA := esb.NewBuffer(capacity, capacity)
	bufB := esb.NewBuffer(capacity, capacity)

	appA, irqA, _, err := bufA.TrySplit(&Clock{}, &Radio{}, addrs, cfg)
	if err != nil {
		return nil, err
	}
	appB, irqB, _, err := bufB.TrySplit(&Clock{}, &Radio{}, addrs, cfg)
	if err != nil {
		return nil, err
	}
	return &Link{A: appA, B: appB, Wire: NewWire(irqA, irqB)}, nil
}
