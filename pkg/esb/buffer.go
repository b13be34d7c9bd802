package esb

import (
	"sync/atomic"

	"github.com/robotalks/esb.go/pkg/esb/ring"
)

// Buffer is the backing structure for one ESB link. It owns the storage for
// both directional channels and is intended to live for the whole process.
//
// A Buffer starts unsplit. TrySplit distributes the producer/consumer
// handles exactly once; the transition can never be repeated or undone.
type Buffer struct {
	appToRadio *ring.Buffer
	radioToApp *ring.Buffer

	// timerFlag is the single cross-context signal outside the rings:
	// set by the timer interrupt, observed and cleared by the radio
	// interrupt logic.
	timerFlag atomic.Bool

	// pend requests that the radio interrupt become eligible to run.
	// Capacity 1, edge-coalesced.
	pend chan struct{}

	split atomic.Bool
}

// NewBuffer allocates a buffer with the given per-direction capacities in
// bytes (headers and per-frame overhead included). All storage is
// established here; nothing is allocated on the packet path.
func NewBuffer(outCap, inCap int) *Buffer {
	return &Buffer{
		appToRadio: ring.NewBuffer(outCap),
		radioToApp: ring.NewBuffer(inCap),
		pend:       make(chan struct{}, 1),
	}
}

// TrySplit splits the buffer into the application handle set, the interrupt
// handle set and the timer-interrupt handle. It succeeds at most once per
// buffer; every later call fails with ErrAlreadySplit, as does a call made
// after an inner ring was somehow split on its own.
//
// On success the radio driver and timer are initialized exactly once, in
// that order: the radio's register state must be valid before its interrupt
// may legitimately fire.
func (b *Buffer) TrySplit(timer Timer, radio RadioDriver, addrs Addresses, cfg Config) (*App, *Irq, *IrqTimer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if !b.split.CompareAndSwap(false, true) {
		return nil, nil, nil, ErrAlreadySplit
	}

	atrProd, atrCons, err := b.appToRadio.Split()
	if err != nil {
		b.split.Store(false)
		return nil, nil, nil, ErrAlreadySplit
	}
	rtaProd, rtaCons, err := b.radioToApp.Split()
	if err != nil {
		// Keep the whole operation atomic: hand nothing out.
		b.appToRadio.Unsplit()
		b.split.Store(false)
		return nil, nil, nil, ErrAlreadySplit
	}

	b.timerFlag.Store(false)

	app := &App{
		prodToRadio:    atrProd,
		consFromRadio:  rtaCons,
		maximumPayload: cfg.MaxPayloadSize,
		pend:           b.pend,
	}
	irq := &Irq{
		prodToApp:      rtaProd,
		consFromApp:    atrCons,
		maximumPayload: cfg.MaxPayloadSize,
		pend:           b.pend,
		timerFlag:      &b.timerFlag,
		addrs:          addrs,
		cfg:            cfg,
	}
	irqTimer := &IrqTimer{timerFlag: &b.timerFlag}

	radio.Init(cfg.MaxPayloadSize, cfg.TxPower, &irq.addrs)
	timer.Init()

	return app, irq, irqTimer, nil
}
