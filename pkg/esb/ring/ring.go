package ring

import (
	"sync/atomic"
)

// Buffer is the raw byte-level bip buffer underneath the framed layer.
//
// Index model (all offsets in 0..=cap):
//   - write: end of committed data, moved only by the producer.
//   - read: start of unreleased data, moved only by the consumer.
//   - last: watermark marking the end of valid data when the producer has
//     wrapped below the reader.
//   - reserve: end of the outstanding reservation; producer-owned, touched
//     only while writeBusy is held.
type Buffer struct {
	buf []byte

	write   atomic.Uint32
	read    atomic.Uint32
	last    atomic.Uint32
	reserve uint32

	writeBusy atomic.Bool
	split     atomic.Bool

	// Edge-coalesced readiness signals (capacity 1). Wakers must re-check
	// ring state after receiving.
	readable chan struct{}
	writable chan struct{}
}

// NewBuffer creates a ring with fixed capacity. The storage is allocated
// once here and never grows.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		buf:      make([]byte, capacity),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

// Cap returns the ring capacity in bytes.
func (b *Buffer) Cap() int { return len(b.buf) }

// Split hands out the producer/consumer pair. It succeeds exactly once.
func (b *Buffer) Split() (*FrameProducer, *FrameConsumer, error) {
	if !b.split.CompareAndSwap(false, true) {
		return nil, nil, ErrAlreadySplit
	}
	return &FrameProducer{b: b}, &FrameConsumer{b: b}, nil
}

// Unsplit reverts a successful Split before the handles escape. It exists
// only so a multi-ring split can stay atomic when a sibling ring turns out
// to be taken already; using it with live handles is a contract violation.
func (b *Buffer) Unsplit() {
	b.split.Store(false)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// grant reserves sz contiguous bytes for the producer.
func (b *Buffer) grant(sz int) (*writeGrant, error) {
	if b.writeBusy.Swap(true) {
		return nil, ErrGrantInProgress
	}

	write := int(b.write.Load())
	read := int(b.read.Load())
	max := len(b.buf)
	inverted := write < read

	var start int
	switch {
	case !inverted && write+sz <= max:
		start = write
	case !inverted && sz < read:
		// Wrap ahead of the reader. The reservation must stay strictly
		// below read so that write==read still means empty.
		start = 0
	case inverted && write+sz < read:
		start = write
	default:
		b.writeBusy.Store(false)
		return nil, ErrInsufficientSize
	}

	b.reserve = uint32(start + sz)
	return &writeGrant{b: b, buf: b.buf[start : start+sz]}, nil
}

// peek returns a view over all committed, unreleased bytes. It does not
// consume anything: calling it twice yields the same region.
func (b *Buffer) peek() (*readGrant, error) {
	write := b.write.Load()
	last := b.last.Load()
	read := b.read.Load()

	// The reader has consumed up to the watermark while the writer sits
	// below it: valid data restarts at offset 0.
	if read == last && write < read {
		read = 0
		b.read.Store(0)
	}

	var sz uint32
	if write < read {
		sz = last - read
	} else {
		sz = write - read
	}
	if sz == 0 {
		return nil, ErrEmpty
	}
	return &readGrant{b: b, buf: b.buf[read : read+sz]}, nil
}

// writeGrant is an exclusively owned reservation. It must be finished with
// exactly one call to commit or abort.
type writeGrant struct {
	b   *Buffer
	buf []byte
}

// commit publishes the first used bytes of the reservation and returns the
// remainder to free space. used is clamped to the reservation size.
func (g *writeGrant) commit(used int) {
	b := g.b
	if b == nil {
		return
	}
	g.b = nil

	if used > len(g.buf) {
		used = len(g.buf)
	}
	if used < 0 {
		used = 0
	}

	write := b.write.Load()
	b.reserve -= uint32(len(g.buf) - used)
	newWrite := b.reserve

	if newWrite < write {
		// Inverted commit: data restarts at 0, the watermark pins the
		// end of the old run.
		b.last.Store(write)
	} else if newWrite > b.last.Load() {
		b.last.Store(uint32(len(b.buf)))
	}

	b.write.Store(newWrite)
	b.writeBusy.Store(false)
	signal(b.readable)
}

// abort discards the reservation without making anything visible.
func (g *writeGrant) abort() {
	b := g.b
	if b == nil {
		return
	}
	g.b = nil
	b.reserve = b.write.Load()
	b.writeBusy.Store(false)
}

// readGrant is a view over committed bytes. Releasing frees storage for the
// producer; until then the bytes stay occupied even after being read.
type readGrant struct {
	b   *Buffer
	buf []byte
}

// release frees the first used bytes of the grant.
func (g *readGrant) release(used int) {
	b := g.b
	if b == nil {
		return
	}
	g.b = nil

	if used > len(g.buf) {
		used = len(g.buf)
	}
	b.read.Add(uint32(used))
	signal(b.writable)
}
