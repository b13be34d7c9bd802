package ring

import (
	"context"
	"encoding/binary"
	"errors"
)

// frameHeaderLen is the per-frame bookkeeping overhead: a little-endian
// length prefix recording the committed size of the frame.
const frameHeaderLen = 2

// FrameOverhead is the number of ring bytes consumed by a frame beyond its
// own content.
const FrameOverhead = frameHeaderLen

// FrameProducer writes frames into the ring. There must be exactly one,
// used from a single context.
type FrameProducer struct {
	b *Buffer
}

// Grant reserves room for one frame of up to sz bytes. The reservation is
// not visible to the consumer until committed.
func (p *FrameProducer) Grant(sz int) (*FrameGrantW, error) {
	if sz < 0 || sz > 0xFFFF {
		// The length prefix is 16 bits.
		return nil, ErrInsufficientSize
	}
	g, err := p.b.grant(sz + frameHeaderLen)
	if err != nil {
		return nil, err
	}
	return &FrameGrantW{g: g}, nil
}

// WaitGrant suspends until a reservation of sz bytes can be satisfied or
// the context is done. It must not be used from interrupt-context code.
func (p *FrameProducer) WaitGrant(ctx context.Context, sz int) (*FrameGrantW, error) {
	for {
		g, err := p.Grant(sz)
		if err == nil || !errors.Is(err, ErrInsufficientSize) {
			return g, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.b.writable:
			// Coalesced edge: re-check by retrying the grant.
		}
	}
}

// FrameConsumer reads frames from the ring. There must be exactly one,
// used from a single context.
type FrameConsumer struct {
	b *Buffer
}

// Read returns the oldest committed, unreleased frame. Reading is a peek:
// calling Read again before releasing yields the same frame, never the
// next one.
func (c *FrameConsumer) Read() (*FrameGrantR, error) {
	g, err := c.b.peek()
	if err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint16(g.buf[:frameHeaderLen]))
	return &FrameGrantR{g: g, buf: g.buf[frameHeaderLen : frameHeaderLen+n]}, nil
}

// WaitRead suspends until a frame is available or the context is done. It
// must not be used from interrupt-context code.
func (c *FrameConsumer) WaitRead(ctx context.Context) (*FrameGrantR, error) {
	for {
		g, err := c.Read()
		if err == nil || !errors.Is(err, ErrEmpty) {
			return g, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.b.readable:
		}
	}
}

// FrameGrantW is an exclusively owned, contiguous reservation for one
// outgoing frame. Exactly one of Commit or Abort must be called.
type FrameGrantW struct {
	g *writeGrant
}

// Bytes exposes the reserved frame storage. The slice aliases ring memory
// and stays valid (and address-stable) until Commit or Abort.
func (g *FrameGrantW) Bytes() []byte {
	return g.g.buf[frameHeaderLen:]
}

// Commit publishes the first used bytes as one frame. used is clamped to
// the reservation size; the remainder returns to free space.
func (g *FrameGrantW) Commit(used int) {
	if g.g == nil {
		return
	}
	if used < 0 {
		used = 0
	}
	if max := len(g.g.buf) - frameHeaderLen; used > max {
		used = max
	}
	binary.LittleEndian.PutUint16(g.g.buf[:frameHeaderLen], uint16(used))
	g.g.commit(used + frameHeaderLen)
	g.g = nil
}

// Abort discards the reservation. The consumer never sees it.
func (g *FrameGrantW) Abort() {
	if g.g == nil {
		return
	}
	g.g.abort()
	g.g = nil
}

// FrameGrantR is a view over one committed frame. The frame's storage is
// freed only by Release; reading alone never frees it.
type FrameGrantR struct {
	g   *readGrant
	buf []byte
}

// Bytes exposes the frame content. The slice aliases ring memory and stays
// valid until Release.
func (g *FrameGrantR) Bytes() []byte {
	return g.buf
}

// Release consumes the grant and returns the frame's storage to the
// producer. Safe to call at most once; later calls are no-ops.
func (g *FrameGrantR) Release() {
	if g.g == nil {
		return
	}
	g.g.release(frameHeaderLen + len(g.buf))
	g.g = nil
}
