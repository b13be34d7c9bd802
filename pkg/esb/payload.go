package esb

import (
	"unsafe"

	"github.com/robotalks/esb.go/pkg/esb/ring"
)

// PayloadW is an exclusively owned reservation for one outgoing or incoming
// packet. The encoded header occupies the first four bytes of the frame from
// construction on, so Pipe and PayloadLen are queryable before commit.
type PayloadW struct {
	g *ring.FrameGrantW
}

// newPayloadWFromApp wraps an application-side grant and stamps the header
// into the reservation immediately.
func newPayloadWFromApp(g *ring.FrameGrantW, h Header) *PayloadW {
	p := &PayloadW{g: g}
	p.SetHeader(h)
	return p
}

// newPayloadWFromRadio wraps an interrupt-side grant for an incoming packet.
// The DMA engine fills bytes 2.. itself; the header is completed afterwards
// with SetHeader once pipe and RSSI are known.
func newPayloadWFromRadio(g *ring.FrameGrantW) *PayloadW {
	return &PayloadW{g: g}
}

// SetHeader (re)writes the encoded header into the reservation.
func (p *PayloadW) SetHeader(h Header) {
	b := h.Bytes()
	copy(p.g.Bytes()[:HeaderLen], b[:])
}

// Header decodes the header currently stored in the reservation.
func (p *PayloadW) Header() Header {
	var b [HeaderLen]byte
	copy(b[:], p.g.Bytes()[:HeaderLen])
	return HeaderFromBytes(b)
}

// Pipe returns the packet's pipe without decoding the whole header.
func (p *PayloadW) Pipe() uint8 {
	return p.g.Bytes()[pipeIdx]
}

// PayloadLen returns the payload length currently declared in the header.
func (p *PayloadW) PayloadLen() int {
	return int(p.g.Bytes()[lengthIdx])
}

// Body exposes the writable payload region after the header. The slice
// aliases ring storage and stays valid until commit or abort.
func (p *PayloadW) Body() []byte {
	return p.g.Bytes()[HeaderLen:]
}

// DMAPointer returns the address of the hardware packet inside the
// reservation: the length byte, pid/no-ack byte and payload, laid out
// exactly as the radio's DMA engine expects.
//
// The pointer grants the hardware temporary, non-exclusive access to ring
// storage. It must not be retained past the grant's lifetime.
func (p *PayloadW) DMAPointer() unsafe.Pointer {
	return unsafe.Pointer(&p.g.Bytes()[dmaOffset])
}

// CommitAll commits using the payload length recorded in the header: the
// producer declares the length up front and commits without recounting.
func (p *PayloadW) CommitAll() {
	p.g.Commit(HeaderLen + p.PayloadLen())
}

// Commit publishes the packet with a payload of used bytes, clamped to the
// length declared at reservation time. The header's length byte is rewritten
// to match, so a producer may over-reserve and shrink, never grow.
func (p *PayloadW) Commit(used int) {
	if max := p.PayloadLen(); used > max {
		used = max
	}
	if used < 0 {
		used = 0
	}
	p.g.Bytes()[lengthIdx] = uint8(used)
	p.g.Commit(HeaderLen + used)
}

// Abort discards the reservation without making it visible.
func (p *PayloadW) Abort() {
	p.g.Abort()
}

// PayloadR is a read-only view over one received packet. Its storage stays
// occupied until Release; reading alone never frees it.
type PayloadR struct {
	g *ring.FrameGrantR
}

func newPayloadR(g *ring.FrameGrantR) *PayloadR {
	return &PayloadR{g: g}
}

// Header decodes the packet header.
func (p *PayloadR) Header() Header {
	var b [HeaderLen]byte
	copy(b[:], p.g.Bytes()[:HeaderLen])
	return HeaderFromBytes(b)
}

// Pipe returns the packet's pipe.
func (p *PayloadR) Pipe() uint8 {
	return p.g.Bytes()[pipeIdx]
}

// Body exposes the payload after the header.
func (p *PayloadR) Body() []byte {
	return p.g.Bytes()[HeaderLen:]
}

// DMAPointer returns the address of the hardware packet for transmission.
// Same lifetime contract as PayloadW.DMAPointer.
func (p *PayloadR) DMAPointer() unsafe.Pointer {
	return unsafe.Pointer(&p.g.Bytes()[dmaOffset])
}

// Release consumes the grant and returns the packet's storage to the ring.
func (p *PayloadR) Release() {
	p.g.Release()
}
