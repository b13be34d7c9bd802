package esb

// Frame layout inside a ring channel:
//
//	| SW USE                        | HARDWARE DMA PART                                     |
//	| rssi - 1 byte | pipe - 1 byte | length - 1 byte | pid_no_ack - 1 byte | payload 0..N |
//
// Bytes 2 and 3 are consumed in place by the radio DMA engine. DO NOT
// REORDER.
const (
	rssiIdx     = 0
	pipeIdx     = 1
	lengthIdx   = 2
	pidNoAckIdx = 3

	// HeaderLen is the fixed size of an encoded Header.
	HeaderLen = 4

	// dmaOffset is where the on-air packet begins inside a frame: the DMA
	// engine reads/writes length, pid_no_ack and payload as one region.
	dmaOffset = lengthIdx
)

// Header carries the per-packet metadata stored in the first four bytes of
// every frame.
type Header struct {
	// RSSI is the received signal strength; meaningful on received
	// packets only.
	RSSI uint8
	// Pipe is the logical address slot (0-7).
	Pipe uint8
	// Length is the authoritative payload length of the frame body.
	Length uint8
	// PidNoAck packs the 2-bit packet id and the no-ack flag, in the
	// hardware's on-air bit layout.
	PidNoAck uint8
}

// NewHeader builds a header for an outgoing packet. pid is masked to its
// 2-bit on-air width; noAck set suppresses the peer's acknowledgment.
func NewHeader(pipe uint8, length uint8, pid uint8, noAck bool) Header {
	h := Header{Pipe: pipe, Length: length}
	h.SetPid(pid)
	h.SetNoAck(noAck)
	return h
}

// Bytes encodes the header. Total: every header maps to exactly four bytes.
func (h Header) Bytes() [HeaderLen]byte {
	return [HeaderLen]byte{
		rssiIdx:     h.RSSI,
		pipeIdx:     h.Pipe,
		lengthIdx:   h.Length,
		pidNoAckIdx: h.PidNoAck,
	}
}

// HeaderFromBytes decodes a header. Total: every four-byte input is a valid
// header.
func HeaderFromBytes(b [HeaderLen]byte) Header {
	return Header{
		RSSI:     b[rssiIdx],
		Pipe:     b[pipeIdx],
		Length:   b[lengthIdx],
		PidNoAck: b[pidNoAckIdx],
	}
}

// Pid returns the 2-bit packet id.
func (h Header) Pid() uint8 {
	return (h.PidNoAck >> 1) & 0b11
}

// SetPid stores the 2-bit packet id, preserving the no-ack bit.
func (h *Header) SetPid(pid uint8) {
	h.PidNoAck = (h.PidNoAck & 0x01) | ((pid & 0b11) << 1)
}

// NoAck reports whether the packet requests no acknowledgment.
func (h Header) NoAck() bool {
	// On air the bit is inverted: 0 means "no ack requested".
	return h.PidNoAck&0x01 == 0
}

// SetNoAck stores the no-ack flag, preserving the packet id bits.
func (h *Header) SetNoAck(noAck bool) {
	if noAck {
		h.PidNoAck &^= 0x01
	} else {
		h.PidNoAck |= 0x01
	}
}
