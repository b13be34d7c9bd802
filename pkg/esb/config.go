package esb

// MaxPayloadLen is the largest payload the hardware packet format allows.
const MaxPayloadLen = 252

// TxPower is the radio transmit power in dBm.
type TxPower int8

// Config carries the link parameters shared by both sides at split time.
// The retry fields are consumed by the external state machine driving the
// interrupt-side handles; the data plane itself only enforces
// MaxPayloadSize.
type Config struct {
	// MaxPayloadSize bounds the payload of every packet (1-252 bytes).
	MaxPayloadSize uint8
	// TxPower is handed to the radio driver at init.
	TxPower TxPower
	// WaitForACKTimeoutUS is how long the transmitter listens for an
	// acknowledgment before retrying, in microseconds.
	WaitForACKTimeoutUS uint16
	// RetransmitDelayUS is the delay between retransmissions, in
	// microseconds. Must cover the ack timeout plus the ack's air time.
	RetransmitDelayUS uint16
	// MaxAttempts is the number of transmission attempts before a packet
	// is dropped. Zero means retry forever.
	MaxAttempts uint8
}

// DefaultConfig returns the conventional link parameters: full-size
// payloads, 0 dBm, 120us ack timeout, 250us retransmit delay, 3 attempts.
func DefaultConfig() Config {
	return Config{
		MaxPayloadSize:      MaxPayloadLen,
		TxPower:             0,
		WaitForACKTimeoutUS: 120,
		RetransmitDelayUS:   250,
		MaxAttempts:         3,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.MaxPayloadSize == 0 || c.MaxPayloadSize > MaxPayloadLen {
		return ErrInvalidParameters
	}
	if c.RetransmitDelayUS < c.WaitForACKTimeoutUS {
		return ErrInvalidParameters
	}
	return nil
}
