package esb

// Addresses configures the radio's pipe addressing.
//
// ESB addresses up to eight pipes. Pipe 0 has its own base address and
// prefix; pipes 1-7 share a second base address and differ by prefix.
//
// Default values:
//
//	Base0     = E7 E7 E7 E7
//	Base1     = C2 C2 C2 C2
//	Prefixes0 = E7 C2 C3 C4
//	Prefixes1 = C5 C6 C7 C8
//	RFChannel = 2
type Addresses struct {
	// Base0 is the base address for pipe 0.
	Base0 [4]byte
	// Base1 is the base address for pipes 1-7.
	Base1 [4]byte
	// Prefixes0 holds the prefixes for pipes 0-3, in order.
	Prefixes0 [4]byte
	// Prefixes1 holds the prefixes for pipes 4-7, in order.
	Prefixes1 [4]byte
	// RFChannel is the radio channel (0-100).
	RFChannel uint8
}

// NewAddresses validates and builds an address configuration. The channel
// must not exceed 100.
func NewAddresses(base0, base1, prefixes0, prefixes1 [4]byte, rfChannel uint8) (Addresses, error) {
	if rfChannel > 100 {
		return Addresses{}, ErrInvalidParameters
	}
	return Addresses{
		Base0:     base0,
		Base1:     base1,
		Prefixes0: prefixes0,
		Prefixes1: prefixes1,
		RFChannel: rfChannel,
	}, nil
}

// DefaultAddresses returns the standard address set on channel 2.
func DefaultAddresses() Addresses {
	return Addresses{
		Base0:     [4]byte{0xE7, 0xE7, 0xE7, 0xE7},
		Base1:     [4]byte{0xC2, 0xC2, 0xC2, 0xC2},
		Prefixes0: [4]byte{0xE7, 0xC2, 0xC3, 0xC4},
		Prefixes1: [4]byte{0xC5, 0xC6, 0xC7, 0xC8},
		RFChannel: 2,
	}
}
