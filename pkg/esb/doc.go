// Package esb implements the data plane of an Enhanced ShockBurst style
// packet radio link layer.
package esb

// The package moves variable-length packets between an application context
// and a radio interrupt context with zero copies, bounded memory and no
// locks. A Buffer owns two independent framed rings (one per direction) and
// splits exactly once into an application handle set and an interrupt handle
// set. Packets are written and read in place through grants: short-lived,
// exclusively owned views over ring storage that a DMA engine can target
// through a stable pointer.
//
// The retry state machine, the radio register protocol and the timer
// peripheral are external collaborators. They consume the interrupt-side
// handles and the RadioDriver/Timer interfaces but are otherwise out of
// scope here.
//
// Producer: application context (out), radio interrupt context (in)
// Consumer: radio interrupt context (out), application context (in)
