package esb

// RadioDriver abstracts the radio peripheral. Init is called exactly once,
// synchronously, during a successful Buffer split, before the timer is
// initialized. Its register-level protocol is out of scope here.
type RadioDriver interface {
	Init(maxPayloadSize uint8, txPower TxPower, addrs *Addresses)
}

// Timer abstracts the timer peripheral used by the retry state machine.
// Init is called exactly once at split time, after the radio.
type Timer interface {
	Init()
}
