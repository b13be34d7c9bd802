// Package ring provides a lock-free framed byte ring for moving packets
// between two execution contexts.
package ring

// The ring is a single-producer single-consumer bip buffer: reservations are
// always contiguous, so hardware (e.g. a radio DMA engine) can write into a
// reserved region through a stable pointer before the software commits it.
//
// A framed layer rides on top of the raw byte ring. Every committed
// reservation becomes exactly one frame, recorded with a 2-byte length
// prefix. A consumer never observes partial or merged frames.
//
// Storage is fixed at construction and never reallocated. Coordination uses
// only atomic indices plus a pair of edge-coalesced readiness channels, so
// the non-suspending operations are safe to call from code standing in for
// an interrupt handler.
//
// Producer: exactly one context, fixed for the ring's lifetime.
// Consumer: exactly one context, fixed for the ring's lifetime.
