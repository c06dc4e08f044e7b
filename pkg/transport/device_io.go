// Package transport defines the responder core's two transport-layer
// abstractions — DeviceIO and TransportEncap — and a loopback reference
// implementation for tests. Unlike the teacher's UDP/TCP-specific
// transport manager, SPDM is explicitly transport-agnostic (DSP0274
// Section 4 lists MCTP, PCI DOE, TCP, and vendor-defined transports as
// interchangeable carriers), so the core only depends on these two narrow
// interfaces rather than owning any transport's connection lifecycle.
package transport

import "context"

// DeviceIO is the responder's view of the underlying transport: send one
// complete SPDM message (header included) to the peer, and block for the
// next complete incoming message. Framing (how a transport delimits one
// SPDM message from the next — MCTP's message-tag scheme, a length prefix
// over TCP, and so on) is entirely the implementation's concern; the
// dispatcher only ever sees whole messages.
type DeviceIO interface {
	Send(ctx context.Context, msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// TransportEncap describes the transport-specific header a DeviceIO
// implementation prepends to SPDM messages (e.g. an MCTP message-type
// byte), exposed so the dispatcher can report it back to callers that need
// to reason about maximum payload size headroom. A transport with no
// encapsulation overhead (a raw byte pipe, as in tests) returns 0.
type TransportEncap interface {
	HeaderSize() int
}

// NoEncap is the zero-overhead TransportEncap used by Loopback and by any
// transport that frames messages below this layer.
type NoEncap struct{}

func (NoEncap) HeaderSize() int { return 0 }
