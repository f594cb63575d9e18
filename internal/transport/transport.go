// Package transport implements the UDP and TCP wire transports the
// resolver sends and receives DNS messages over (RFC 1035 §4.2), plus a
// buffer pool for the UDP receive hot path and a MockTransport test seam.
package transport

import (
	"context"
	"net"
)

// Transport is the seam between the resolver and the network. A resolver
// holds one Transport per in-flight query attempt — UDP first, then a
// fresh TCP Transport on truncation (RFC 1035 §4.2.1) — and never talks to
// net.Conn directly, so tests can substitute MockTransport.
type Transport interface {
	// Send transmits one wire-format message to dest.
	Send(ctx context.Context, packet []byte, dest net.Addr) error

	// Receive waits for one wire-format message, honoring ctx's deadline.
	Receive(ctx context.Context) ([]byte, net.Addr, error)

	// Close releases the underlying socket. Safe to call more than once.
	Close() error
}
