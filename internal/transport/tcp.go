package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
)

// TCPTransport is a single TCP connection to one DNS server, framed with
// the 2-byte length prefix RFC 1035 §4.2.2 requires. The resolver opens a
// fresh one whenever a UDP response comes back truncated (TC bit set).
type TCPTransport struct {
	conn net.Conn
	dest net.Addr
}

// NewTCPTransport dials dest over TCP.
func NewTCPTransport(ctx context.Context, dest net.Addr) (*TCPTransport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", dest.String())
	if err != nil {
		return nil, &errors.NetworkError{Operation: "dial tcp", Err: err, Details: fmt.Sprintf("connect to %s", dest)}
	}
	return &TCPTransport{conn: conn, dest: dest}, nil
}

// Send writes one length-prefixed message. dest must match the address
// this transport was dialed to — a TCP transport is bound to one peer for
// its lifetime, unlike UDPTransport.
func (t *TCPTransport) Send(ctx context.Context, packet []byte, dest net.Addr) error {
	if dest.String() != t.dest.String() {
		return &errors.IllegalArgumentError{Field: "dest", Value: dest.String(), Message: "does not match the address this TCP transport was dialed to"}
	}
	if len(packet) > 0xFFFF {
		return &errors.IllegalArgumentError{Field: "packet", Message: "message too large for a 16-bit TCP length prefix"}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}

	var prefix [protocol.TCPLengthPrefixSize]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(packet)))
	if _, err := t.conn.Write(prefix[:]); err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: "write length prefix"}
	}
	if _, err := t.conn.Write(packet); err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: "write message body"}
	}
	return nil
}

// Receive reads one length-prefixed message.
func (t *TCPTransport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "set read deadline"}
		}
	}

	var prefix [protocol.TCPLengthPrefixSize]byte
	if _, err := io.ReadFull(t.conn, prefix[:]); err != nil {
		return nil, nil, tcpReadError(err)
	}
	length := binary.BigEndian.Uint16(prefix[:])

	body := make([]byte, length)
	if _, err := io.ReadFull(t.conn, body); err != nil {
		return nil, nil, tcpReadError(err)
	}
	return body, t.dest, nil
}

func tcpReadError(err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &errors.TimeoutError{Operation: "receive", Err: err}
	}
	return &errors.NetworkError{Operation: "receive", Err: err, Details: "read from tcp socket"}
}

func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		return &errors.NetworkError{Operation: "close", Err: err, Details: "close tcp socket"}
	}
	return nil
}

var _ Transport = (*TCPTransport)(nil)
