package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/joshuafuller/dnsresolve/internal/errors"
)

// UDPTransport is the default Transport: one unconnected UDP socket that
// can send to and receive from any server, so a resolver can retry a
// query against a different upstream without reopening a socket.
//
// When the underlying socket is IPv4, reads and writes go through
// golang.org/x/net/ipv4's PacketConn with interface control messages
// enabled; sends carry no control message and the one received is
// discarded, so no local interface is pinned or checked. Sockets that
// refuse the control-message option (some containers forbid IP_PKTINFO)
// fall back to the plain PacketConn, mirroring the graceful-degradation
// pattern the platform socket option files use for SO_REUSEPORT.
type UDPTransport struct {
	conn     net.PacketConn
	ipv4conn *ipv4.PacketConn // nil unless conn is IPv4 and control messages are usable
}

// NewUDPTransport opens a UDP socket. network is "udp", "udp4", or "udp6".
// localAddr is the local address to bind, or "" for an ephemeral port on
// all interfaces. Every socket gets SO_REUSEADDR/SO_REUSEPORT
// (platform-specific, see socket_*.go) through PlatformControl, so several
// UDP sockets can share one fixed source port.
func NewUDPTransport(ctx context.Context, network, localAddr string) (*UDPTransport, error) {
	lc := net.ListenConfig{Control: PlatformControl}
	conn, err := lc.ListenPacket(ctx, network, localAddr)
	if err != nil {
		return nil, &errors.NetworkError{
			Operation: "open udp socket",
			Err:       err,
			Details:   fmt.Sprintf("listen %s %s", network, localAddr),
		}
	}

	t := &UDPTransport{conn: conn}
	if udpConn, ok := conn.(*net.UDPConn); ok && network != "udp6" {
		p := ipv4.NewPacketConn(udpConn)
		if err := p.SetControlMessage(ipv4.FlagInterface, true); err == nil {
			t.ipv4conn = p
		}
	}
	return t, nil
}

func (t *UDPTransport) Send(ctx context.Context, packet []byte, dest net.Addr) error {
	select {
	case <-ctx.Done():
		return &errors.NetworkError{Operation: "send", Err: ctx.Err(), Details: "context canceled before send"}
	default:
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}

	var n int
	var err error
	if t.ipv4conn != nil {
		n, err = t.ipv4conn.WriteTo(packet, nil, dest)
	} else {
		n, err = t.conn.WriteTo(packet, dest)
	}
	if err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: fmt.Sprintf("write %d bytes to %s", len(packet), dest)}
	}
	if n != len(packet) {
		return &errors.NetworkError{Operation: "send", Err: fmt.Errorf("partial write: %d/%d bytes", n, len(packet)), Details: "incomplete transmission"}
	}
	return nil
}

func (t *UDPTransport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	select {
	case <-ctx.Done():
		return nil, nil, &errors.NetworkError{Operation: "receive", Err: ctx.Err(), Details: "context canceled before receive"}
	default:
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "set read deadline"}
		}
	}

	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	buffer := *bufPtr

	var n int
	var srcAddr net.Addr
	var err error
	if t.ipv4conn != nil {
		n, _, srcAddr, err = t.ipv4conn.ReadFrom(buffer)
	} else {
		n, srcAddr, err = t.conn.ReadFrom(buffer)
	}
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil, &errors.TimeoutError{Operation: "receive", Err: err}
		}
		return nil, nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "read from socket"}
	}

	result := make([]byte, n)
	copy(result, buffer[:n])
	return result, srcAddr, nil
}

// LocalAddr returns the address this transport's socket is bound to.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *UDPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		return &errors.NetworkError{Operation: "close", Err: err, Details: "close udp socket"}
	}
	return nil
}

var _ Transport = (*UDPTransport)(nil)
