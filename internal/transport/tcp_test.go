package transport_test

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/joshuafuller/dnsresolve/internal/transport"
)

// echoTCPServer accepts one connection, reads one length-prefixed message,
// and writes it straight back length-prefixed, mimicking a DNS server that
// answers over TCP (RFC 1035 §4.2.2).
func echoTCPServer(t *testing.T) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		defer func() { _ = ln.Close() }()

		var prefix [2]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			return
		}
		length := binary.BigEndian.Uint16(prefix[:])
		body := make([]byte, length)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		_, _ = conn.Write(prefix[:])
		_, _ = conn.Write(body)
	}()
	return ln.Addr()
}

func TestTCPTransport_SendReceiveRoundTrip(t *testing.T) {
	addr := echoTCPServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := transport.NewTCPTransport(ctx, addr)
	if err != nil {
		t.Fatalf("NewTCPTransport: %v", err)
	}
	defer func() { _ = client.Close() }()

	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if err := client.Send(ctx, payload, addr); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, _, err := client.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Receive = %v, want %v", got, payload)
	}
}

func TestTCPTransport_SendRejectsMismatchedDest(t *testing.T) {
	addr := echoTCPServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := transport.NewTCPTransport(ctx, addr)
	if err != nil {
		t.Fatalf("NewTCPTransport: %v", err)
	}
	defer func() { _ = client.Close() }()

	other := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 53}
	if err := client.Send(ctx, []byte{0x01}, other); err == nil {
		t.Fatal("expected Send to reject a destination other than the dialed peer")
	}
}
