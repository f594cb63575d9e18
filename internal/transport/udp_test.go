package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/joshuafuller/dnsresolve/internal/transport"
)

func TestUDPTransport_SendReceiveLoopback(t *testing.T) {
	ctx := context.Background()
	server, err := transport.NewUDPTransport(ctx, "udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPTransport(server): %v", err)
	}
	defer func() { _ = server.Close() }()

	client, err := transport.NewUDPTransport(ctx, "udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPTransport(client): %v", err)
	}
	defer func() { _ = client.Close() }()

	serverAddr := serverLocalAddr(t, server)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	sendCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Send(sendCtx, payload, serverAddr); err != nil {
		t.Fatalf("Send: %v", err)
	}

	recvCtx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	got, _, err := server.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Receive = %v, want %v", got, payload)
	}
}

func TestUDPTransport_ReceiveTimesOutOnIdleSocket(t *testing.T) {
	ctx := context.Background()
	conn, err := transport.NewUDPTransport(ctx, "udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPTransport: %v", err)
	}
	defer func() { _ = conn.Close() }()

	recvCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := conn.Receive(recvCtx); err == nil {
		t.Fatal("expected a timeout error on an idle socket")
	}
}

func serverLocalAddr(t *testing.T, srv *transport.UDPTransport) net.Addr {
	t.Helper()
	addr := srv.LocalAddr()
	if addr == nil {
		t.Fatal("server transport has no local address")
	}
	return addr
}
