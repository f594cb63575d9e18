package transport

import (
	"context"
	"net"
	"sync"
)

// MockTransport is a Transport test double. It records every Send, and
// hands back responses a test queued with QueueResponse, letting resolver
// tests exercise ID matching, truncation handling, and retries without a
// real socket.
type MockTransport struct {
	mu        sync.Mutex
	sendCalls []SendCall
	queue     [][]byte
	closed    bool
}

// SendCall records a single Send() invocation.
type SendCall struct {
	Packet []byte
	Dest   net.Addr
}

// NewMockTransport creates a mock transport with an empty response queue.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// QueueResponse appends a wire-format message that the next Receive call
// will return. Queued responses are served in FIFO order.
func (m *MockTransport) QueueResponse(packet []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, append([]byte(nil), packet...))
}

func (m *MockTransport) Send(_ context.Context, packet []byte, dest net.Addr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, SendCall{
		Packet: append([]byte(nil), packet...),
		Dest:   dest,
	})
	return nil
}

// Receive returns the next queued response, or blocks until ctx is done if
// the queue is empty.
func (m *MockTransport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return next, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 53}, nil
	}
	m.mu.Unlock()

	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SendCalls returns a copy of every recorded Send() call.
func (m *MockTransport) SendCalls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]SendCall, len(m.sendCalls))
	copy(calls, m.sendCalls)
	return calls
}

var _ Transport = (*MockTransport)(nil)
