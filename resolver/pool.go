package resolver

import (
	"context"
	"net"
	"sync"

	"github.com/joshuafuller/dnsresolve/internal/transport"
)

// connPool keeps at most one idle TCP transport per server address warm
// between exchanges, generalizing the teacher's single-multicast-socket
// kept open for the process lifetime to a per-server TCP connection kept
// open across queries. A leased connection is never shared concurrently:
// get removes it from the idle set, and release either returns it or, on
// error, closes it rather than risk reusing a connection in an unknown
// state.
type connPool struct {
	factory func(ctx context.Context, dest net.Addr) (transport.Transport, error)

	mu   sync.Mutex
	idle map[string]transport.Transport
}

func newConnPool(factory func(ctx context.Context, dest net.Addr) (transport.Transport, error)) *connPool {
	return &connPool{factory: factory, idle: make(map[string]transport.Transport)}
}

func (p *connPool) get(ctx context.Context, dest net.Addr) (transport.Transport, error) {
	key := dest.String()

	p.mu.Lock()
	tr, ok := p.idle[key]
	if ok {
		delete(p.idle, key)
	}
	p.mu.Unlock()

	if ok {
		return tr, nil
	}
	return p.factory(ctx, dest)
}

// release returns tr to the idle pool keyed by dest, unless used is false
// (the exchange on it failed), in which case tr is closed instead.
func (p *connPool) release(dest net.Addr, tr transport.Transport, used bool) {
	if !used {
		_ = tr.Close()
		return
	}
	key := dest.String()

	p.mu.Lock()
	if existing, ok := p.idle[key]; ok {
		_ = existing.Close()
	}
	p.idle[key] = tr
	p.mu.Unlock()
}

// Close closes every idle connection the pool is holding.
func (p *connPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, tr := range p.idle {
		_ = tr.Close()
		delete(p.idle, key)
	}
	return nil
}
