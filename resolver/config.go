// Package resolver implements the client-side DNS exchange: sending a
// query over UDP, falling back to TCP on truncation, matching the
// response to its query, retrying on timeout, and optionally signing and
// verifying the exchange with TSIG.
package resolver

import (
	"context"
	"net"
	"time"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/transport"
	"github.com/joshuafuller/dnsresolve/tsig"
)

// Config holds a Resolver's tunables. Build one through New and the With*
// options rather than constructing it directly — Option validates each
// setting as it's applied.
type Config struct {
	timeout        time.Duration
	retries        int
	ednsEnabled    bool
	udpPayloadSize uint16
	dnssecOK       bool
	tsigKey        *tsig.Key
	localAddr      string
	retryBackoff   bool
	connPool       bool
	forceTCP       bool

	udpFactory func(ctx context.Context, network, localAddr string) (transport.Transport, error)
	tcpFactory func(ctx context.Context, dest net.Addr) (transport.Transport, error)
}

// Option is a functional option for configuring a Resolver.
//
// Example:
//
//	r, err := resolver.New(
//	    resolver.WithTimeout(2 * time.Second),
//	    resolver.WithRetries(2),
//	)
type Option func(*Config) error

func defaultConfig() *Config {
	return &Config{
		timeout:        2 * time.Second,
		retries:        2,
		retryBackoff:   true,
		ednsEnabled:    true,
		udpPayloadSize: protocol.DefaultUDPPayloadSize,
		udpFactory: func(ctx context.Context, network, localAddr string) (transport.Transport, error) {
			return transport.NewUDPTransport(ctx, network, localAddr)
		},
		tcpFactory: func(ctx context.Context, dest net.Addr) (transport.Transport, error) {
			return transport.NewTCPTransport(ctx, dest)
		},
	}
}

// WithTimeout sets the per-attempt deadline for a single UDP or TCP
// round trip. Default: 2 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return &errors.ValidationError{Field: "timeout", Value: timeout, Message: "must be positive"}
		}
		c.timeout = timeout
		return nil
	}
}

// WithRetries sets how many additional UDP attempts follow an initial
// failed attempt (such as a timeout) before Exchange gives up. Default: 2.
func WithRetries(retries int) Option {
	return func(c *Config) error {
		if retries < 0 {
			return &errors.ValidationError{Field: "retries", Value: retries, Message: "must not be negative"}
		}
		c.retries = retries
		return nil
	}
}

// WithEDNS enables or disables automatic EDNS(0) negotiation (RFC 6891):
// when enabled, Exchange attaches an OPT record advertising payloadSize to
// any query that doesn't already carry one. Default: enabled, 1232 bytes.
func WithEDNS(enabled bool, payloadSize uint16) Option {
	return func(c *Config) error {
		if enabled && (payloadSize == 0 || payloadSize > protocol.MaxUDPPayloadSize) {
			return &errors.ValidationError{Field: "payloadSize", Value: payloadSize, Message: "must be between 1 and 4096"}
		}
		c.ednsEnabled = enabled
		c.udpPayloadSize = payloadSize
		return nil
	}
}

// WithDNSSEC sets the EDNS DO bit (RFC 3225) on outgoing queries, asking
// the server to include DNSSEC records in its answer. Implies EDNS.
func WithDNSSEC(ok bool) Option {
	return func(c *Config) error {
		c.dnssecOK = ok
		if ok {
			c.ednsEnabled = true
		}
		return nil
	}
}

// WithTSIG signs every outgoing query with key and verifies every response
// against it (RFC 8945).
func WithTSIG(key *tsig.Key) Option {
	return func(c *Config) error {
		if key == nil {
			return &errors.ValidationError{Field: "key", Message: "TSIG key must not be nil"}
		}
		c.tsigKey = key
		return nil
	}
}

// WithRetryBackoff toggles the exponentially growing, jittered delay
// between UDP retry attempts. Default: enabled. Disabling it retries
// immediately, which a caller with its own outer retry/backoff policy may
// prefer so the two don't compound.
func WithRetryBackoff(enabled bool) Option {
	return func(c *Config) error {
		c.retryBackoff = enabled
		return nil
	}
}

// WithConnPool enables keeping one idle TCP connection per server warm
// between exchanges instead of dialing fresh for every TCP fallback or
// explicit TCP query. A pooled connection is leased exclusively to a single
// in-flight Exchange and never multiplexed; it is discarded rather than
// returned to the pool if anything goes wrong on it. Default: disabled.
func WithConnPool(enabled bool) Option {
	return func(c *Config) error {
		c.connPool = enabled
		return nil
	}
}

// WithForceTCP skips UDP entirely and sends every query straight over TCP,
// regardless of serialized message size. Default: disabled.
func WithForceTCP(enabled bool) Option {
	return func(c *Config) error {
		c.forceTCP = enabled
		return nil
	}
}

// WithLocalAddr binds the resolver's UDP socket to a fixed local address
// instead of an ephemeral port — useful behind firewalls that only permit
// DNS traffic from one pinned source port.
func WithLocalAddr(addr string) Option {
	return func(c *Config) error {
		c.localAddr = addr
		return nil
	}
}

// WithTransport forces every exchange — UDP and the TCP fallback alike —
// onto a single pre-built Transport instead of dialing a real socket. This
// is the seam tests use to inject transport.MockTransport.
func WithTransport(t transport.Transport) Option {
	return func(c *Config) error {
		c.udpFactory = func(context.Context, string, string) (transport.Transport, error) { return t, nil }
		c.tcpFactory = func(context.Context, net.Addr) (transport.Transport, error) { return t, nil }
		return nil
	}
}
