package resolver

import (
	"context"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/internal/transport"
	"github.com/joshuafuller/dnsresolve/message"
	"github.com/joshuafuller/dnsresolve/tsig"
)

// Resolver sends DNS queries to a specific server and matches their
// responses, handling EDNS negotiation, UDP-to-TCP fallback on
// truncation, ID mismatch recovery, timeout/retry, and optional TSIG.
//
// A Resolver is safe for concurrent use: each Exchange opens its own UDP
// socket (or uses the injected test Transport) and closes it before
// returning.
type Resolver struct {
	cfg    *Config
	health *serverHealth
	pool   *connPool
}

// New builds a Resolver from the given options.
func New(opts ...Option) (*Resolver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	r := &Resolver{
		cfg:    cfg,
		health: newServerHealth(3, 30*time.Second, 1000),
	}
	if cfg.connPool {
		r.pool = newConnPool(cfg.tcpFactory)
	}
	return r, nil
}

// Close releases any connections a connection pool (WithConnPool) is
// holding idle. It is a no-op if connection pooling isn't enabled.
func (r *Resolver) Close() error {
	if r.pool != nil {
		return r.pool.Close()
	}
	return nil
}

// Result is what ExchangeAsync delivers on its channel.
type Result struct {
	Response *message.Message
	Err      error
}

// Exchange sends m to server (host:port, or host — port 53 is assumed)
// and returns its matched response. It negotiates EDNS, signs with TSIG
// if configured, retries on timeout, and falls back to TCP when the UDP
// response comes back truncated.
func (r *Resolver) Exchange(ctx context.Context, m *message.Message, server string) (*message.Message, error) {
	addr, err := resolveServerAddr(server)
	if err != nil {
		return nil, err
	}
	serverKey := addr.String()

	if !r.health.Allow(serverKey) {
		return nil, &errors.NetworkError{Operation: "exchange", Details: "server " + serverKey + " is in cooldown after repeated failures"}
	}

	prepared := *m
	if r.cfg.ednsEnabled {
		attachEDNS(&prepared, r.cfg.udpPayloadSize, r.cfg.dnssecOK)
	}

	var question message.Question
	if len(prepared.Question) > 0 {
		question = prepared.Question[0]
	}

	var requestMAC []byte
	wire, err := message.Pack(&prepared)
	if err != nil {
		return nil, err
	}
	if r.cfg.tsigKey != nil {
		wire, requestMAC, err = tsig.Sign(&prepared, r.cfg.tsigKey, nil, false, 0, nowUnix())
		if err != nil {
			return nil, err
		}
	}

	udpLimit := r.cfg.udpPayloadSize
	if !r.cfg.ednsEnabled {
		udpLimit = protocol.NonEDNSUDPSize
	}

	var raw []byte
	var resp *message.Message
	if r.cfg.forceTCP || len(wire) > int(udpLimit) {
		raw, resp, err = r.exchangeTCP(ctx, wire, addr, prepared.Header.ID, question)
		if err != nil {
			r.health.RecordFailure(serverKey)
			return nil, err
		}
	} else {
		var truncated bool
		raw, resp, truncated, err = r.exchangeUDPWithRetry(ctx, wire, addr, serverKey, prepared.Header.ID, question)
		if err != nil {
			r.health.RecordFailure(serverKey)
			return nil, err
		}
		if truncated {
			raw, resp, err = r.exchangeTCP(ctx, wire, addr, prepared.Header.ID, question)
			if err != nil {
				r.health.RecordFailure(serverKey)
				return nil, err
			}
		}
	}

	if r.cfg.tsigKey != nil {
		if err := tsig.Verify(raw, r.cfg.tsigKey, requestMAC, false, nowUnix()); err != nil {
			r.health.RecordFailure(serverKey)
			return nil, err
		}
	}

	r.health.RecordSuccess(serverKey)
	return resp, nil
}

// ExchangeAsync runs Exchange in its own goroutine and delivers the result
// on the returned channel, which is closed after the single send.
func (r *Resolver) ExchangeAsync(ctx context.Context, m *message.Message, server string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		resp, err := r.Exchange(ctx, m, server)
		out <- Result{Response: resp, Err: err}
	}()
	return out
}

// exchangeUDPWithRetry sends wire over UDP, retrying after any failed
// attempt (timeout included) up to
// cfg.retries additional times with exponential backoff plus jitter, and
// skips past any reply whose ID doesn't match id (RFC 1035 §7.3 advises
// resolvers keep listening rather than treat a stray packet as fatal).
func (r *Resolver) exchangeUDPWithRetry(ctx context.Context, wire []byte, addr net.Addr, serverKey string, id uint16, question message.Question) (raw []byte, resp *message.Message, truncated bool, err error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.retries; attempt++ {
		raw, resp, truncated, err = r.exchangeUDPOnce(ctx, wire, addr, id, question)
		if err == nil {
			return raw, resp, truncated, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < r.cfg.retries && r.cfg.retryBackoff {
			backoff(attempt)
		}
	}
	return nil, nil, false, lastErr
}

func (r *Resolver) exchangeUDPOnce(ctx context.Context, wire []byte, addr net.Addr, id uint16, question message.Question) (raw []byte, resp *message.Message, truncated bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	tr, err := r.cfg.udpFactory(attemptCtx, "udp", r.cfg.localAddr)
	if err != nil {
		return nil, nil, false, err
	}
	defer func() { _ = tr.Close() }()

	if err := tr.Send(attemptCtx, wire, addr); err != nil {
		return nil, nil, false, err
	}

	const maxStrayPackets = 8
	for i := 0; i < maxStrayPackets; i++ {
		reply, from, err := tr.Receive(attemptCtx)
		if err != nil {
			return nil, nil, false, err
		}
		if !addrMatches(addr, from) {
			continue // packet from an address other than the queried server, keep listening
		}
		m, perr := message.Parse(reply)
		if perr != nil {
			continue // malformed reply, keep listening
		}
		if m.Header.ID != id {
			continue // stray/late packet from a different query, keep listening
		}
		if len(m.Question) > 0 && !sameQuestion(question, m.Question[0]) {
			continue // reply answers a different question, keep listening
		}
		return reply, m, m.Header.TC(), nil
	}
	return nil, nil, false, &errors.NetworkError{Operation: "exchange", Details: "gave up after too many non-matching replies"}
}

func (r *Resolver) exchangeTCP(ctx context.Context, wire []byte, addr net.Addr, id uint16, question message.Question) (raw []byte, resp *message.Message, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	var tr transport.Transport
	if r.pool != nil {
		tr, err = r.pool.get(attemptCtx, addr)
	} else {
		tr, err = r.cfg.tcpFactory(attemptCtx, addr)
	}
	if err != nil {
		return nil, nil, err
	}

	reply, m, err := func() ([]byte, *message.Message, error) {
		if err := tr.Send(attemptCtx, wire, addr); err != nil {
			return nil, nil, err
		}
		reply, _, err := tr.Receive(attemptCtx)
		if err != nil {
			return nil, nil, err
		}
		m, err := message.Parse(reply)
		if err != nil {
			return nil, nil, err
		}
		if m.Header.ID != id {
			return nil, nil, &errors.IDMismatchError{Expected: id, Got: m.Header.ID}
		}
		if len(m.Question) > 0 && !sameQuestion(question, m.Question[0]) {
			return nil, nil, &errors.QuestionMismatchError{ExpectedName: question.Name, GotName: m.Question[0].Name}
		}
		return reply, m, nil
	}()

	if r.pool != nil {
		r.pool.release(addr, tr, err == nil)
	} else {
		_ = tr.Close()
	}
	if err != nil {
		return nil, nil, err
	}
	return reply, m, nil
}

// attachEDNS adds an OPT record to m's additional section if it doesn't
// already carry one (RFC 6891 §6.1.1).
func attachEDNS(m *message.Message, payloadSize uint16, dnssecOK bool) {
	if opt, _ := m.OPT(); opt != nil {
		return
	}
	var flags uint32
	if dnssecOK {
		flags = protocol.EDNSFlagDO
	}
	m.Additional = append(m.Additional, message.RR{
		Name:  ".",
		Type:  protocol.TypeOPT,
		Class: protocol.Class(payloadSize),
		TTL:   flags,
		Data:  &rrdata.OPT{},
	})
}

// addrMatches reports whether a UDP reply's source address is the server
// Exchange actually queried. An unconnected PacketConn accepts datagrams
// from anywhere, so this substitutes for the kernel-level filtering a
// connected socket would otherwise provide.
func addrMatches(expected, got net.Addr) bool {
	if got == nil {
		return false
	}
	expHost, expPort, err1 := net.SplitHostPort(expected.String())
	gotHost, gotPort, err2 := net.SplitHostPort(got.String())
	if err1 != nil || err2 != nil {
		return expected.String() == got.String()
	}
	if expPort != gotPort {
		return false
	}
	expIP := net.ParseIP(expHost)
	gotIP := net.ParseIP(gotHost)
	if expIP == nil || gotIP == nil {
		return expHost == gotHost
	}
	return expIP.Equal(gotIP)
}

// sameQuestion reports whether got answers orig's question: the same name
// (case-insensitive, RFC 1035 §3.1, ignoring a trailing root dot), type,
// and class.
func sameQuestion(orig, got message.Question) bool {
	sameName := strings.EqualFold(strings.TrimSuffix(orig.Name, "."), strings.TrimSuffix(got.Name, "."))
	return sameName && orig.Type == got.Type && orig.Class == got.Class
}

func resolveServerAddr(server string) (net.Addr, error) {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, &errors.IllegalArgumentError{Field: "server", Value: server, Message: "not a valid server address: " + err.Error()}
	}
	return addr, nil
}

// backoff sleeps an exponentially growing, jittered interval between
// retry attempts (attempt 0 waits ~100ms, attempt 1 ~200ms, capped at 2s)
// so a burst of retries against a slow server doesn't itself look like a
// retransmit storm.
func backoff(attempt int) {
	base := 100 * time.Millisecond
	wait := base << uint(attempt)
	if wait > 2*time.Second {
		wait = 2 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(wait) / 2))
	time.Sleep(wait/2 + jitter)
}

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}
