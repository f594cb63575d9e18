package tsig

import (
	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/message"
)

// Stream signs and verifies a sequence of messages under one TSIG context,
// as AXFR/IXFR responses do (RFC 8945 §5.3.1): only the first message
// carries the full TSIG-variables hash, every message after it is
// "timers only", and every message's hash input is chained to the
// previous message's MAC.
type Stream struct {
	key     *Key
	prevMAC []byte
	count   int
}

// NewStream starts a signing/verifying context for key. requestMAC is the
// MAC of the original request that triggered the streamed response (nil
// if this stream is not answering a signed request).
func NewStream(key *Key, requestMAC []byte) *Stream {
	return &Stream{key: key, prevMAC: requestMAC}
}

// Sign signs the next message in the stream, chaining to the previous
// message's MAC and using timers-only mode for every message after the
// first.
func (s *Stream) Sign(m *message.Message, fudge uint16, now uint64) ([]byte, error) {
	timersOnly := s.count > 0
	signed, mac, err := Sign(m, s.key, s.prevMAC, timersOnly, fudge, now)
	if err != nil {
		return nil, err
	}
	s.prevMAC = mac
	s.count++
	return signed, nil
}

// Verify checks the next message in the stream. Every message passed to
// Verify must carry a TSIG record; a message without one is rejected.
// Stream keeps no digest of unsigned intermediate messages, so a message
// that is skipped is not covered by the next MAC and the chain no longer
// verifies.
func (s *Stream) Verify(data []byte, now uint64) error {
	timersOnly := s.count > 0
	if err := Verify(data, s.key, s.prevMAC, timersOnly, now); err != nil {
		return err
	}
	stripped, err := stripTSIG(data)
	if err != nil {
		return err
	}
	if stripped.rr == nil {
		return &errors.TSIGVerifyError{Reason: "stream message missing TSIG record"}
	}
	s.prevMAC = stripped.rr.MAC
	s.count++
	return nil
}
