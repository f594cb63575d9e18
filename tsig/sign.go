package tsig

import (
	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/message"
)

// DefaultFudge is the RFC 8945 §5.2 default fudge window: a response is
// accepted if it was signed within 300 seconds of "now" in either
// direction.
const DefaultFudge uint16 = 300

// Sign appends a TSIG record to m's additional section and returns the
// packed, signed message along with the raw MAC (the caller needs the MAC
// bytes separately to bind them into a later response's requestMAC).
//
// now is the signer's Unix timestamp; fudge is the acceptable clock skew
// window in seconds (0 selects DefaultFudge). requestMAC is the MAC from
// the query being answered, or nil when signing a fresh query.
// timersOnly restricts the hash input to the time/fudge pair alone — used
// for every message after the first in a multi-message TSIG stream
// (RFC 8945 §5.3.1); see Stream for that usage.
//
// m must not already carry a TSIG record, and Sign must be the last thing
// done to m before Pack — any section mutated afterward invalidates the
// ordering invariant Pack itself checks, which is why Sign returns the
// already-packed bytes rather than leaving packing to the caller.
func Sign(m *message.Message, key *Key, requestMAC []byte, timersOnly bool, fudge uint16, now uint64) (signed []byte, mac []byte, err error) {
	if _, existing := m.TSIG(); existing != nil {
		return nil, nil, &errors.IllegalArgumentError{
			Field:   "Additional",
			Message: "message already carries a TSIG record",
		}
	}
	if fudge == 0 {
		fudge = DefaultFudge
	}

	mbuf, err := message.Pack(m)
	if err != nil {
		return nil, nil, err
	}

	rr := &rrdata.TSIG{
		Algorithm:  string(key.Algorithm),
		TimeSigned: now,
		Fudge:      fudge,
		OriginalID: m.Header.ID,
	}

	input, err := hashInput(mbuf, key.Name, rr, requestMAC, timersOnly)
	if err != nil {
		return nil, nil, err
	}

	provider := keyHMACProvider{secret: key.Secret}
	mac, err = provider.Generate(input, key.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	rr.MAC = mac

	m.Additional = append(m.Additional, message.RR{
		Name:  key.Name,
		Type:  protocol.TypeTSIG,
		Class: protocol.ClassANY,
		TTL:   0,
		Data:  rr,
	})

	signed, err = message.Pack(m)
	if err != nil {
		return nil, nil, err
	}
	return signed, mac, nil
}
