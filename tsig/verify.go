package tsig

import (
	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
)

// Verify checks a signed wire message's TSIG record against key.
//
// requestMAC is the MAC of the query this message answers, or nil when
// verifying a query (RFC 8945 §5.3 binds a response's signature to its
// request's MAC to stop a response being replayed against a different
// query). timersOnly mirrors Sign's flag for multi-message streams.
//
// The MAC is checked before the fudge window, not after: checking the
// timestamp first lets an attacker learn whether a forged message's clock
// skew was the rejection reason without ever producing a valid signature,
// the ordering bug behind CVE-2017-3142 and CVE-2017-3143. Only once the
// MAC itself is confirmed valid is the signing time compared against now.
func Verify(data []byte, key *Key, requestMAC []byte, timersOnly bool, now uint64) error {
	stripped, err := stripTSIG(data)
	if err != nil {
		return err
	}
	rr := stripped.rr

	alg, err := ParseAlgorithm(rr.Algorithm)
	if err != nil {
		return &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadAlg, Reason: "unknown algorithm: " + rr.Algorithm}
	}
	if alg != key.Algorithm {
		return &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadKey, Reason: "algorithm does not match key"}
	}
	if !sameOwner(stripped.owner, key.Name) {
		return &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadKey, Reason: "key name does not match TSIG owner name"}
	}

	input, err := hashInput(stripped.buf, stripped.owner, rr, requestMAC, timersOnly)
	if err != nil {
		return err
	}

	provider := keyHMACProvider{secret: key.Secret}
	if err := provider.Verify(input, alg, rr.MAC); err != nil {
		return err
	}

	if !withinFudge(rr.TimeSigned, rr.Fudge, now) {
		return &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadTime, Reason: "signing time outside fudge window"}
	}
	return nil
}

func sameOwner(a, b string) bool {
	return canonicalName(trimDot(a)) == canonicalName(trimDot(b))
}

func trimDot(name string) string {
	if len(name) > 0 && name[len(name)-1] == '.' {
		return name[:len(name)-1]
	}
	return name
}

func withinFudge(timeSigned uint64, fudge uint16, now uint64) bool {
	var delta uint64
	if now >= timeSigned {
		delta = now - timeSigned
	} else {
		delta = timeSigned - now
	}
	return delta <= uint64(fudge)
}
