package tsig

import (
	"strings"

	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

// canonicalName lower-cases a presentation-form name for TSIG hashing
// (RFC 8945 §4.2 requires the owner name and algorithm name to be hashed
// in canonical — i.e. lower-case — wire form).
func canonicalName(name string) string {
	return strings.ToLower(name)
}

// macWireFmt appends the request MAC prefix used when signing a response
// (RFC 8945 §5.3): a 2-byte MAC length followed by the MAC bytes.
func macWireFmt(buf []byte, mac []byte) []byte {
	buf = append(buf, byte(len(mac)>>8), byte(len(mac)&0xFF))
	return append(buf, mac...)
}

// timerWireFmt is the 8-byte {time-signed, fudge} pair hashed on its own
// for subsequent messages in a multi-message TSIG stream (RFC 8945 §5.3.1,
// "timers only" mode).
func timerWireFmt(buf []byte, timeSigned uint64, fudge uint16) []byte {
	var tmp [8]byte
	tmp[0] = byte(timeSigned >> 40)
	tmp[1] = byte(timeSigned >> 32)
	tmp[2] = byte(timeSigned >> 24)
	tmp[3] = byte(timeSigned >> 16)
	tmp[4] = byte(timeSigned >> 8)
	tmp[5] = byte(timeSigned)
	tmp[6] = byte(fudge >> 8)
	tmp[7] = byte(fudge & 0xFF)
	return append(buf, tmp[:]...)
}

// tsigVariables is the full TSIG-variables portion of the hash input
// (RFC 8945 §4.2): owner name, class ANY, TTL 0, algorithm, timers, and
// the error/other-data fields, all in canonical uncompressed wire form.
func tsigVariables(buf []byte, ownerName string, rr *rrdata.TSIG) ([]byte, error) {
	name, err := wire.EncodeName(canonicalName(ownerName))
	if err != nil {
		return nil, err
	}
	buf = append(buf, name...)

	var classTTL [6]byte
	classTTL[0] = byte(uint16(protocol.ClassANY) >> 8)
	classTTL[1] = byte(uint16(protocol.ClassANY) & 0xFF)
	// TTL is 0 for the TSIG pseudo-RR; classTTL[2:6] already zero.
	buf = append(buf, classTTL[:]...)

	alg, err := wire.EncodeName(canonicalName(rr.Algorithm))
	if err != nil {
		return nil, err
	}
	buf = append(buf, alg...)

	buf = timerWireFmt(buf, rr.TimeSigned, rr.Fudge)

	var errOther [2]byte
	errOther[0] = byte(rr.Error >> 8)
	errOther[1] = byte(rr.Error & 0xFF)
	buf = append(buf, errOther[:]...)
	var otherLen [2]byte
	otherLen[0] = byte(len(rr.OtherData) >> 8)
	otherLen[1] = byte(len(rr.OtherData) & 0xFF)
	buf = append(buf, otherLen[:]...)
	buf = append(buf, rr.OtherData...)

	return buf, nil
}

// hashInput builds the full byte sequence that gets HMACed: the message
// bytes (with the original ID restored per RFC 8945 §4.2, so a signature
// survives an ID rewrite by a forwarder), optionally prefixed by the
// request MAC (response signing), followed by either the full TSIG
// variables or just the timer pair (multi-message "timers only" mode).
func hashInput(msgWithOriginalID []byte, ownerName string, rr *rrdata.TSIG, requestMAC []byte, timersOnly bool) ([]byte, error) {
	var buf []byte
	if len(requestMAC) > 0 {
		buf = macWireFmt(buf, requestMAC)
	}
	buf = append(buf, msgWithOriginalID...)

	if timersOnly {
		buf = timerWireFmt(buf, rr.TimeSigned, rr.Fudge)
		return buf, nil
	}
	return tsigVariables(buf, ownerName, rr)
}
