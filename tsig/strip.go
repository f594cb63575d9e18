package tsig

import (
	"encoding/binary"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

// strippedMessage is what Verify needs out of a signed wire message: the
// bytes that were actually hashed by the signer, and the TSIG record that
// rode along with them.
type strippedMessage struct {
	buf   []byte
	owner string
	rr    *rrdata.TSIG
}

// stripTSIG locates the TSIG record in data (it must be the last record of
// the additional section, mirroring the invariant message.Pack enforces on
// the way out) and reconstructs the exact byte sequence the signer hashed:
// everything before the TSIG record, with the header's ARCOUNT decremented
// by one and the original transaction ID restored (RFC 8945 §4.2, §6.2).
//
// This walks the raw bytes rather than going through message.Parse +
// message.Pack, because re-encoding could legally choose different name
// compression than the signer used and produce a byte sequence the MAC
// was never computed over.
func stripTSIG(data []byte) (*strippedMessage, error) {
	if len(data) < 12 {
		return nil, &errors.WireFormatError{Operation: "tsig.strip", Offset: 0, Message: "message shorter than header"}
	}
	qdcount := binary.BigEndian.Uint16(data[4:6])
	ancount := binary.BigEndian.Uint16(data[6:8])
	nscount := binary.BigEndian.Uint16(data[8:10])
	arcount := binary.BigEndian.Uint16(data[10:12])
	if arcount == 0 {
		return nil, &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadKey, Reason: "message carries no TSIG record"}
	}

	offset := 12
	for i := 0; i < int(qdcount); i++ {
		_, next, err := wire.ParseName(data, offset)
		if err != nil {
			return nil, err
		}
		offset = next + 4 // QTYPE + QCLASS
	}
	for i := 0; i < int(ancount)+int(nscount); i++ {
		var err error
		offset, err = skipRR(data, offset)
		if err != nil {
			return nil, err
		}
	}

	for i := 0; i < int(arcount); i++ {
		recordStart := offset
		owner, next, err := wire.ParseName(data, offset)
		if err != nil {
			return nil, err
		}
		if next+10 > len(data) {
			return nil, &errors.WireFormatError{Operation: "tsig.strip", Offset: next, Message: "truncated RR header"}
		}
		rrType := protocol.RRType(binary.BigEndian.Uint16(data[next : next+2]))
		rdlength := int(binary.BigEndian.Uint16(data[next+8 : next+10]))
		rdataStart := next + 10
		if rdataStart+rdlength > len(data) {
			return nil, &errors.WireFormatError{Operation: "tsig.strip", Offset: rdataStart, Message: "rdata runs past end of message"}
		}

		if rrType != protocol.TypeTSIG {
			offset = rdataStart + rdlength
			continue
		}
		if i != int(arcount)-1 {
			return nil, &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadKey, Reason: "TSIG record is not the last additional record"}
		}

		parsed, err := rrdata.Parse(protocol.TypeTSIG, data, rdataStart, rdlength)
		if err != nil {
			return nil, err
		}
		rr, ok := parsed.(*rrdata.TSIG)
		if !ok {
			return nil, &errors.WireFormatError{Operation: "tsig.strip", Offset: rdataStart, Message: "TSIG rdata parsed to unexpected type"}
		}

		stripped := make([]byte, recordStart)
		copy(stripped, data[:recordStart])
		binary.BigEndian.PutUint16(stripped[10:12], arcount-1)
		binary.BigEndian.PutUint16(stripped[0:2], rr.OriginalID)

		return &strippedMessage{buf: stripped, owner: owner, rr: rr}, nil
	}

	return nil, &errors.TSIGVerifyError{Code: protocol.TSIGErrorBadKey, Reason: "no TSIG record found in additional section"}
}

// skipRR advances past one resource record (answer or authority section)
// without interpreting its rdata — only the name and the fixed-width
// TYPE/CLASS/TTL/RDLENGTH envelope matter for skipping.
func skipRR(data []byte, offset int) (int, error) {
	_, next, err := wire.ParseName(data, offset)
	if err != nil {
		return 0, err
	}
	if next+10 > len(data) {
		return 0, &errors.WireFormatError{Operation: "tsig.skip", Offset: next, Message: "truncated RR header"}
	}
	rdlength := int(binary.BigEndian.Uint16(data[next+8 : next+10]))
	end := next + 10 + rdlength
	if end > len(data) {
		return 0, &errors.WireFormatError{Operation: "tsig.skip", Offset: next, Message: "rdata runs past end of message"}
	}
	return end, nil
}
