package message

import (
	"encoding/binary"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

// Parse decodes a complete wire-format DNS message, including every RR
// type this codec's registry knows, with opaque passthrough for anything
// else (RFC 3597).
func Parse(data []byte) (*Message, error) {
	if len(data) < 12 {
		return nil, &errors.WireFormatError{
			Operation: "parse header",
			Offset:    0,
			Message:   "message shorter than the 12-byte header",
		}
	}

	m := &Message{}
	m.Header.ID = binary.BigEndian.Uint16(data[0:2])
	m.Header.Flags = binary.BigEndian.Uint16(data[2:4])
	qdCount := binary.BigEndian.Uint16(data[4:6])
	anCount := binary.BigEndian.Uint16(data[6:8])
	nsCount := binary.BigEndian.Uint16(data[8:10])
	arCount := binary.BigEndian.Uint16(data[10:12])

	offset := 12
	var err error

	m.Question = make([]Question, 0, qdCount)
	for i := uint16(0); i < qdCount; i++ {
		var q Question
		q, offset, err = parseQuestion(data, offset)
		if err != nil {
			return nil, err
		}
		m.Question = append(m.Question, q)
	}

	m.Answer, offset, err = parseRRSection(data, offset, anCount)
	if err != nil {
		return nil, err
	}
	m.Authority, offset, err = parseRRSection(data, offset, nsCount)
	if err != nil {
		return nil, err
	}
	m.Additional, offset, err = parseRRSection(data, offset, arCount)
	if err != nil {
		return nil, err
	}

	if err := checkTSIGIsLast(m.Additional); err != nil {
		return nil, err
	}

	return m, nil
}

// checkTSIGIsLast rejects a message whose additional section carries a
// TSIG record anywhere but the last position (RFC 8945 §5.1). TSIG.Verify
// also enforces this over the raw bytes it's handed, but a caller that
// parses a message without ever invoking TSIG (e.g. a resolver with no key
// configured) must see the same rejection here.
func checkTSIGIsLast(additional []RR) error {
	for i, rr := range additional {
		if rr.Type == protocol.TypeTSIG && i != len(additional)-1 {
			return &errors.WireFormatError{
				Operation: "parse message",
				Offset:    -1,
				Message:   "TSIG record must be the last record in the additional section (RFC 8945 §5.1)",
			}
		}
	}
	return nil
}

func parseQuestion(data []byte, offset int) (Question, int, error) {
	name, next, err := wire.ParseName(data, offset)
	if err != nil {
		return Question{}, offset, err
	}
	if next+4 > len(data) {
		return Question{}, offset, &errors.WireFormatError{
			Operation: "parse question",
			Offset:    next,
			Message:   "truncated question section",
		}
	}
	q := Question{
		Name:  name,
		Type:  protocol.RRType(binary.BigEndian.Uint16(data[next : next+2])),
		Class: protocol.Class(binary.BigEndian.Uint16(data[next+2 : next+4])),
	}
	return q, next + 4, nil
}

func parseRRSection(data []byte, offset int, count uint16) ([]RR, int, error) {
	rrs := make([]RR, 0, count)
	for i := uint16(0); i < count; i++ {
		rr, next, err := parseRR(data, offset)
		if err != nil {
			return nil, offset, err
		}
		rrs = append(rrs, rr)
		offset = next
	}
	return rrs, offset, nil
}

func parseRR(data []byte, offset int) (RR, int, error) {
	name, next, err := wire.ParseName(data, offset)
	if err != nil {
		return RR{}, offset, err
	}
	if next+10 > len(data) {
		return RR{}, offset, &errors.WireFormatError{
			Operation: "parse RR",
			Offset:    next,
			Message:   "truncated RR envelope",
		}
	}

	rrType := protocol.RRType(binary.BigEndian.Uint16(data[next : next+2]))
	rrClass := protocol.Class(binary.BigEndian.Uint16(data[next+2 : next+4]))
	ttl := binary.BigEndian.Uint32(data[next+4 : next+8])
	rdlength := int(binary.BigEndian.Uint16(data[next+8 : next+10]))
	rdataStart := next + 10

	if rdataStart+rdlength > len(data) {
		return RR{}, offset, &errors.WireFormatError{
			Operation: "parse RR",
			Offset:    rdataStart,
			Message:   "RDLENGTH exceeds remaining message length",
		}
	}

	rd, err := rrdata.Parse(rrType, data, rdataStart, rdlength)
	if err != nil {
		return RR{}, offset, err
	}

	rr := RR{Name: name, Type: rrType, Class: rrClass, TTL: ttl, Data: rd}
	return rr, rdataStart + rdlength, nil
}
