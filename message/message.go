// Package message implements the RFC 1035 DNS message codec: header,
// question, and the three RR sections, plus the EDNS(0) and TSIG placement
// invariants a well-formed message must satisfy.
package message

import (
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
)

// Header is the 12-byte DNS message header (RFC 1035 §4.1.1). Section
// counts are not stored here — they are derived from the slice lengths on
// Message and only materialize on the wire during Pack/Parse.
type Header struct {
	ID    uint16
	Flags uint16
}

func (h Header) IsQuery() bool    { return h.Flags&protocol.FlagQR == 0 }
func (h Header) IsResponse() bool { return h.Flags&protocol.FlagQR != 0 }

func (h Header) Opcode() uint16 { return (h.Flags >> 11) & 0x0F }
func (h *Header) SetOpcode(op uint16) {
	h.Flags = (h.Flags &^ (0x0F << 11)) | ((op & 0x0F) << 11)
}

// RCode returns the low 4 bits of the header RCODE (RFC 1035 §4.1.1). The
// extended 8 high bits live in the OPT pseudo-RR's TTL (RFC 6891 §6.1.3);
// this package has no accessor that combines them into the 12-bit value.
func (h Header) RCode() uint16 { return h.Flags & 0x0F }
func (h *Header) SetRCode(rc uint16) {
	h.Flags = (h.Flags &^ 0x0F) | (rc & 0x0F)
}

func (h Header) AA() bool { return h.Flags&protocol.FlagAA != 0 }
func (h Header) TC() bool { return h.Flags&protocol.FlagTC != 0 }
func (h Header) RD() bool { return h.Flags&protocol.FlagRD != 0 }
func (h Header) RA() bool { return h.Flags&protocol.FlagRA != 0 }

func (h *Header) setFlag(bit uint16, v bool) {
	if v {
		h.Flags |= bit
	} else {
		h.Flags &^= bit
	}
}

func (h *Header) SetQR(v bool) { h.setFlag(protocol.FlagQR, v) }
func (h *Header) SetAA(v bool) { h.setFlag(protocol.FlagAA, v) }
func (h *Header) SetTC(v bool) { h.setFlag(protocol.FlagTC, v) }
func (h *Header) SetRD(v bool) { h.setFlag(protocol.FlagRD, v) }
func (h *Header) SetRA(v bool) { h.setFlag(protocol.FlagRA, v) }

// Question is one entry of the question section (RFC 1035 §4.1.2).
type Question struct {
	Name  string
	Type  protocol.RRType
	Class protocol.Class
}

// RR is one resource record: the owner/type/class/ttl envelope plus its
// typed rdata (RFC 1035 §4.1.3). Question-section entries use Question,
// not RR.
type RR struct {
	Name  string
	Type  protocol.RRType
	Class protocol.Class
	TTL   uint32
	Data  rrdata.RDATA
}

// Message is a full DNS message: header plus the four sections.
type Message struct {
	Header     Header
	Question   []Question
	Answer     []RR
	Authority  []RR
	Additional []RR
}

// NewQuery builds a minimal standard query for name/qtype/qclass with RD
// set, matching what every resolver sends by default.
func NewQuery(id uint16, name string, qtype protocol.RRType, qclass protocol.Class) *Message {
	m := &Message{
		Question: []Question{{Name: name, Type: qtype, Class: qclass}},
	}
	m.Header.ID = id
	m.Header.SetRD(true)
	return m
}

// OPT returns the OPT pseudo-RR in Additional, if present. Per RFC 6891
// §6.1.1 at most one OPT RR may appear, and when TSIG is also present OPT
// must come immediately before it.
func (m *Message) OPT() (*RR, *rrdata.OPT) {
	for i := range m.Additional {
		if m.Additional[i].Type == protocol.TypeOPT {
			if opt, ok := m.Additional[i].Data.(*rrdata.OPT); ok {
				return &m.Additional[i], opt
			}
		}
	}
	return nil, nil
}

// TSIG returns the TSIG RR in Additional, if present. RFC 8945 §5.1
// requires it to be the last record in the additional section.
func (m *Message) TSIG() (*RR, *rrdata.TSIG) {
	if len(m.Additional) == 0 {
		return nil, nil
	}
	last := &m.Additional[len(m.Additional)-1]
	if last.Type != protocol.TypeTSIG {
		return nil, nil
	}
	tsig, ok := last.Data.(*rrdata.TSIG)
	if !ok {
		return nil, nil
	}
	return last, tsig
}

// UDPPayloadSize returns the EDNS(0) advertised buffer size from the OPT
// RR's overloaded Class field, or the non-EDNS default if there is none.
func (m *Message) UDPPayloadSize() uint16 {
	opt, _ := m.OPT()
	if opt == nil {
		return protocol.NonEDNSUDPSize
	}
	return uint16(opt.Class)
}

// DNSSECOK reports whether the OPT RR's DO bit (RFC 3225, carried in the
// overloaded TTL field per RFC 6891 §6.1.3) is set. It returns false when
// there is no OPT RR at all.
func (m *Message) DNSSECOK() bool {
	opt, _ := m.OPT()
	if opt == nil {
		return false
	}
	return opt.TTL&protocol.EDNSFlagDO != 0
}

// SetDNSSECOK sets or clears the OPT RR's DO bit. It is a no-op if m carries
// no OPT RR yet — attach one first.
func (m *Message) SetDNSSECOK(ok bool) {
	opt, _ := m.OPT()
	if opt == nil {
		return
	}
	if ok {
		opt.TTL |= protocol.EDNSFlagDO
	} else {
		opt.TTL &^= protocol.EDNSFlagDO
	}
}
