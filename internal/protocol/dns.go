// Package protocol defines the DNS wire-format constants and low-level
// validation shared by the wire codec, TSIG engine, and resolver.
//
// PRIMARY TECHNICAL AUTHORITY: RFC 1035 (Domain Names), RFC 6891 (EDNS(0)),
// RFC 8945 (TSIG).
package protocol

const (
	// Port is the standard DNS port for both UDP and TCP (RFC 1035 §4.2).
	Port = 53
)

// RRType is a DNS resource record type per RFC 1035 §3.2.2 and its many
// extensions. It is kept as a plain numeric type, not an enum-with-methods
// hierarchy, so that unrecognized type codes still round-trip as opaque
// data (RFC 3597) instead of failing closed.
type RRType uint16

// Resource record types this codec names. All but the query-only types
// AXFR and ANY have a registered rdata parser; anything without one
// decodes through the Unknown/opaque path.
const (
	TypeA          RRType = 1
	TypeNS         RRType = 2
	TypeCNAME      RRType = 5
	TypeSOA        RRType = 6
	TypePTR        RRType = 12
	TypeHINFO      RRType = 13
	TypeMX         RRType = 15
	TypeTXT        RRType = 16
	TypeAAAA       RRType = 28
	TypeSRV        RRType = 33
	TypeNAPTR      RRType = 35
	TypeOPT        RRType = 41 // pseudo-RR, RFC 6891
	TypeDS         RRType = 43
	TypeSIG0       RRType = 24 // RFC 2931, transaction signature (validation out of scope)
	TypeRRSIG      RRType = 46
	TypeNSEC       RRType = 47
	TypeDNSKEY     RRType = 48
	TypeNSEC3      RRType = 50
	TypeNSEC3PARAM RRType = 51
	TypeCAA        RRType = 257
	TypeTSIG       RRType = 250 // RFC 8945, pseudo-RR, meta-class ANY only
	TypeAXFR       RRType = 252
	TypeANY        RRType = 255
)

var rrTypeNames = map[RRType]string{
	TypeA:          "A",
	TypeNS:         "NS",
	TypeCNAME:      "CNAME",
	TypeSOA:        "SOA",
	TypePTR:        "PTR",
	TypeHINFO:      "HINFO",
	TypeMX:         "MX",
	TypeTXT:        "TXT",
	TypeAAAA:       "AAAA",
	TypeSRV:        "SRV",
	TypeNAPTR:      "NAPTR",
	TypeOPT:        "OPT",
	TypeDS:         "DS",
	TypeSIG0:       "SIG",
	TypeRRSIG:      "RRSIG",
	TypeNSEC:       "NSEC",
	TypeDNSKEY:     "DNSKEY",
	TypeNSEC3:      "NSEC3",
	TypeNSEC3PARAM: "NSEC3PARAM",
	TypeCAA:        "CAA",
	TypeTSIG:       "TSIG",
	TypeAXFR:       "AXFR",
	TypeANY:        "ANY",
}

// String returns the mnemonic for well-known types, or "TYPEnnn" per RFC
// 3597 §5 for anything this codec doesn't name explicitly.
func (t RRType) String() string {
	if name, ok := rrTypeNames[t]; ok {
		return name
	}
	return "TYPE" + itoa(uint16(t))
}

func itoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Class is a DNS class per RFC 1035 §3.2.4. TSIG and some OPT usages
// overload this field (meta-class ANY for TSIG RRs, UDP payload size for
// OPT), so it is kept as a raw numeric type rather than a closed enum.
type Class uint16

const (
	ClassIN  Class = 1
	ClassCH  Class = 3
	ClassHS  Class = 4
	ClassANY Class = 255
)

// Header flag bits per RFC 1035 §4.1.1.
const (
	FlagQR uint16 = 1 << 15 // Query/Response
	FlagAA uint16 = 1 << 10 // Authoritative Answer
	FlagTC uint16 = 1 << 9  // Truncated
	FlagRD uint16 = 1 << 8  // Recursion Desired
	FlagRA uint16 = 1 << 7  // Recursion Available
	FlagAD uint16 = 1 << 5  // Authentic Data (RFC 4035)
	FlagCD uint16 = 1 << 4  // Checking Disabled (RFC 4035)
)

// Opcode values per RFC 1035 §4.1.1.
const (
	OpcodeQuery  uint16 = 0
	OpcodeIQuery uint16 = 1
	OpcodeStatus uint16 = 2
	OpcodeNotify uint16 = 4 // RFC 1996
	OpcodeUpdate uint16 = 5 // RFC 2136
)

// RCODE values per RFC 1035 §4.1.1, extended by RFC 2671/6891 for the upper
// 8 bits carried in the OPT pseudo-RR.
const (
	RCodeNoError  uint16 = 0
	RCodeFormErr  uint16 = 1
	RCodeServFail uint16 = 2
	RCodeNXDomain uint16 = 3
	RCodeNotImp   uint16 = 4
	RCodeRefused  uint16 = 5
	RCodeYXDomain uint16 = 6
	RCodeYXRRSet  uint16 = 7
	RCodeNXRRSet  uint16 = 8
	RCodeNotAuth  uint16 = 9
	RCodeNotZone  uint16 = 10
	RCodeBadVers  uint16 = 16 // also BADSIG's TSIG-extended-rcode value
)

// TSIG extended-RCODE values carried in the TSIG RR's Error field
// (RFC 8945 §5.2), distinct from the message header RCODE space above.
const (
	TSIGErrorNoError  uint16 = 0
	TSIGErrorBadSig   uint16 = 16
	TSIGErrorBadKey   uint16 = 17
	TSIGErrorBadTime  uint16 = 18
	TSIGErrorBadMode  uint16 = 19
	TSIGErrorBadName  uint16 = 20
	TSIGErrorBadAlg   uint16 = 21
	TSIGErrorBadTrunc uint16 = 22
)

// Name constraints per RFC 1035 §3.1 and §4.1.4.
const (
	MaxLabelLength = 63
	MaxNameLength  = 255

	// MaxCompressionPointers bounds the number of pointer hops followed
	// while decompressing a single name, defending against pointer loops
	// in malformed or hostile input.
	MaxCompressionPointers = 128
)

// CompressionMask identifies a compression pointer: the high two bits of
// the length octet are both set (RFC 1035 §4.1.4).
const CompressionMask byte = 0xC0

// EDNS(0) constants per RFC 6891.
const (
	// DefaultUDPPayloadSize is the conservative EDNS(0) advertised buffer
	// size this library defaults to, small enough to avoid IP
	// fragmentation on most paths (RFC 6891 §6.2.3 discusses the
	// fragmentation/PMTU tradeoff; 1232 matches the DNS Flag Day 2020
	// recommendation).
	DefaultUDPPayloadSize = 1232

	// MaxUDPPayloadSize is the largest EDNS(0) buffer size this library
	// will advertise or honor.
	MaxUDPPayloadSize = 4096

	// NonEDNSUDPSize is the message size cap for UDP without EDNS(0)
	// (RFC 1035 §2.3.4).
	NonEDNSUDPSize = 512

	// EDNSVersion0 is the only EDNS version this library implements.
	EDNSVersion0 = 0

	// EDNSFlagDO is the DNSSEC OK bit carried in the OPT pseudo-header's
	// extended flags (RFC 3225).
	EDNSFlagDO uint32 = 1 << 15
)

// TCP framing per RFC 1035 §4.2.2: every message is preceded by a 2-byte
// big-endian length.
const TCPLengthPrefixSize = 2
