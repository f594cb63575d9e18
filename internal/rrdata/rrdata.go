// Package rrdata implements the per-type RDATA codecs and the registry that
// dispatches to them by numeric RR type, replacing the closed type-switch
// the wire codec would otherwise need (adding a type means registering a
// codec here, not editing the message parser).
package rrdata

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

// RDATA is implemented by every concrete, typed rdata value this registry
// knows how to pack. Parsing is done by the registered parseFunc instead of
// a method, since a parser needs the enclosing message buffer and rdlength
// that a bare value does not carry.
type RDATA interface {
	// Pack appends the wire-format rdata for this record to buf, using
	// table to compress any compressible embedded names. offset is the
	// absolute position in the message that buf's next byte will occupy.
	Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error)

	// String returns the RFC 1035 presentation form, or a placeholder
	// marker for types with none (HasTextFormat reports which). It never
	// panics.
	String() string
}

type parseFunc func(msg []byte, offset, rdlength int) (RDATA, error)

var registry = map[protocol.RRType]parseFunc{
	protocol.TypeA:          parseA,
	protocol.TypeNS:         parseNS,
	protocol.TypeCNAME:      parseCNAME,
	protocol.TypeSOA:        parseSOA,
	protocol.TypePTR:        parsePTR,
	protocol.TypeMX:         parseMX,
	protocol.TypeTXT:        parseTXT,
	protocol.TypeAAAA:       parseAAAA,
	protocol.TypeSRV:        parseSRV,
	protocol.TypeOPT:        parseOPT,
	protocol.TypeDNSKEY:     parseDNSKEY,
	protocol.TypeRRSIG:      parseRRSIG,
	protocol.TypeDS:         parseDS,
	protocol.TypeNSEC:       parseNSEC,
	protocol.TypeNSEC3:      parseNSEC3,
	protocol.TypeCAA:        parseCAA,
	protocol.TypeTSIG:       parseTSIG,
	protocol.TypeHINFO:      parseHINFO,
	protocol.TypeNAPTR:      parseNAPTR,
	protocol.TypeNSEC3PARAM: parseNSEC3PARAM,
	protocol.TypeSIG0:       parseSIG0,
}

// noTextFormat marks rdata types whose presentation form is undefined —
// TSIG rdata is never written to a zone file (RFC 8945 §2) and trying to
// format it is a caller error, not a parse error.
var noTextFormat = map[protocol.RRType]bool{
	protocol.TypeTSIG: true,
}

// HasTextFormat reports whether rrtype has a defined presentation form.
func HasTextFormat(rrtype protocol.RRType) bool {
	return !noTextFormat[rrtype]
}

// Parse decodes the rdata for rrtype starting at offset in msg, reading
// exactly rdlength bytes. Unregistered types decode as Unknown (RFC 3597
// opaque passthrough) rather than failing, so a message carrying an RR type
// this library has no codec for still round-trips.
func Parse(rrtype protocol.RRType, msg []byte, offset, rdlength int) (RDATA, error) {
	if offset+rdlength > len(msg) {
		return nil, &errors.WireFormatError{
			Operation: "parse rdata",
			Offset:    offset,
			Message:   fmt.Sprintf("rdlength %d exceeds remaining message length", rdlength),
		}
	}
	if fn, ok := registry[rrtype]; ok {
		return fn(msg, offset, rdlength)
	}
	return parseUnknown(msg, offset, rdlength)
}

func need(msg []byte, offset, n int, op string) error {
	if offset+n > len(msg) {
		return &errors.WireFormatError{
			Operation: op,
			Offset:    offset,
			Message:   fmt.Sprintf("need %d bytes, only %d available", n, len(msg)-offset),
		}
	}
	return nil
}

// ---- A / AAAA ----

type A struct{ Address net.IP }

func (r *A) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	ip4 := r.Address.To4()
	if ip4 == nil {
		return nil, &errors.ValidationError{Field: "A.Address", Value: r.Address.String(), Message: "not an IPv4 address"}
	}
	return append(buf, ip4...), nil
}
func (r *A) String() string { return r.Address.String() }

func parseA(msg []byte, offset, rdlength int) (RDATA, error) {
	if rdlength != 4 {
		return nil, &errors.WireFormatError{Operation: "parse A", Offset: offset, Message: fmt.Sprintf("A rdata must be 4 bytes, got %d", rdlength)}
	}
	ip := make(net.IP, 4)
	copy(ip, msg[offset:offset+4])
	return &A{Address: ip}, nil
}

type AAAA struct{ Address net.IP }

func (r *AAAA) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	ip16 := r.Address.To16()
	if ip16 == nil {
		return nil, &errors.ValidationError{Field: "AAAA.Address", Value: r.Address.String(), Message: "not an IPv6 address"}
	}
	return append(buf, ip16...), nil
}
func (r *AAAA) String() string { return r.Address.String() }

func parseAAAA(msg []byte, offset, rdlength int) (RDATA, error) {
	if rdlength != 16 {
		return nil, &errors.WireFormatError{Operation: "parse AAAA", Offset: offset, Message: fmt.Sprintf("AAAA rdata must be 16 bytes, got %d", rdlength)}
	}
	ip := make(net.IP, 16)
	copy(ip, msg[offset:offset+16])
	return &AAAA{Address: ip}, nil
}

// ---- Domain-name-valued RRs (NS, CNAME, PTR): compressible per RFC 1035 ----

type NS struct{ Target string }

func (r *NS) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	return wire.EncodeNameCompressed(buf, offset, r.Target, table)
}
func (r *NS) String() string { return r.Target }

func parseNS(msg []byte, offset, rdlength int) (RDATA, error) {
	name, _, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	return &NS{Target: name}, nil
}

type CNAME struct{ Target string }

func (r *CNAME) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	return wire.EncodeNameCompressed(buf, offset, r.Target, table)
}
func (r *CNAME) String() string { return r.Target }

func parseCNAME(msg []byte, offset, rdlength int) (RDATA, error) {
	name, _, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	return &CNAME{Target: name}, nil
}

type PTR struct{ Target string }

func (r *PTR) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	return wire.EncodeNameCompressed(buf, offset, r.Target, table)
}
func (r *PTR) String() string { return r.Target }

func parsePTR(msg []byte, offset, rdlength int) (RDATA, error) {
	name, _, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	return &PTR{Target: name}, nil
}

// ---- MX ----

type MX struct {
	Preference uint16
	Target     string
}

func (r *MX) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, byte(r.Preference>>8), byte(r.Preference&0xFF))
	return wire.EncodeNameCompressed(buf, offset+2, r.Target, table)
}
func (r *MX) String() string { return fmt.Sprintf("%d %s", r.Preference, r.Target) }

func parseMX(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 2, "parse MX"); err != nil {
		return nil, err
	}
	pref := binary.BigEndian.Uint16(msg[offset : offset+2])
	target, _, err := wire.ParseName(msg, offset+2)
	if err != nil {
		return nil, err
	}
	return &MX{Preference: pref, Target: target}, nil
}

// ---- SOA ----

type SOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *SOA) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	lenBefore := len(buf)
	buf, err := wire.EncodeNameCompressed(buf, offset, r.MName, table)
	if err != nil {
		return nil, err
	}
	mnameLen := len(buf) - lenBefore
	buf, err = wire.EncodeNameCompressed(buf, offset+mnameLen, r.RName, table)
	if err != nil {
		return nil, err
	}
	var tmp [20]byte
	binary.BigEndian.PutUint32(tmp[0:4], r.Serial)
	binary.BigEndian.PutUint32(tmp[4:8], r.Refresh)
	binary.BigEndian.PutUint32(tmp[8:12], r.Retry)
	binary.BigEndian.PutUint32(tmp[12:16], r.Expire)
	binary.BigEndian.PutUint32(tmp[16:20], r.Minimum)
	return append(buf, tmp[:]...), nil
}
func (r *SOA) String() string {
	return fmt.Sprintf("%s %s %d %d %d %d %d", r.MName, r.RName, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
}

func parseSOA(msg []byte, offset, rdlength int) (RDATA, error) {
	mname, next, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	rname, next, err := wire.ParseName(msg, next)
	if err != nil {
		return nil, err
	}
	if err := need(msg, next, 20, "parse SOA"); err != nil {
		return nil, err
	}
	return &SOA{
		MName:   mname,
		RName:   rname,
		Serial:  binary.BigEndian.Uint32(msg[next : next+4]),
		Refresh: binary.BigEndian.Uint32(msg[next+4 : next+8]),
		Retry:   binary.BigEndian.Uint32(msg[next+8 : next+12]),
		Expire:  binary.BigEndian.Uint32(msg[next+12 : next+16]),
		Minimum: binary.BigEndian.Uint32(msg[next+16 : next+20]),
	}, nil
}

// ---- TXT ----

type TXT struct{ Strings []string }

func (r *TXT) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	for _, s := range r.Strings {
		if len(s) > 255 {
			return nil, &errors.ValidationError{Field: "TXT", Value: s, Message: "character-string exceeds 255 bytes"}
		}
		buf = append(buf, byte(len(s)))
		buf = append(buf, []byte(s)...)
	}
	return buf, nil
}
func (r *TXT) String() string {
	out := ""
	for i, s := range r.Strings {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%q", s)
	}
	return out
}

func parseTXT(msg []byte, offset, rdlength int) (RDATA, error) {
	end := offset + rdlength
	var strs []string
	pos := offset
	for pos < end {
		length := int(msg[pos])
		pos++
		if pos+length > end {
			return nil, &errors.WireFormatError{Operation: "parse TXT", Offset: pos, Message: "character-string exceeds rdata bounds"}
		}
		strs = append(strs, string(msg[pos:pos+length]))
		pos += length
	}
	return &TXT{Strings: strs}, nil
}

// ---- SRV (RFC 2782): target MUST NOT be compressed on write ----

type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (r *SRV) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	var tmp [6]byte
	binary.BigEndian.PutUint16(tmp[0:2], r.Priority)
	binary.BigEndian.PutUint16(tmp[2:4], r.Weight)
	binary.BigEndian.PutUint16(tmp[4:6], r.Port)
	buf = append(buf, tmp[:]...)
	name, err := wire.EncodeName(r.Target)
	if err != nil {
		return nil, err
	}
	return append(buf, name...), nil
}
func (r *SRV) String() string {
	return fmt.Sprintf("%d %d %d %s", r.Priority, r.Weight, r.Port, r.Target)
}

func parseSRV(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 6, "parse SRV"); err != nil {
		return nil, err
	}
	target, _, err := wire.ParseName(msg, offset+6)
	if err != nil {
		return nil, err
	}
	return &SRV{
		Priority: binary.BigEndian.Uint16(msg[offset : offset+2]),
		Weight:   binary.BigEndian.Uint16(msg[offset+2 : offset+4]),
		Port:     binary.BigEndian.Uint16(msg[offset+4 : offset+6]),
		Target:   target,
	}, nil
}

// ---- OPT (RFC 6891 pseudo-RR): class/ttl fields are overloaded; rdata is
// a sequence of {option-code, option-length, option-data} tuples. ----

type EDNSOption struct {
	Code uint16
	Data []byte
}

type OPT struct {
	Options []EDNSOption
}

func (r *OPT) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	for _, opt := range r.Options {
		var tmp [4]byte
		binary.BigEndian.PutUint16(tmp[0:2], opt.Code)
		binary.BigEndian.PutUint16(tmp[2:4], uint16(len(opt.Data)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, opt.Data...)
	}
	return buf, nil
}
func (r *OPT) String() string { return fmt.Sprintf("OPT(%d options)", len(r.Options)) }

func parseOPT(msg []byte, offset, rdlength int) (RDATA, error) {
	end := offset + rdlength
	var opts []EDNSOption
	pos := offset
	for pos < end {
		if err := need(msg, pos, 4, "parse OPT"); err != nil {
			return nil, err
		}
		code := binary.BigEndian.Uint16(msg[pos : pos+2])
		length := int(binary.BigEndian.Uint16(msg[pos+2 : pos+4]))
		pos += 4
		if err := need(msg, pos, length, "parse OPT"); err != nil {
			return nil, err
		}
		data := make([]byte, length)
		copy(data, msg[pos:pos+length])
		opts = append(opts, EDNSOption{Code: code, Data: data})
		pos += length
	}
	return &OPT{Options: opts}, nil
}

// ---- DNSSEC-adjacent types: parsed structurally but not validated
// (signature/key-material validation is explicitly out of scope). ----

type DNSKEY struct {
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte
}

func (r *DNSKEY) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, byte(r.Flags>>8), byte(r.Flags&0xFF), r.Protocol, r.Algorithm)
	return append(buf, r.PublicKey...), nil
}
func (r *DNSKEY) String() string {
	return fmt.Sprintf("%d %d %d <%d bytes>", r.Flags, r.Protocol, r.Algorithm, len(r.PublicKey))
}

func parseDNSKEY(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 4, "parse DNSKEY"); err != nil {
		return nil, err
	}
	key := make([]byte, rdlength-4)
	copy(key, msg[offset+4:offset+rdlength])
	return &DNSKEY{
		Flags:     binary.BigEndian.Uint16(msg[offset : offset+2]),
		Protocol:  msg[offset+2],
		Algorithm: msg[offset+3],
		PublicKey: key,
	}, nil
}

type RRSIG struct {
	TypeCovered protocol.RRType
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  string
	Signature   []byte
}

func (r *RRSIG) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	var tmp [18]byte
	binary.BigEndian.PutUint16(tmp[0:2], uint16(r.TypeCovered))
	tmp[2] = r.Algorithm
	tmp[3] = r.Labels
	binary.BigEndian.PutUint32(tmp[4:8], r.OriginalTTL)
	binary.BigEndian.PutUint32(tmp[8:12], r.Expiration)
	binary.BigEndian.PutUint32(tmp[12:16], r.Inception)
	binary.BigEndian.PutUint16(tmp[16:18], r.KeyTag)
	buf = append(buf, tmp[:]...)
	// RRSIG signer names are never compressed (RFC 4034 §3.1.7).
	name, err := wire.EncodeName(r.SignerName)
	if err != nil {
		return nil, err
	}
	buf = append(buf, name...)
	return append(buf, r.Signature...), nil
}
func (r *RRSIG) String() string {
	return fmt.Sprintf("%s %d %d %d %d %d %d %s <sig>", r.TypeCovered, r.Algorithm, r.Labels, r.OriginalTTL, r.Expiration, r.Inception, r.KeyTag, r.SignerName)
}

func parseRRSIG(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 18, "parse RRSIG"); err != nil {
		return nil, err
	}
	signer, next, err := wire.ParseName(msg, offset+18)
	if err != nil {
		return nil, err
	}
	end := offset + rdlength
	if next > end {
		return nil, &errors.WireFormatError{Operation: "parse RRSIG", Offset: next, Message: "signer name overruns rdata"}
	}
	sig := make([]byte, end-next)
	copy(sig, msg[next:end])
	return &RRSIG{
		TypeCovered: protocol.RRType(binary.BigEndian.Uint16(msg[offset : offset+2])),
		Algorithm:   msg[offset+2],
		Labels:      msg[offset+3],
		OriginalTTL: binary.BigEndian.Uint32(msg[offset+4 : offset+8]),
		Expiration:  binary.BigEndian.Uint32(msg[offset+8 : offset+12]),
		Inception:   binary.BigEndian.Uint32(msg[offset+12 : offset+16]),
		KeyTag:      binary.BigEndian.Uint16(msg[offset+16 : offset+18]),
		SignerName:  signer,
		Signature:   sig,
	}, nil
}

type DS struct {
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

func (r *DS) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, byte(r.KeyTag>>8), byte(r.KeyTag&0xFF), r.Algorithm, r.DigestType)
	return append(buf, r.Digest...), nil
}
func (r *DS) String() string {
	return fmt.Sprintf("%d %d %d <%d bytes>", r.KeyTag, r.Algorithm, r.DigestType, len(r.Digest))
}

func parseDS(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 4, "parse DS"); err != nil {
		return nil, err
	}
	digest := make([]byte, rdlength-4)
	copy(digest, msg[offset+4:offset+rdlength])
	return &DS{
		KeyTag:     binary.BigEndian.Uint16(msg[offset : offset+2]),
		Algorithm:  msg[offset+2],
		DigestType: msg[offset+3],
		Digest:     digest,
	}, nil
}

type NSEC struct {
	NextDomain string
	TypeBitmap []byte
}

func (r *NSEC) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	// NSEC next-domain names are never compressed (RFC 4034 §6.2).
	name, err := wire.EncodeName(r.NextDomain)
	if err != nil {
		return nil, err
	}
	buf = append(buf, name...)
	return append(buf, r.TypeBitmap...), nil
}
func (r *NSEC) String() string { return fmt.Sprintf("%s <%d byte bitmap>", r.NextDomain, len(r.TypeBitmap)) }

func parseNSEC(msg []byte, offset, rdlength int) (RDATA, error) {
	next, newOffset, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	end := offset + rdlength
	if newOffset > end {
		return nil, &errors.WireFormatError{Operation: "parse NSEC", Offset: newOffset, Message: "next-domain name overruns rdata"}
	}
	bitmap := make([]byte, end-newOffset)
	copy(bitmap, msg[newOffset:end])
	return &NSEC{NextDomain: next, TypeBitmap: bitmap}, nil
}

type NSEC3 struct {
	HashAlgorithm uint8
	Flags         uint8
	Iterations    uint16
	Salt          []byte
	NextHashed    []byte
	TypeBitmap    []byte
}

func (r *NSEC3) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, r.HashAlgorithm, r.Flags)
	var iter [2]byte
	binary.BigEndian.PutUint16(iter[:], r.Iterations)
	buf = append(buf, iter[:]...)
	buf = append(buf, byte(len(r.Salt)))
	buf = append(buf, r.Salt...)
	buf = append(buf, byte(len(r.NextHashed)))
	buf = append(buf, r.NextHashed...)
	return append(buf, r.TypeBitmap...), nil
}
func (r *NSEC3) String() string {
	return fmt.Sprintf("%d %d %d <salt %d bytes> <hash %d bytes>", r.HashAlgorithm, r.Flags, r.Iterations, len(r.Salt), len(r.NextHashed))
}

func parseNSEC3(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 5, "parse NSEC3"); err != nil {
		return nil, err
	}
	pos := offset + 4
	saltLen := int(msg[pos])
	pos++
	if err := need(msg, pos, saltLen, "parse NSEC3"); err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	copy(salt, msg[pos:pos+saltLen])
	pos += saltLen

	if err := need(msg, pos, 1, "parse NSEC3"); err != nil {
		return nil, err
	}
	hashLen := int(msg[pos])
	pos++
	if err := need(msg, pos, hashLen, "parse NSEC3"); err != nil {
		return nil, err
	}
	hash := make([]byte, hashLen)
	copy(hash, msg[pos:pos+hashLen])
	pos += hashLen

	end := offset + rdlength
	if pos > end {
		return nil, &errors.WireFormatError{Operation: "parse NSEC3", Offset: pos, Message: "fixed fields overrun rdata"}
	}
	bitmap := make([]byte, end-pos)
	copy(bitmap, msg[pos:end])

	return &NSEC3{
		HashAlgorithm: msg[offset],
		Flags:         msg[offset+1],
		Iterations:    binary.BigEndian.Uint16(msg[offset+2 : offset+4]),
		Salt:          salt,
		NextHashed:    hash,
		TypeBitmap:    bitmap,
	}, nil
}

// ---- CAA (RFC 6844) ----

type CAA struct {
	Flag  uint8
	Tag   string
	Value string
}

func (r *CAA) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, r.Flag, byte(len(r.Tag)))
	buf = append(buf, []byte(r.Tag)...)
	return append(buf, []byte(r.Value)...), nil
}
func (r *CAA) String() string { return fmt.Sprintf("%d %s %q", r.Flag, r.Tag, r.Value) }

func parseCAA(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 2, "parse CAA"); err != nil {
		return nil, err
	}
	tagLen := int(msg[offset+1])
	if err := need(msg, offset+2, tagLen, "parse CAA"); err != nil {
		return nil, err
	}
	tag := string(msg[offset+2 : offset+2+tagLen])
	valueStart := offset + 2 + tagLen
	end := offset + rdlength
	if valueStart > end {
		return nil, &errors.WireFormatError{Operation: "parse CAA", Offset: valueStart, Message: "tag overruns rdata"}
	}
	return &CAA{Flag: msg[offset], Tag: tag, Value: string(msg[valueStart:end])}, nil
}

// ---- TSIG (RFC 8945): parsed structurally here for round-tripping; the
// sign/verify semantics live in the tsig package, which parses/builds this
// same wire layout directly against request/response buffers. This
// registry entry exists so a message containing a TSIG RR still decodes
// via the generic path (e.g. when dumping an already-signed message) —
// it has no presentation form (see HasTextFormat/NoTextFormat). ----

type TSIG struct {
	Algorithm  string
	TimeSigned uint64
	Fudge      uint16
	MAC        []byte
	OriginalID uint16
	Error      uint16
	OtherData  []byte
}

func (r *TSIG) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	// TSIG's owner name is compressible in principle but RFC 8945 §4.2
	// says algorithm names MUST NOT be compressed; this package doesn't
	// compress either, matching how the broader ecosystem's TSIG codecs
	// avoid depending on message-scoped compression state for a
	// pseudo-RR that is always last.
	alg, err := wire.EncodeName(r.Algorithm)
	if err != nil {
		return nil, err
	}
	buf = append(buf, alg...)

	var timeBuf [6]byte
	timeBuf[0] = byte(r.TimeSigned >> 40)
	timeBuf[1] = byte(r.TimeSigned >> 32)
	timeBuf[2] = byte(r.TimeSigned >> 24)
	timeBuf[3] = byte(r.TimeSigned >> 16)
	timeBuf[4] = byte(r.TimeSigned >> 8)
	timeBuf[5] = byte(r.TimeSigned)
	buf = append(buf, timeBuf[:]...)

	buf = append(buf, byte(r.Fudge>>8), byte(r.Fudge&0xFF))
	buf = append(buf, byte(len(r.MAC)>>8), byte(len(r.MAC)&0xFF))
	buf = append(buf, r.MAC...)
	buf = append(buf, byte(r.OriginalID>>8), byte(r.OriginalID&0xFF))
	buf = append(buf, byte(r.Error>>8), byte(r.Error&0xFF))
	buf = append(buf, byte(len(r.OtherData)>>8), byte(len(r.OtherData)&0xFF))
	buf = append(buf, r.OtherData...)
	return buf, nil
}

// String panics are avoided: per RFC 8945 §2.3 TSIG rdata has no text
// representation, so String returns a marker value. Callers that need to
// render or reject this correctly must check HasTextFormat first and
// surface errors.NoTextFormatError themselves — String() cannot return an
// error under the RDATA interface, and silently fabricating a presentation
// form would be worse than an obviously-wrong sentinel.
func (r *TSIG) String() string { return "; no text format defined for TSIG" }

func parseTSIG(msg []byte, offset, rdlength int) (RDATA, error) {
	alg, next, err := wire.ParseName(msg, offset)
	if err != nil {
		return nil, err
	}
	if err := need(msg, next, 10, "parse TSIG"); err != nil {
		return nil, err
	}
	timeSigned := uint64(msg[next])<<40 | uint64(msg[next+1])<<32 | uint64(msg[next+2])<<24 |
		uint64(msg[next+3])<<16 | uint64(msg[next+4])<<8 | uint64(msg[next+5])
	fudge := binary.BigEndian.Uint16(msg[next+6 : next+8])
	macSize := int(binary.BigEndian.Uint16(msg[next+8 : next+10]))
	pos := next + 10
	if err := need(msg, pos, macSize, "parse TSIG"); err != nil {
		return nil, err
	}
	mac := make([]byte, macSize)
	copy(mac, msg[pos:pos+macSize])
	pos += macSize

	if err := need(msg, pos, 6, "parse TSIG"); err != nil {
		return nil, err
	}
	origID := binary.BigEndian.Uint16(msg[pos : pos+2])
	tsigErr := binary.BigEndian.Uint16(msg[pos+2 : pos+4])
	otherLen := int(binary.BigEndian.Uint16(msg[pos+4 : pos+6]))
	pos += 6
	if err := need(msg, pos, otherLen, "parse TSIG"); err != nil {
		return nil, err
	}
	other := make([]byte, otherLen)
	copy(other, msg[pos:pos+otherLen])

	return &TSIG{
		Algorithm:  alg,
		TimeSigned: timeSigned,
		Fudge:      fudge,
		MAC:        mac,
		OriginalID: origID,
		Error:      tsigErr,
		OtherData:  other,
	}, nil
}

// ---- HINFO (RFC 1035 §3.3.2): two character-strings, CPU and OS. ----

type HINFO struct {
	CPU string
	OS  string
}

func (r *HINFO) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	if len(r.CPU) > 255 || len(r.OS) > 255 {
		return nil, &errors.ValidationError{Field: "HINFO", Message: "character-string exceeds 255 bytes"}
	}
	buf = append(buf, byte(len(r.CPU)))
	buf = append(buf, []byte(r.CPU)...)
	buf = append(buf, byte(len(r.OS)))
	return append(buf, []byte(r.OS)...), nil
}
func (r *HINFO) String() string { return fmt.Sprintf("%q %q", r.CPU, r.OS) }

func parseHINFO(msg []byte, offset, rdlength int) (RDATA, error) {
	end := offset + rdlength
	if err := need(msg, offset, 1, "parse HINFO"); err != nil {
		return nil, err
	}
	cpuLen := int(msg[offset])
	pos := offset + 1
	if err := need(msg, pos, cpuLen, "parse HINFO"); err != nil {
		return nil, err
	}
	cpu := string(msg[pos : pos+cpuLen])
	pos += cpuLen

	if err := need(msg, pos, 1, "parse HINFO"); err != nil {
		return nil, err
	}
	osLen := int(msg[pos])
	pos++
	if pos+osLen > end {
		return nil, &errors.WireFormatError{Operation: "parse HINFO", Offset: pos, Message: "OS character-string overruns rdata"}
	}
	os := string(msg[pos : pos+osLen])
	return &HINFO{CPU: cpu, OS: os}, nil
}

// ---- NAPTR (RFC 3403): replacement is a domain name that MUST NOT be
// compressed (§4.1 says NAPTR predates compression-safe handling). ----

type NAPTR struct {
	Order       uint16
	Preference  uint16
	Flags       string
	Services    string
	Regexp      string
	Replacement string
}

func (r *NAPTR) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, byte(r.Order>>8), byte(r.Order&0xFF))
	buf = append(buf, byte(r.Preference>>8), byte(r.Preference&0xFF))
	for _, s := range []string{r.Flags, r.Services, r.Regexp} {
		if len(s) > 255 {
			return nil, &errors.ValidationError{Field: "NAPTR", Value: s, Message: "character-string exceeds 255 bytes"}
		}
		buf = append(buf, byte(len(s)))
		buf = append(buf, []byte(s)...)
	}
	name, err := wire.EncodeName(r.Replacement)
	if err != nil {
		return nil, err
	}
	return append(buf, name...), nil
}
func (r *NAPTR) String() string {
	return fmt.Sprintf("%d %d %q %q %q %s", r.Order, r.Preference, r.Flags, r.Services, r.Regexp, r.Replacement)
}

func parseNAPTR(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 4, "parse NAPTR"); err != nil {
		return nil, err
	}
	order := binary.BigEndian.Uint16(msg[offset : offset+2])
	pref := binary.BigEndian.Uint16(msg[offset+2 : offset+4])
	pos := offset + 4
	end := offset + rdlength

	strs := make([]string, 3)
	for i := range strs {
		if err := need(msg, pos, 1, "parse NAPTR"); err != nil {
			return nil, err
		}
		l := int(msg[pos])
		pos++
		if pos+l > end {
			return nil, &errors.WireFormatError{Operation: "parse NAPTR", Offset: pos, Message: "character-string overruns rdata"}
		}
		strs[i] = string(msg[pos : pos+l])
		pos += l
	}

	replacement, _, err := wire.ParseName(msg, pos)
	if err != nil {
		return nil, err
	}
	return &NAPTR{
		Order:       order,
		Preference:  pref,
		Flags:       strs[0],
		Services:    strs[1],
		Regexp:      strs[2],
		Replacement: replacement,
	}, nil
}

// ---- NSEC3PARAM (RFC 5155 §4): the parameters a zone used to generate its
// NSEC3 chain, carried without an owner-specific hash or bitmap. ----

type NSEC3PARAM struct {
	HashAlgorithm uint8
	Flags         uint8
	Iterations    uint16
	Salt          []byte
}

func (r *NSEC3PARAM) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	buf = append(buf, r.HashAlgorithm, r.Flags)
	var iter [2]byte
	binary.BigEndian.PutUint16(iter[:], r.Iterations)
	buf = append(buf, iter[:]...)
	buf = append(buf, byte(len(r.Salt)))
	return append(buf, r.Salt...), nil
}
func (r *NSEC3PARAM) String() string {
	return fmt.Sprintf("%d %d %d <salt %d bytes>", r.HashAlgorithm, r.Flags, r.Iterations, len(r.Salt))
}

func parseNSEC3PARAM(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 5, "parse NSEC3PARAM"); err != nil {
		return nil, err
	}
	saltLen := int(msg[offset+4])
	if err := need(msg, offset+5, saltLen, "parse NSEC3PARAM"); err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	copy(salt, msg[offset+5:offset+5+saltLen])
	return &NSEC3PARAM{
		HashAlgorithm: msg[offset],
		Flags:         msg[offset+1],
		Iterations:    binary.BigEndian.Uint16(msg[offset+2 : offset+4]),
		Salt:          salt,
	}, nil
}

// ---- SIG0 (RFC 2931): a transaction-signature RR sharing RRSIG's wire
// layout (RFC 2535 §4.1). Parsed structurally only — verifying a SIG0
// signature is explicitly out of scope. ----

type SIG0 struct {
	TypeCovered protocol.RRType
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  string
	Signature   []byte
}

func (r *SIG0) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	var tmp [18]byte
	binary.BigEndian.PutUint16(tmp[0:2], uint16(r.TypeCovered))
	tmp[2] = r.Algorithm
	tmp[3] = r.Labels
	binary.BigEndian.PutUint32(tmp[4:8], r.OriginalTTL)
	binary.BigEndian.PutUint32(tmp[8:12], r.Expiration)
	binary.BigEndian.PutUint32(tmp[12:16], r.Inception)
	binary.BigEndian.PutUint16(tmp[16:18], r.KeyTag)
	buf = append(buf, tmp[:]...)
	name, err := wire.EncodeName(r.SignerName)
	if err != nil {
		return nil, err
	}
	buf = append(buf, name...)
	return append(buf, r.Signature...), nil
}
func (r *SIG0) String() string {
	return fmt.Sprintf("%s %d %d %d %d %d %d %s <sig>", r.TypeCovered, r.Algorithm, r.Labels, r.OriginalTTL, r.Expiration, r.Inception, r.KeyTag, r.SignerName)
}

func parseSIG0(msg []byte, offset, rdlength int) (RDATA, error) {
	if err := need(msg, offset, 18, "parse SIG0"); err != nil {
		return nil, err
	}
	signer, next, err := wire.ParseName(msg, offset+18)
	if err != nil {
		return nil, err
	}
	end := offset + rdlength
	if next > end {
		return nil, &errors.WireFormatError{Operation: "parse SIG0", Offset: next, Message: "signer name overruns rdata"}
	}
	sig := make([]byte, end-next)
	copy(sig, msg[next:end])
	return &SIG0{
		TypeCovered: protocol.RRType(binary.BigEndian.Uint16(msg[offset : offset+2])),
		Algorithm:   msg[offset+2],
		Labels:      msg[offset+3],
		OriginalTTL: binary.BigEndian.Uint32(msg[offset+4 : offset+8]),
		Expiration:  binary.BigEndian.Uint32(msg[offset+8 : offset+12]),
		Inception:   binary.BigEndian.Uint32(msg[offset+12 : offset+16]),
		KeyTag:      binary.BigEndian.Uint16(msg[offset+16 : offset+18]),
		SignerName:  signer,
		Signature:   sig,
	}, nil
}

// ---- Unknown (RFC 3597): opaque passthrough for any type not above. ----

type Unknown struct {
	Type protocol.RRType
	Data []byte
}

func (r *Unknown) Pack(buf []byte, offset int, table wire.CompressionTable) ([]byte, error) {
	return append(buf, r.Data...), nil
}
func (r *Unknown) String() string { return fmt.Sprintf("\\# %d <opaque>", len(r.Data)) }

func parseUnknown(msg []byte, offset, rdlength int) (RDATA, error) {
	data := make([]byte, rdlength)
	copy(data, msg[offset:offset+rdlength])
	return &Unknown{Data: data}, nil
}
